package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"screener/internal/errors"
	"screener/internal/types"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// ListResumes fetches every parsed resume
func (c *Client) ListResumes(ctx context.Context) ([]types.Resume, error) {
	var out []types.Resume
	if err := c.do(ctx, request{method: http.MethodGet, path: "/resumes/"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListJobs fetches every job description
func (c *Client) ListJobs(ctx context.Context) ([]types.JobDescription, error) {
	var out []types.JobDescription
	if err := c.do(ctx, request{method: http.MethodGet, path: "/job-descriptions/"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMatches fetches stored match results. A positive jobID filters server-side.
func (c *Client) ListMatches(ctx context.Context, jobID int) ([]types.MatchResult, error) {
	path := "/match-results/"
	if jobID > 0 {
		path += "?" + url.Values{"job_id": {strconv.Itoa(jobID)}}.Encode()
	}
	var out []types.MatchResult
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateJob posts a new job description and returns the stored record
func (c *Client) CreateJob(ctx context.Context, job types.JobDescriptionCreate) (*types.JobDescription, error) {
	req, err := jsonRequest(http.MethodPost, "/job-descriptions/", job)
	if err != nil {
		return nil, err
	}
	var out types.JobDescription
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadResume sends one PDF as multipart field "file" and returns the parsed resume
func (c *Client) UploadResume(ctx context.Context, filename string, data []byte) (*types.Resume, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload form", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload form", err)
	}
	if err := mw.Close(); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload form", err)
	}

	req := request{
		method:      http.MethodPost,
		path:        "/upload-resume/",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	}
	var out types.Resume
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkMatch scores the given resumes against one job description
func (c *Client) BulkMatch(ctx context.Context, jobID int, resumeIDs []int) ([]types.MatchResult, error) {
	req, err := jsonRequest(http.MethodPost, "/bulk-match/", types.BulkMatchRequest{
		ResumeIDs:        resumeIDs,
		JobDescriptionID: jobID,
	})
	if err != nil {
		return nil, err
	}
	var out types.BulkMatchResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		out.Results = []types.MatchResult{}
	}
	return out.Results, nil
}

// ResetAll deletes every resume, job and match held by the API
func (c *Client) ResetAll(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, request{method: http.MethodDelete, path: "/reset-all-data/"}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Ping fetches the API banner
func (c *Client) Ping(ctx context.Context) (*types.APIInfo, error) {
	var out types.APIInfo
	if err := c.do(ctx, request{method: http.MethodGet, path: "/"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
