package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"screener/internal/config"
	"screener/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type fakeBackend struct {
	mu        sync.Mutex
	resumes   []types.Resume
	jobs      []types.JobDescription
	matches   []types.MatchResult
	created   []types.JobDescriptionCreate
	uploaded  []string
	bulkCalls [][]int
	pingErr     error
	breakerOpen bool
}

func (f *fakeBackend) ListResumes(context.Context) ([]types.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumes, nil
}

func (f *fakeBackend) ListJobs(context.Context) ([]types.JobDescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs, nil
}

func (f *fakeBackend) ListMatches(context.Context, int) ([]types.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.matches, nil
}

func (f *fakeBackend) BulkMatch(_ context.Context, jobID int, ids []int) ([]types.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls = append(f.bulkCalls, ids)
	results := make([]types.MatchResult, 0, len(ids))
	for i, id := range ids {
		results = append(results, types.MatchResult{
			ResumeID:         id,
			JobDescriptionID: jobID,
			MatchScore:       float64(9 - i),
			Strengths:        []string{"Go"},
			Justification:    "Strong fit",
		})
	}
	return results, nil
}

func (f *fakeBackend) CreateJob(_ context.Context, job types.JobDescriptionCreate) (*types.JobDescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, job)
	created := types.JobDescription{ID: len(f.jobs) + 1, Title: job.Title, Description: job.Description}
	f.jobs = append(f.jobs, created)
	return &created, nil
}

func (f *fakeBackend) UploadResume(_ context.Context, filename string, _ []byte) (*types.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, filename)
	return &types.Resume{ID: len(f.uploaded), Name: "Parsed", Filename: filename}, nil
}

func (f *fakeBackend) Ping(context.Context) (*types.APIInfo, error) {
	if f.pingErr != nil {
		return nil, f.pingErr
	}
	return &types.APIInfo{Message: "Resume Screener API", Version: "1.0.0"}, nil
}

func (f *fakeBackend) BreakerStats() map[string]any {
	return map[string]any{"state": "closed"}
}

func (f *fakeBackend) Healthy() bool { return !f.breakerOpen }

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{BaseURL: "http://api.test"},
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           "0",
			MaxRequestSize: 1 << 20,
		},
		Upload: config.UploadConfig{MaxFileSize: 1024},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, backend *fakeBackend) (*Server, http.Handler) {
	t.Helper()
	s, err := NewServer(cfg, Options{Version: "test", Backend: backend}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if s.RateLimiter != nil {
			s.RateLimiter.Close()
		}
	})
	return s, s.Handler()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postFile(t *testing.T, h http.Handler, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresBackend(t *testing.T) {
	_, err := NewServer(testConfig(), Options{}, nil)
	assert.Error(t, err)
}

func TestDashboardShowsStats(t *testing.T) {
	backend := &fakeBackend{
		resumes: []types.Resume{{ID: 1}, {ID: 2}},
		jobs:    []types.JobDescription{{ID: 1}},
		matches: []types.MatchResult{{MatchScore: 8}, {MatchScore: 6}},
	}
	_, h := newTestServer(t, testConfig(), backend)

	rec := get(t, h, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `<p class="stat-value">2</p>`)
	assert.Contains(t, body, `<p class="stat-value">7.0</p>`)
	assert.Contains(t, body, "Quick Start")
	assert.Contains(t, body, `class="active">Dashboard</a>`)
}

func TestUnknownPathIsNotFound(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &fakeBackend{})

	rec := get(t, h, "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateJobRedirectsWithNotice(t *testing.T) {
	backend := &fakeBackend{}
	_, h := newTestServer(t, testConfig(), backend)

	rec := postForm(t, h, "/jobs", url.Values{
		"title":               {"Backend Engineer"},
		"description":         {"Build APIs"},
		"required_skills":     {"Go, SQL"},
		"required_experience": {"3"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/jobs", rec.Header().Get("Location"))
	require.Len(t, backend.created, 1)
	assert.Equal(t, []string{"Go", "SQL"}, backend.created[0].RequiredSkills)
	assert.Equal(t, 3.0, backend.created[0].RequiredExperience)

	page := get(t, h, "/jobs").Body.String()
	assert.Contains(t, page, "Job description created successfully!")
	assert.NotContains(t, page, `value="Backend Engineer"`)

	// The notice is shown once
	assert.NotContains(t, get(t, h, "/jobs").Body.String(), "created successfully")
}

func TestCreateJobValidationKeepsValues(t *testing.T) {
	backend := &fakeBackend{}
	_, h := newTestServer(t, testConfig(), backend)

	rec := postForm(t, h, "/jobs", url.Values{"title": {"Backend Engineer"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, backend.created)

	page := get(t, h, "/jobs").Body.String()
	assert.Contains(t, page, "notice-error")
	assert.Contains(t, page, "Job description")
	assert.Contains(t, page, `value="Backend Engineer"`)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	backend := &fakeBackend{}
	_, h := newTestServer(t, testConfig(), backend)

	rec := postFile(t, h, "resume.pdf", []byte("plain text"))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, backend.uploaded)
	assert.Contains(t, get(t, h, "/upload").Body.String(), "Please upload a PDF file")
}

func TestUploadStoresResume(t *testing.T) {
	backend := &fakeBackend{}
	s, h := newTestServer(t, testConfig(), backend)

	rec := postFile(t, h, "ada.pdf", samplePDF)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"ada.pdf"}, backend.uploaded)
	assert.Len(t, s.store.Snapshot().Resumes, 1)
	assert.Contains(t, get(t, h, "/upload").Body.String(), "Resume uploaded successfully!")
}

func TestUploadWithoutFile(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &fakeBackend{})

	rec := postForm(t, h, "/upload", url.Values{})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, get(t, h, "/upload").Body.String(), "Please upload a PDF file")
}

func TestCandidatesMatchFlow(t *testing.T) {
	backend := &fakeBackend{
		resumes: []types.Resume{
			{ID: 1, Name: "Ada", Email: "ada@example.com", Experience: 5, Skills: []string{"Go"}},
			{ID: 2, Name: "Linus", Email: "linus@example.com", Experience: 3},
		},
		jobs: []types.JobDescription{{ID: 7, Title: "Backend Engineer"}},
	}
	s, h := newTestServer(t, testConfig(), backend)

	page := get(t, h, "/candidates").Body.String()
	assert.Contains(t, page, "0 of 2 selected")
	assert.Contains(t, page, "Backend Engineer")

	postForm(t, h, "/candidates/job", url.Values{"job_id": {"7"}})
	postForm(t, h, "/candidates/toggle", url.Values{"resume_id": {"2"}})
	assert.Equal(t, []int{2}, s.store.Snapshot().Selected)

	rec := postForm(t, h, "/candidates/match-selected", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/candidates", rec.Header().Get("Location"))
	require.Equal(t, [][]int{{2}}, backend.bulkCalls)

	page = get(t, h, "/candidates").Body.String()
	assert.Contains(t, page, "Matched 1 selected candidates successfully!")
	assert.Contains(t, page, "Linus")
	assert.Contains(t, page, "Showing 1 match (from current session)")
	assert.Contains(t, page, "0 of 2 selected")

	postForm(t, h, "/candidates/match-all", url.Values{})
	require.Len(t, backend.bulkCalls, 2)
	assert.Equal(t, []int{1, 2}, backend.bulkCalls[1])

	postForm(t, h, "/candidates/filter", url.Values{})
	assert.False(t, s.store.Snapshot().CurrentSessionOnly)
	assert.Contains(t, get(t, h, "/candidates").Body.String(), "Showing 3 matches")
}

func TestMatchWithoutJobShowsError(t *testing.T) {
	backend := &fakeBackend{resumes: []types.Resume{{ID: 1, Name: "Ada"}}}
	_, h := newTestServer(t, testConfig(), backend)

	get(t, h, "/candidates")
	postForm(t, h, "/candidates/match-all", url.Values{})

	assert.Empty(t, backend.bulkCalls)
	assert.Contains(t, get(t, h, "/candidates").Body.String(), "Please select a job description first")
}

func TestEnteringCandidatesResetsSelection(t *testing.T) {
	backend := &fakeBackend{resumes: []types.Resume{{ID: 1}}}
	s, h := newTestServer(t, testConfig(), backend)

	get(t, h, "/candidates")
	postForm(t, h, "/candidates/toggle", url.Values{"resume_id": {"1"}})
	require.Len(t, s.store.Snapshot().Selected, 1)

	get(t, h, "/")
	get(t, h, "/candidates")

	assert.Empty(t, s.store.Snapshot().Selected)
}

func TestExportReturnsWorkbook(t *testing.T) {
	backend := &fakeBackend{
		resumes: []types.Resume{{ID: 1, Name: "Ada"}},
		jobs:    []types.JobDescription{{ID: 7, Title: "Backend Engineer"}},
	}
	_, h := newTestServer(t, testConfig(), backend)

	get(t, h, "/candidates")
	postForm(t, h, "/candidates/job", url.Values{"job_id": {"7"}})
	postForm(t, h, "/candidates/match-all", url.Values{})

	rec := get(t, h, "/candidates/export.xlsx")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	name, err := f.GetCellValue("Matches", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Ada", name)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{name: "api reachable", wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "api down", pingErr: stderrors.New("connection refused"), wantCode: http.StatusServiceUnavailable, wantStatus: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(t, testConfig(), &fakeBackend{pingErr: tt.pingErr})

			rec := get(t, h, "/health")

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, "test", body["version"])
		})
	}
}

func TestHealthSkipsPingWhenBreakerOpen(t *testing.T) {
	_, h := newTestServer(t, testConfig(), &fakeBackend{breakerOpen: true})

	rec := get(t, h, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "circuit breaker open")
}

func TestRateLimitRejectsBurst(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: 1,
		BurstCapacity:  1,
		Window:         time.Minute,
	}
	_, h := newTestServer(t, cfg, &fakeBackend{})

	first := postForm(t, h, "/candidates/filter", url.Values{})
	second := postForm(t, h, "/candidates/filter", url.Values{})

	assert.Equal(t, http.StatusSeeOther, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// Page views are not limited
	for i := range 3 {
		assert.Equal(t, http.StatusOK, get(t, h, "/candidates").Code, fmt.Sprintf("GET %d", i))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remote     string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "forwarded for ignored", headers: map[string]string{"X-Forwarded-For": "203.0.113.5"}, remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "real ip ignored", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "forwarded for behind proxy", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, remote: "192.0.2.1:1234", trustProxy: true, want: "203.0.113.5"},
		{name: "real ip behind proxy", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remote: "192.0.2.1:1234", trustProxy: true, want: "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req, tt.trustProxy))
		})
	}
}

func TestRateLimitIgnoresForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: 1,
		BurstCapacity:  1,
		Window:         time.Minute,
	}
	_, h := newTestServer(t, cfg, &fakeBackend{})

	codes := make([]int, 0, 2)
	for _, ip := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodPost, "/candidates/filter", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusSeeOther, http.StatusTooManyRequests}, codes)
}
