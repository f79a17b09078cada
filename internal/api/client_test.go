package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"screener/internal/config"
	"screener/internal/errors"
	"screener/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.APIConfig {
	return config.APIConfig{
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
		UserAgent: "screener-test",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(testConfig(srv.URL), nil, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListResumes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/resumes/", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "screener-test", r.Header.Get("User-Agent"))
		writeJSON(w, http.StatusOK, []types.Resume{
			{ID: 1, Name: "Jane Doe", Email: "jane@example.com", Experience: 5.5, Skills: []string{"Go", "SQL"}},
		})
	})

	resumes, err := client.ListResumes(context.Background())
	require.NoError(t, err)
	require.Len(t, resumes, 1)
	assert.Equal(t, "Jane Doe", resumes[0].Name)
	assert.Equal(t, 5.5, resumes[0].Experience)
}

func TestListMatchesFiltersByJob(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, []types.MatchResult{{ID: 1, ResumeID: 2, JobDescriptionID: 3, MatchScore: 7}})
	})

	matches, err := client.ListMatches(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "job_id=3", gotQuery)
	assert.Equal(t, types.ShapeReference, matches[0].Shape())

	_, err = client.ListMatches(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestUploadResumeSendsMultipartFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload-resume/", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "jane.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4 test", string(data))
		writeJSON(w, http.StatusOK, types.Resume{ID: 9, Name: "Jane", Filename: header.Filename})
	})

	resume, err := client.UploadResume(context.Background(), "jane.pdf", []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, 9, resume.ID)
	assert.Equal(t, "jane.pdf", resume.Filename)
}

func TestBulkMatchPostsIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req types.BulkMatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int{1, 2}, req.ResumeIDs)
		assert.Equal(t, 4, req.JobDescriptionID)
		writeJSON(w, http.StatusOK, map[string]any{
			"results": []map[string]any{
				{"match_score": 8, "summary": "good", "strengths": []string{"Go"}, "gaps": []string{},
					"resume": map[string]any{"id": 1, "name": "A"}, "job_description": map[string]any{"id": 4, "title": "T"}},
				{"match_score": 5, "summary": "meh", "strengths": []string{}, "gaps": []string{"K8s"},
					"resume": map[string]any{"id": 2, "name": "B"}, "job_description": map[string]any{"id": 4, "title": "T"}},
			},
		})
	})

	results, err := client.BulkMatch(context.Background(), 4, []int{1, 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, types.ShapeEmbedded, results[0].Shape())
	assert.Equal(t, 2, results[1].CandidateResumeID())
}

func TestCreateJobAndReset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/job-descriptions/":
			var body types.JobDescriptionCreate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, http.StatusOK, types.JobDescription{ID: 11, Title: body.Title, RequiredSkills: body.RequiredSkills})
		case r.Method == http.MethodDelete && r.URL.Path == "/reset-all-data/":
			writeJSON(w, http.StatusOK, map[string]string{"message": "All data has been successfully reset."})
		default:
			http.NotFound(w, r)
		}
	})

	job, err := client.CreateJob(context.Background(), types.JobDescriptionCreate{Title: "SRE", RequiredSkills: []string{"Linux"}})
	require.NoError(t, err)
	assert.Equal(t, 11, job.ID)
	assert.Equal(t, []string{"Linux"}, job.RequiredSkills)

	msg, err := client.ResetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "All data has been successfully reset.", msg)
}

func TestErrorDetailIsSurfaced(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "string detail",
			status:  http.StatusConflict,
			body:    `{"detail": "A resume with the filename 'cv.pdf' already exists."}`,
			message: "A resume with the filename 'cv.pdf' already exists.",
		},
		{
			name:    "validation detail list",
			status:  http.StatusUnprocessableEntity,
			body:    `{"detail": [ {"loc": ["body", "title"], "msg": "field required"} ]}`,
			message: `[{"loc":["body","title"],"msg":"field required"}]`,
		},
		{
			name:    "no detail",
			status:  http.StatusNotFound,
			body:    `not json`,
			message: "Request failed with status code 404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.ListJobs(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Equal(t, tt.message, UserMessage(err))
		})
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for range 2 {
		_, err := client.ListResumes(context.Background())
		require.Error(t, err)
	}
	assert.False(t, client.Healthy())

	_, err := client.ListResumes(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the server")
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job Description not found."})
	})

	for range 4 {
		_, err := client.BulkMatch(context.Background(), 1, []int{1})
		require.Error(t, err)
		assert.Equal(t, "Job Description not found.", UserMessage(err))
	}
	assert.True(t, client.Healthy())
}

type recordedCall struct {
	endpoint string
	status   int
	failed   bool
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeRecorder) RecordAPIRequest(_ context.Context, endpoint, _ string, status int, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{endpoint: endpoint, status: status, failed: err != nil})
}

func TestRecorderReceivesRequests(t *testing.T) {
	rec := &fakeRecorder{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.APIInfo{Message: "Welcome", Version: "2.0.0"})
	}, WithRecorder(rec))

	info, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", info.Version)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, recordedCall{endpoint: "/", status: http.StatusOK}, rec.calls[0])
}
