package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Every state-changing request is rate limited and size limited
	post := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimitMiddleware(s.requestSizeLimitMiddleware(h))
	}

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("GET /{$}", s.dashboardHandler)
	mux.HandleFunc("GET /upload", s.uploadPageHandler)
	mux.HandleFunc("POST /upload", post(s.uploadHandler))
	mux.HandleFunc("GET /jobs", s.jobsPageHandler)
	mux.HandleFunc("POST /jobs", post(s.createJobHandler))

	mux.HandleFunc("GET /candidates", s.candidatesHandler)
	mux.HandleFunc("GET /candidates/export.xlsx", s.exportHandler)
	mux.HandleFunc("POST /candidates/job", post(s.candidateAction(s.selectJob)))
	mux.HandleFunc("POST /candidates/toggle", post(s.candidateAction(s.toggleResume)))
	mux.HandleFunc("POST /candidates/select-all", post(s.candidateAction(s.toggleSelectAll)))
	mux.HandleFunc("POST /candidates/sort", post(s.candidateAction(s.toggleSort)))
	mux.HandleFunc("POST /candidates/filter", post(s.candidateAction(s.toggleFilter)))
	mux.HandleFunc("POST /candidates/clear", post(s.candidateAction(s.clearSessionMatches)))
	mux.HandleFunc("POST /candidates/match-selected", post(s.candidateAction(s.matchSelected)))
	mux.HandleFunc("POST /candidates/match-all", post(s.candidateAction(s.matchAll)))

	return mux
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.metrics.HTTPMiddleware()(s.setupRoutes())
}
