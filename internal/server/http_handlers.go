package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"screener/internal/api"
)

const healthCheckTimeout = 5 * time.Second

// healthHandler reports the web UI status and whether the screening API answers
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := map[string]any{
		"status":          "healthy",
		"service":         "screener",
		"version":         s.Version,
		"circuit_breaker": s.backend.BreakerStats(),
	}

	// An open breaker fails fast, so skip the ping
	if !s.backend.Healthy() {
		response["status"] = "degraded"
		response["api"] = map[string]any{"available": false, "error": "circuit breaker open"}
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	apiStatus := map[string]any{"available": true}
	if info, err := s.backend.Ping(ctx); err != nil {
		apiStatus["available"] = false
		apiStatus["error"] = api.UserMessage(err)
		response["status"] = "degraded"
	} else {
		apiStatus["message"] = info.Message
		apiStatus["version"] = info.Version
	}
	response["api"] = apiStatus

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	status := http.StatusOK
	if response["status"] != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
