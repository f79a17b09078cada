package server

import (
	"fmt"

	"screener/internal/utils"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAPIInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayDropFolderInfo()
}

// displayEndpoints shows the pages served by the web UI
func (s *Server) displayEndpoints() {
	fmt.Printf("Web UI listening on http://%s\n", s.address())
	fmt.Println("Available pages:")
	fmt.Println("  GET  /            - Dashboard")
	fmt.Println("  GET  /upload      - Upload resume")
	fmt.Println("  GET  /jobs        - Job descriptions")
	fmt.Println("  GET  /candidates  - Candidate list and matches")
	fmt.Println("  GET  /health      - Health check")
}

func (s *Server) displayAPIInfo() {
	if s.AppConfig != nil {
		fmt.Printf("Screening API: %s\n", s.AppConfig.API.BaseURL)
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %s\n", utils.FormatFileSize(s.MaxRequestSize))
	} else {
		fmt.Println("Request size limit: DISABLED")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min per IP, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}
}

func (s *Server) displayDropFolderInfo() {
	if s.AppConfig != nil && s.AppConfig.Upload.WatchDir != "" {
		fmt.Printf("Drop folder: %s (PDFs are uploaded automatically)\n", s.AppConfig.Upload.WatchDir)
	}
}
