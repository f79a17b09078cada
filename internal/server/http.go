package server

import (
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"screener/internal/config"
	"screener/internal/errors"
	"screener/internal/jobform"
	"screener/internal/observability"
	"screener/internal/session"
	"screener/internal/types"
	"screener/internal/upload"
)

// Backend is the screening API as the web UI uses it
type Backend interface {
	session.API
	jobform.Creator
	upload.Service
	Ping(ctx context.Context) (*types.APIInfo, error)
	BreakerStats() map[string]any
	Healthy() bool
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server serves the local web UI
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *errors.Logger

	backend  Backend
	store    *session.Store
	uploader *upload.Uploader
	metrics  *observability.Manager
	pages    map[string]*template.Template

	formMu sync.Mutex
	form   jobform.Form
}

// Options carries the collaborators of a Server
type Options struct {
	Version string
	Backend Backend
	Metrics *observability.Manager
}

// NewServer creates a new Server from the application config
func NewServer(appCfg *config.Config, opts Options, logger *errors.Logger) (*Server, error) {
	if logger == nil {
		logger = errors.Nop()
	}
	logger = logger.With("component", "web")
	if opts.Backend == nil {
		return nil, fmt.Errorf("server requires an API backend")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	srvCfg := appCfg.Server
	var rateLimiter *RateLimiter
	if srvCfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			srvCfg.RateLimit.RequestsPerMin,
			srvCfg.RateLimit.Window,
			srvCfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           srvCfg.Host,
		Port:           srvCfg.Port,
		Version:        opts.Version,
		AppConfig:      appCfg,
		ReadTimeout:    srvCfg.ReadTimeout,
		WriteTimeout:   srvCfg.WriteTimeout,
		IdleTimeout:    srvCfg.IdleTimeout,
		MaxRequestSize: srvCfg.MaxRequestSize,
		RateLimit:      &srvCfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
		backend:        opts.Backend,
		store:          session.NewStore(opts.Backend, logger, opts.Metrics),
		uploader:       upload.New(opts.Backend, appCfg.Upload, logger, opts.Metrics),
		metrics:        opts.Metrics,
		pages:          pages,
	}, nil
}
