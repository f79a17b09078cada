package cli

import (
	"context"

	"screener/internal/server"
)

// Backend is the screening API as the commands use it
type Backend interface {
	server.Backend
	ResetAll(ctx context.Context) (string, error)
}
