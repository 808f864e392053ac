// Package obs holds observability plumbing, currently just the logger.
package obs

import (
	"log/slog"
	"os"
)

// NewLogger builds the JSON structured logger used across the service.
func NewLogger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h)
}
