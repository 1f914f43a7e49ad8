package app

import (
	"log/slog"
	"os"
)

// NewLogger returns a configured slog.Logger. Production deployments set
// LOG_FORMAT=json for machine readable output.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
