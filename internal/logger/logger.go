package logger

import (
	"log/slog"
	"os"

	"github.com/courseforge/commerce/internal/config"
)

// New creates a preconfigured slog.Logger.
func New(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
