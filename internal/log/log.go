package log

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
)

// NewSlogLogger creates the process logger from cfg, writing to stdout, and installs it as the slog default.
func NewSlogLogger(cfg config.Log) *slog.Logger {
	logger := New(cfg, os.Stdout)
	slog.SetDefault(logger)

	return logger
}

// New creates a logger writing to w. JSON is meant for deployments, TEXT for local development.
func New(cfg config.Log, w io.Writer) *slog.Logger {
	var handler slog.Handler

	switch cfg.Format {
	case config.LogFormatText:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			AddSource:  cfg.AddSource,
			TimeFormat: time.RFC3339,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Value.Kind() == slog.KindAny {
					if _, ok := a.Value.Any().(error); ok {
						return tint.Attr(9, a)
					}
				}
				return a
			},
		})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.AddSource,
		})
	}

	return slog.New(newEnrichedHandler(handler))
}
