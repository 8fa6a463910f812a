// Package logging configures the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/ttbackend/apiserver/config"
)

// Logger wraps slog.Logger and owns the optional log file.
//
// All methods are safe for concurrent use.
type Logger struct {
	*slog.Logger
	file io.Closer
}

// New creates a Logger from the logging configuration.
//
// Output goes to stdout or stderr. When cfg.Dir is set the same records are
// also appended to cfg.File inside that directory.
func New(cfg config.LoggingConfig) (*Logger, error) {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	var file *os.File
	if strings.TrimSpace(cfg.Dir) != "" {
		name := cfg.File
		if name == "" {
			name = "ttbackend.log"
		}
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log dir %s: %w", cfg.Dir, err)
		}
		path := filepath.Join(cfg.Dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		file = f
		output = io.MultiWriter(output, f)
	}

	logger := NewWithWriter(output, cfg)
	if file != nil {
		logger.file = file
	}
	return logger, nil
}

// NewWithWriter creates a Logger writing to w. Used by New and by tests.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "ttbackend"),
	})

	return &Logger{Logger: slog.New(handler)}
}

// Default creates a JSON info logger on stdout for use before configuration
// is loaded.
func Default() *Logger {
	return NewWithWriter(os.Stdout, config.LoggingConfig{Level: "info", Format: "json"})
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return NewWithWriter(io.Discard, config.LoggingConfig{Level: "error"})
}

// With returns a Logger with additional default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// RequestLogger logs one record per HTTP request with its status and latency.
func (l *Logger) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			l.InfoContext(r.Context(), "http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
