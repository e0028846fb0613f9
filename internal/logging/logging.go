// Package logging configures the process-wide phuslu/log logger and
// provides the HTTP request logging middleware.
package logging

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/seenimoa/catalystiv/internal/config"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// Setup installs log.DefaultLogger according to cfg. Unknown levels fall back to info.
func Setup(cfg config.LoggingConfig) {
	log.DefaultLogger = New(cfg)
}

// New builds a logger writing to stderr in the configured format.
func New(cfg config.LoggingConfig) log.Logger {
	level := log.ParseLevel(strings.ToLower(cfg.Level))
	if cfg.Level == "" {
		level = log.InfoLevel
	}

	logger := log.Logger{
		Level:      level,
		TimeFormat: time.RFC3339,
	}
	if strings.EqualFold(cfg.Format, "json") {
		logger.Writer = &log.IOWriter{Writer: os.Stderr}
	} else {
		logger.Writer = &log.ConsoleWriter{
			Writer:         os.Stderr,
			ColorOutput:    false,
			QuoteString:    true,
			EndWithMessage: true,
		}
	}
	return logger
}

// RequestID returns the request ID stored by Middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Middleware assigns every request an ID (reusing the caller's X-Request-ID)
// and logs one line per request once the handler returns.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		entry := log.Info()
		if status >= http.StatusInternalServerError {
			entry = log.Warn()
		}
		entry.Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
