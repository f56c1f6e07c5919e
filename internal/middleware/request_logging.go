package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RequestLogger logs one line per API request. Health probes and the
// metrics scrape are skipped to keep the log readable.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipLogging(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newStatusRecorder(w)
			var user string
			ctx := context.WithValue(r.Context(), loggedUserKey{}, &user)
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Int("bytes", wrapped.bytesWritten),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			}
			if user != "" {
				fields = append(fields, zap.String("user", user))
			}

			switch {
			case wrapped.statusCode >= 500:
				logger.Error("request", fields...)
			case wrapped.statusCode >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

// loggedUserKey carries a slot the auth middleware fills in further down
// the chain, so the access log can name the caller
type loggedUserKey struct{}

func noteUser(ctx context.Context, username string) {
	if slot, ok := ctx.Value(loggedUserKey{}).(*string); ok {
		*slot = username
	}
}

func shouldSkipLogging(path string) bool {
	return path == "/metrics" || strings.HasPrefix(path, "/health")
}
