package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/linkforge/shortlink/internal/domain"
	"github.com/linkforge/shortlink/internal/logsink"
	"github.com/linkforge/shortlink/internal/service"
)

type contextKey string

const (
	ownerIDKey     contextKey = "ownerID"
	ownerHolderKey contextKey = "ownerHolder"
)

// ownerHolder lets the auth middleware report the resolved owner back to
// the logging middleware, which wraps it.
type ownerHolder struct {
	id string
}

// OwnerID returns the authenticated owner from the request context
func OwnerID(ctx context.Context) string {
	if id, ok := ctx.Value(ownerIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogger logs each request, feeds the persistent request log sink,
// and records request metrics.
func RequestLogger(logger *zap.Logger, sink *logsink.Sink, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			holder := &ownerHolder{}
			ctx := context.WithValue(r.Context(), ownerHolderKey, holder)

			next.ServeHTTP(ww, r.WithContext(ctx))

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", duration),
				zap.String("source_ip", r.RemoteAddr),
			)

			entry := &domain.RequestLog{
				Method:     r.Method,
				Path:       r.URL.Path,
				Status:     status,
				DurationMs: duration.Milliseconds(),
				SourceIP:   r.RemoteAddr,
				OwnerID:    holder.id,
				Timestamp:  start.UTC(),
			}
			if status >= http.StatusBadRequest {
				entry.Error = http.StatusText(status)
			}
			if sink != nil {
				sink.Record(entry)
			}

			if metrics != nil {
				metrics.observeRequest(r.Method, status, duration)
			}
		})
	}
}

// RequireAuth rejects requests without a valid bearer token and places
// the owner ID in the request context.
func RequireAuth(accounts service.Accounts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ownerID, err := accounts.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
			if holder, ok := ctx.Value(ownerHolderKey).(*ownerHolder); ok {
				holder.id = ownerID
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
