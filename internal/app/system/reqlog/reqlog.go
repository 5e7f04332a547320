// Package reqlog assigns a trace id to every request and writes one zap
// access-log line when it completes.
package reqlog

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header carries the trace id on both request and response.
const Header = "X-Trace-Id"

type ctxKey struct{}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware logs method, path, status and duration of every request under a
// fresh UUIDv7 trace id. A trace id supplied by the client is ignored.
func Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID, err := uuid.NewV7()
			if err != nil {
				traceID = uuid.New()
			}
			id := traceID.String()

			r.Header.Set(Header, id)
			r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			w.Header().Set(Header, id)

			next.ServeHTTP(sw, r)

			logger.Info("request completed",
				zap.String("trace_id", id),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// TraceID returns the trace id assigned to the request, or "".
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
