package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const traceContextKey contextKey = "trace_id"

// TraceMiddleware ensures each request carries a trace identifier,
// propagated via context and the X-Trace-ID header.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), traceContextKey, traceID)
		w.Header().Set("X-Trace-ID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceIDFromContext returns the request's trace identifier, or "".
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceContextKey).(string); ok {
		return v
	}
	return ""
}
