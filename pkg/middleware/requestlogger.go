package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/logger"
)

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// user_id, trace_id, and span_id and stores it in the context via
// logger.NewContext. Handlers retrieve it with logger.FromContext(ctx).
//
// Mount after Tracing so the span context is populated.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cid := r.Header.Get("X-Correlation-ID"); cid != "" {
				ctx = logger.WithCorrelationID(ctx, cid)
			}
			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
