package http

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/axelsub/axelsub/internal/infra/logging"
)

// RescueingMiddleware recovers from panics in HTTP handlers. It logs the
// panic with its stack trace and answers 500 with the generic error envelope.
func RescueingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if p := recover(); p != nil {
				log.ErrorContext(ctx, "request panic", slog.Group("http",
					"uri", r.RequestURI,
					"method", r.Method,
				), slog.Group("error",
					"panic", p,
					"stack", string(debug.Stack()),
				))
				WriteInternalError(w)
			}
		}(r.Context())
		next.ServeHTTP(w, r)
	})
}
