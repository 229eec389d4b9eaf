package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"docuvault/internal/httputil"
)

// Recovery converts a panic anywhere in the handler chain into a logged 500
// response instead of tearing down the connection. It runs inside RequestID,
// so the correlation id is available for the log line.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					attrs := []any{
						"error", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					}
					if info, ok := httputil.RequestInfoFromContext(r.Context()); ok {
						attrs = append(attrs, "request_id", info.RequestID)
					}
					logger.Error("panic recovered", attrs...)

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
