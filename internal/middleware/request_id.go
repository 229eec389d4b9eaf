package middleware

import (
	"net"
	"net/http"

	"docuvault/internal/httputil"

	"github.com/google/uuid"
)

// RequestID assigns a correlation id to each request and records the client
// address. Both ride on the context for logging and audit records.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		info := httputil.RequestInfo{
			RequestID: id,
			SourceIP:  clientIP(r),
		}
		next.ServeHTTP(w, r.WithContext(httputil.WithRequestInfo(r.Context(), info)))
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
