package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"docuvault/internal/auth"
	"docuvault/internal/httputil"
	"docuvault/internal/tenant"
)

// Auth validates the bearer token and binds the tenant context to the
// request. The binding rides on the request context, so it is visible to
// everything downstream - handlers, services, repositories - and released
// with the request on every exit path. An invalid token never binds a
// context, not even partially.
func Auth(validator *auth.Validator, roleAliases map[string]string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := validator.Validate(raw)
			if err != nil {
				logger.Debug("request rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			tc, err := tenant.New(claims.TenantID, userID, tenant.RolesFromNames(claims.Roles, roleAliases))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(tenant.NewContext(r.Context(), tc)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
