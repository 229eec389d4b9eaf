package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"docuvault/internal/domain"
	"docuvault/internal/httputil"
)

// respondDomainError maps domain errors to HTTP responses.
//
// The 404/403 split is load-bearing: total invisibility (nonexistent id,
// foreign tenant, zero effective level) is always 404 with an identical
// response shape, while visible-but-insufficient is 403. Nothing here may
// inspect internal detail to upgrade one into the other, and no detail
// string names a resource's owning tenant.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInsufficientAccess):
		httputil.RespondError(w, http.StatusForbidden, "insufficient access")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrMissingClaim),
		errors.Is(err, domain.ErrTenantContextMissing):
		httputil.RespondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrDuplicateGrant), errors.Is(err, domain.ErrTenantViolation):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
