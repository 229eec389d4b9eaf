package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface keeps the handler layer free of per-error
// switch statements for structured failures.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is().
var (
	// ErrInvalidToken indicates a malformed, mis-signed, or expired credential.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingClaim indicates a required claim (tenant id, user id) is absent
	// or not a positive integer.
	ErrMissingClaim = errors.New("missing required claim")
	// ErrTenantContextMissing indicates no tenant context is bound to the
	// current request. Never recovered locally; aborts the request.
	ErrTenantContextMissing = errors.New("tenant context missing")
	// ErrTenantViolation indicates a write attempted to cross tenants.
	// This is a programming or security error, never silently corrected.
	ErrTenantViolation = errors.New("tenant violation")
	// ErrDuplicateGrant indicates a second active grant was attempted for an
	// existing (folder, user) pair.
	ErrDuplicateGrant = errors.New("duplicate grant")
	// ErrCorruptHierarchy indicates a cycle in the folder tree.
	ErrCorruptHierarchy = errors.New("corrupt folder hierarchy")
	// ErrNotFound covers both nonexistent resources and resources the caller
	// has no visibility into. The two cases are deliberately identical.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientAccess indicates the caller can see the resource but
	// lacks the required access level.
	ErrInsufficientAccess = errors.New("insufficient access")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation failed")
)

// DuplicateGrantError reports a conflicting active grant, carrying the id of
// the grant that already covers the (folder, user) pair so the caller can
// revoke or reactivate instead of re-inserting.
type DuplicateGrantError struct {
	Message         string
	ExistingGrantID int64
}

func (e *DuplicateGrantError) Error() string   { return e.Message }
func (e *DuplicateGrantError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrDuplicateGrant.
func (e *DuplicateGrantError) Is(target error) bool {
	return target == ErrDuplicateGrant
}

// TenantViolationError reports a write whose tenant id disagrees with the
// bound context. The offending tenant ids are kept server-side only; the
// message must never reach a response body with identifiers in it.
type TenantViolationError struct {
	BoundTenantID  int64
	RecordTenantID int64
}

func (e *TenantViolationError) Error() string   { return "write crosses tenant boundary" }
func (e *TenantViolationError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrTenantViolation.
func (e *TenantViolationError) Is(target error) bool {
	return target == ErrTenantViolation
}
