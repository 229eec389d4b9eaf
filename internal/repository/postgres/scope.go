package postgres

import (
	"docuvault/internal/domain"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/tenant"

	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Scope is the tenant enforcement point every repository call passes
// through. It couples executor selection (pool vs in-flight transaction)
// with the bound tenant id, so a repository cannot obtain a query surface
// without also obtaining the tenant predicate. There is no variant that
// skips the check; business logic has no opt-out path.
type Scope struct {
	pool *pgxpool.Pool
}

// NewScope creates the enforcement point for a pool.
func NewScope(pool *pgxpool.Pool) *Scope {
	return &Scope{pool: pool}
}

// Acquire returns the executor for the context together with the bound
// tenant id. Fails with ErrTenantContextMissing when no tenant context is
// bound; the failure is fatal to the operation and never retried.
func (s *Scope) Acquire(ctx context.Context) (repositories.DBTX, int64, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	return GetExecutor(ctx, s.pool), tc.TenantID(), nil
}

// Stamp is the pre-write hook. An unset tenant id (zero) is stamped with the
// bound tenant; a set tenant id that disagrees fails with a
// TenantViolationError - a cross-tenant write is never silently corrected.
// Returns the bound tenant id for convenience.
func (s *Scope) Stamp(ctx context.Context, tenantID *int64) (int64, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return 0, err
	}
	switch *tenantID {
	case 0:
		*tenantID = tc.TenantID()
	case tc.TenantID():
		// already stamped correctly
	default:
		return 0, &domain.TenantViolationError{
			BoundTenantID:  tc.TenantID(),
			RecordTenantID: *tenantID,
		}
	}
	return tc.TenantID(), nil
}
