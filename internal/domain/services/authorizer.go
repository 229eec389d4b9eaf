package services

import (
	"context"

	"docuvault/internal/domain/models"
	"docuvault/internal/tenant"
)

// Authorizer is the single decision point for folder access. It composes
// token validation, context binding, and ACL resolution, and maps every
// denial to the correct visibility outcome:
//
//   - folder missing, foreign-tenant, or zero effective level -> ErrNotFound
//     (deliberately indistinguishable from a nonexistent id)
//   - visible but below the required level -> ErrInsufficientAccess
type Authorizer interface {
	// Authorize checks the already-bound tenant context against a folder.
	Authorize(ctx context.Context, folderID int64, required models.AccessLevel) (*tenant.Context, error)

	// AuthorizeToken validates a raw credential, binds a fresh tenant
	// context, and authorizes in one step. The returned context carries the
	// binding for the rest of the request.
	AuthorizeToken(ctx context.Context, rawToken string, folderID int64, required models.AccessLevel) (context.Context, *tenant.Context, error)

	// EffectiveLevel exposes the resolved level for a user on a folder.
	EffectiveLevel(ctx context.Context, userID, folderID int64) (models.AccessLevel, error)
}
