package repositories

import (
	"context"

	"docuvault/internal/domain/models"
)

// GrantRepository provides tenant-scoped access to folder grants. Grants are
// never hard-deleted; Revoke and Reactivate flip the active flag.
type GrantRepository interface {
	// Create inserts an active grant. A second active grant for the same
	// (folder, user) pair fails with DuplicateGrantError carrying the id of
	// the existing grant.
	Create(ctx context.Context, grant *models.FolderGrant) error

	GetByID(ctx context.Context, id int64) (*models.FolderGrant, error)

	// ListActiveForUser returns the user's active grants across the bound
	// tenant, keyed use: ACL resolution.
	ListActiveForUser(ctx context.Context, userID int64) ([]models.FolderGrant, error)

	// ListByFolder returns all grants on a folder, active and revoked.
	ListByFolder(ctx context.Context, folderID int64) ([]models.FolderGrant, error)

	// Revoke deactivates an active grant. ErrNotFound when no active grant
	// with the id exists in the bound tenant.
	Revoke(ctx context.Context, id int64) (*models.FolderGrant, error)

	// Reactivate re-enables a revoked grant. Fails with DuplicateGrantError
	// when another active grant already covers the same (folder, user) pair.
	Reactivate(ctx context.Context, id int64) (*models.FolderGrant, error)
}
