package repositories

import (
	"context"

	"docuvault/internal/domain/models"
)

// FolderRepository provides tenant-scoped access to folder records. Every
// method derives the tenant predicate from the bound tenant context; callers
// cannot widen or bypass it.
type FolderRepository interface {
	// Create inserts a folder, stamping the bound tenant id.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID returns the folder, or ErrNotFound when it does not exist in
	// the bound tenant (indistinguishable from a foreign tenant's folder).
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// Update persists a rename or move.
	Update(ctx context.Context, folder *models.Folder) error

	// SoftDelete marks the folder deleted and returns the final record.
	SoftDelete(ctx context.Context, id int64) (*models.Folder, error)

	// ListChildren returns the direct child folders of parentID, or the
	// tenant's root folders when parentID is nil.
	ListChildren(ctx context.Context, parentID *int64) ([]models.Folder, error)

	// ListAll returns every live folder of the bound tenant.
	ListAll(ctx context.Context) ([]models.Folder, error)

	// AncestorChain returns the folder and its ancestors, target first, root
	// last, walking the same tenant only. ErrNotFound when the target is not
	// visible; ErrCorruptHierarchy when the walk exceeds the depth bound.
	AncestorChain(ctx context.Context, id int64) ([]models.Folder, error)
}
