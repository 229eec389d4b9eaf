package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
)

// maxAncestorDepth bounds the recursive ancestor walk. A chain this deep is
// either pathological data or a cycle; the resolver treats hitting the bound
// as a corrupt hierarchy rather than walking forever.
const maxAncestorDepth = 128

// PostgresFolderRepository implements repositories.FolderRepository.
type PostgresFolderRepository struct {
	scope  *Scope
	tables *TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository.
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		scope:  config.Scope,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a folder stamped with the bound tenant id. The parent, when
// set, must exist in the same tenant; the insert enforces that with a scoped
// subquery so a cross-tenant parent reads as nonexistent.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	tenantID, err := r.scope.Stamp(ctx, &folder.TenantID)
	if err != nil {
		return err
	}
	db, _, err := r.scope.Acquire(ctx)
	if err != nil {
		return err
	}

	if folder.ParentID != nil {
		query := fmt.Sprintf(`
			SELECT EXISTS (
				SELECT 1 FROM %s
				WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
			)
		`, r.tables.Folders)
		var parentVisible bool
		if err := db.QueryRow(ctx, query, *folder.ParentID, tenantID).Scan(&parentVisible); err != nil {
			return fmt.Errorf("check parent folder: %w", err)
		}
		if !parentVisible {
			return fmt.Errorf("parent folder %d: %w", *folder.ParentID, domain.ErrNotFound)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, parent_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	err = db.QueryRow(ctx, query, tenantID, folder.ParentID, folder.Name).
		Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder within the bound tenant.
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, parent_id, name, created_at, updated_at
		FROM %s
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, r.tables.Folders)

	var folder models.Folder
	err = db.QueryRow(ctx, query, id, tenantID).Scan(
		&folder.ID,
		&folder.TenantID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// Update persists a rename or move. A move to a cross-tenant parent fails
// the same way a move to a nonexistent parent does.
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	if _, err := r.scope.Stamp(ctx, &folder.TenantID); err != nil {
		return err
	}
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return err
	}

	if folder.ParentID != nil {
		query := fmt.Sprintf(`
			SELECT EXISTS (
				SELECT 1 FROM %s
				WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
			)
		`, r.tables.Folders)
		var parentVisible bool
		if err := db.QueryRow(ctx, query, *folder.ParentID, tenantID).Scan(&parentVisible); err != nil {
			return fmt.Errorf("check parent folder: %w", err)
		}
		if !parentVisible {
			return fmt.Errorf("parent folder %d: %w", *folder.ParentID, domain.ErrNotFound)
		}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Folders)

	err = db.QueryRow(ctx, query, folder.Name, folder.ParentID, folder.ID, tenantID).
		Scan(&folder.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("folder %d: %w", folder.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	return nil
}

// SoftDelete marks the folder deleted and returns the final record.
func (r *PostgresFolderRepository) SoftDelete(ctx context.Context, id int64) (*models.Folder, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		RETURNING id, tenant_id, parent_id, name, created_at, updated_at, deleted_at
	`, r.tables.Folders)

	var folder models.Folder
	err = db.QueryRow(ctx, query, id, tenantID).Scan(
		&folder.ID,
		&folder.TenantID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
		&folder.DeletedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("delete folder: %w", err)
	}

	return &folder, nil
}

// ListChildren returns the direct children of parentID, or root folders when
// parentID is nil.
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *int64) ([]models.Folder, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, parent_id, name, created_at, updated_at
		FROM %s
		WHERE tenant_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND deleted_at IS NULL
		ORDER BY name
	`, r.tables.Folders)

	rows, err := db.Query(ctx, query, tenantID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

// ListAll returns every live folder of the bound tenant.
func (r *PostgresFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, parent_id, name, created_at, updated_at
		FROM %s
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY id
	`, r.tables.Folders)

	rows, err := db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

// AncestorChain walks from the target folder up to its root, same tenant
// only, target first. The CTE carries a depth counter capped at
// maxAncestorDepth; a duplicate id in the result means the parent chain
// loops, which is reported as ErrCorruptHierarchy instead of iterating
// indefinitely.
func (r *PostgresFolderRepository) AncestorChain(ctx context.Context, id int64) ([]models.Folder, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		WITH RECURSIVE chain AS (
			SELECT id, tenant_id, parent_id, name, created_at, updated_at, 0 AS depth
			FROM %s
			WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
			UNION ALL
			SELECT f.id, f.tenant_id, f.parent_id, f.name, f.created_at, f.updated_at, c.depth + 1
			FROM %s f
			JOIN chain c ON f.id = c.parent_id
			WHERE f.tenant_id = $2 AND f.deleted_at IS NULL AND c.depth < $3
		)
		SELECT id, tenant_id, parent_id, name, created_at, updated_at
		FROM chain
		ORDER BY depth
	`, r.tables.Folders, r.tables.Folders)

	rows, err := db.Query(ctx, query, id, tenantID, maxAncestorDepth)
	if err != nil {
		return nil, fmt.Errorf("get ancestor chain: %w", err)
	}
	defer rows.Close()

	chain, err := scanFolders(rows)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}

	seen := make(map[int64]bool, len(chain))
	for _, f := range chain {
		if seen[f.ID] {
			r.logger.Error("folder parent chain loops", "folder_id", id, "tenant_id", tenantID)
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrCorruptHierarchy)
		}
		seen[f.ID] = true
	}
	if len(chain) > maxAncestorDepth {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrCorruptHierarchy)
	}

	return chain, nil
}

func scanFolders(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.Folder, error) {
	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.TenantID,
			&folder.ParentID,
			&folder.Name,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	return folders, nil
}
