package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
)

// PostgresGrantRepository implements repositories.GrantRepository. The table
// carries a partial unique index on (folder_id, user_id) WHERE active, so the
// one-active-grant-per-pair invariant holds even under concurrent inserts;
// the 23505 it raises is translated into a DuplicateGrantError here.
type PostgresGrantRepository struct {
	scope  *Scope
	tables *TableNames
	logger *slog.Logger
}

// NewGrantRepository creates a new grant repository.
func NewGrantRepository(config *RepositoryConfig) repositories.GrantRepository {
	return &PostgresGrantRepository{
		scope:  config.Scope,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts an active grant stamped with the bound tenant id. The
// folder must be visible in the same tenant, which also keeps the grant's
// tenant equal to the folder's owning tenant.
func (r *PostgresGrantRepository) Create(ctx context.Context, grant *models.FolderGrant) error {
	tenantID, err := r.scope.Stamp(ctx, &grant.TenantID)
	if err != nil {
		return err
	}
	db, _, err := r.scope.Acquire(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		)
	`, r.tables.Folders)
	var folderVisible bool
	if err := db.QueryRow(ctx, query, grant.FolderID, tenantID).Scan(&folderVisible); err != nil {
		return fmt.Errorf("check folder: %w", err)
	}
	if !folderVisible {
		return fmt.Errorf("folder %d: %w", grant.FolderID, domain.ErrNotFound)
	}

	query = fmt.Sprintf(`
		INSERT INTO %s (tenant_id, folder_id, user_id, access_level, recursive, active, granted_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW())
		RETURNING id, granted_at
	`, r.tables.Grants)

	err = db.QueryRow(ctx, query,
		tenantID,
		grant.FolderID,
		grant.UserID,
		grant.Level.String(),
		grant.Recursive,
	).Scan(&grant.ID, &grant.GrantedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			existingID, lookupErr := r.activeGrantID(ctx, db, tenantID, grant.FolderID, grant.UserID)
			if lookupErr != nil {
				return fmt.Errorf("grant for folder %d user %d: %w", grant.FolderID, grant.UserID, domain.ErrDuplicateGrant)
			}
			return &domain.DuplicateGrantError{
				Message:         fmt.Sprintf("an active grant already exists for user %d on folder %d", grant.UserID, grant.FolderID),
				ExistingGrantID: existingID,
			}
		}
		return fmt.Errorf("create grant: %w", err)
	}

	grant.Active = true
	return nil
}

// GetByID retrieves a grant within the bound tenant, active or revoked.
func (r *PostgresGrantRepository) GetByID(ctx context.Context, id int64) (*models.FolderGrant, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, folder_id, user_id, access_level, recursive, active, granted_at, revoked_at
		FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.Grants)

	grant, err := scanGrant(db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("grant %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get grant: %w", err)
	}

	return grant, nil
}

// ListActiveForUser returns the user's active grants across the bound
// tenant. The resolver keys them by folder id.
func (r *PostgresGrantRepository) ListActiveForUser(ctx context.Context, userID int64) ([]models.FolderGrant, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, folder_id, user_id, access_level, recursive, active, granted_at, revoked_at
		FROM %s
		WHERE tenant_id = $1 AND user_id = $2 AND active
	`, r.tables.Grants)

	rows, err := db.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants for user: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// ListByFolder returns every grant on a folder, active and revoked, newest
// first.
func (r *PostgresGrantRepository) ListByFolder(ctx context.Context, folderID int64) ([]models.FolderGrant, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, folder_id, user_id, access_level, recursive, active, granted_at, revoked_at
		FROM %s
		WHERE tenant_id = $1 AND folder_id = $2
		ORDER BY granted_at DESC
	`, r.tables.Grants)

	rows, err := db.Query(ctx, query, tenantID, folderID)
	if err != nil {
		return nil, fmt.Errorf("list grants for folder: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// Revoke deactivates an active grant.
func (r *PostgresGrantRepository) Revoke(ctx context.Context, id int64) (*models.FolderGrant, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET active = FALSE, revoked_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND active
		RETURNING id, tenant_id, folder_id, user_id, access_level, recursive, active, granted_at, revoked_at
	`, r.tables.Grants)

	grant, err := scanGrant(db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("active grant %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("revoke grant: %w", err)
	}

	return grant, nil
}

// Reactivate re-enables a revoked grant. The partial unique index rejects
// the flip when another active grant covers the pair in the meantime.
func (r *PostgresGrantRepository) Reactivate(ctx context.Context, id int64) (*models.FolderGrant, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET active = TRUE, revoked_at = NULL
		WHERE id = $1 AND tenant_id = $2 AND NOT active
		RETURNING id, tenant_id, folder_id, user_id, access_level, recursive, active, granted_at, revoked_at
	`, r.tables.Grants)

	grant, err := scanGrant(db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("revoked grant %d: %w", id, domain.ErrNotFound)
		}
		if IsPgDuplicateError(err) {
			return nil, &domain.DuplicateGrantError{
				Message: fmt.Sprintf("another active grant already covers the pair for grant %d", id),
			}
		}
		return nil, fmt.Errorf("reactivate grant: %w", err)
	}

	return grant, nil
}

func (r *PostgresGrantRepository) activeGrantID(ctx context.Context, db repositories.DBTX, tenantID, folderID, userID int64) (int64, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE tenant_id = $1 AND folder_id = $2 AND user_id = $3 AND active
	`, r.tables.Grants)

	var id int64
	if err := db.QueryRow(ctx, query, tenantID, folderID, userID).Scan(&id); err != nil {
		return 0, fmt.Errorf("get existing grant id: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row rowScanner) (*models.FolderGrant, error) {
	var grant models.FolderGrant
	var level string
	err := row.Scan(
		&grant.ID,
		&grant.TenantID,
		&grant.FolderID,
		&grant.UserID,
		&level,
		&grant.Recursive,
		&grant.Active,
		&grant.GrantedAt,
		&grant.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := models.ParseAccessLevel(level)
	if err != nil {
		return nil, fmt.Errorf("stored access level: %w", err)
	}
	grant.Level = parsed
	return &grant, nil
}

func scanGrants(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.FolderGrant, error) {
	var grants []models.FolderGrant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, *grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	if grants == nil {
		grants = []models.FolderGrant{}
	}
	return grants, nil
}
