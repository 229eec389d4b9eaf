package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
)

// PostgresDocumentRepository implements repositories.DocumentRepository.
type PostgresDocumentRepository struct {
	scope  *Scope
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		scope:  config.Scope,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a document stamped with the bound tenant id. The containing
// folder must be visible in the same tenant.
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	tenantID, err := r.scope.Stamp(ctx, &doc.TenantID)
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
	if err := db.QueryRow(ctx, query, doc.FolderID, tenantID).Scan(&folderVisible); err != nil {
		return fmt.Errorf("check folder: %w", err)
	}
	if !folderVisible {
		return fmt.Errorf("folder %d: %w", doc.FolderID, domain.ErrNotFound)
	}

	query = fmt.Sprintf(`
		INSERT INTO %s (tenant_id, folder_id, name, storage_key, size_bytes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	err = db.QueryRow(ctx, query,
		tenantID,
		doc.FolderID,
		doc.Name,
		doc.StorageKey,
		doc.SizeBytes,
		doc.CreatedBy,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document within the bound tenant.
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, folder_id, name, storage_key, size_bytes, created_by, created_at, updated_at
		FROM %s
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, r.tables.Documents)

	var doc models.Document
	err = db.QueryRow(ctx, query, id, tenantID).Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.FolderID,
		&doc.Name,
		&doc.StorageKey,
		&doc.SizeBytes,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// Update persists a rename or storage-key change.
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	if _, err := r.scope.Stamp(ctx, &doc.TenantID); err != nil {
		return err
	}
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, storage_key = $2, size_bytes = $3, updated_at = NOW()
		WHERE id = $4 AND tenant_id = $5 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Documents)

	err = db.QueryRow(ctx, query, doc.Name, doc.StorageKey, doc.SizeBytes, doc.ID, tenantID).
		Scan(&doc.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("document %d: %w", doc.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update document: %w", err)
	}

	return nil
}

// SoftDelete marks the document deleted and returns the final record.
func (r *PostgresDocumentRepository) SoftDelete(ctx context.Context, id int64) (*models.Document, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		RETURNING id, tenant_id, folder_id, name, storage_key, size_bytes, created_by, created_at, updated_at, deleted_at
	`, r.tables.Documents)

	var doc models.Document
	err = db.QueryRow(ctx, query, id, tenantID).Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.FolderID,
		&doc.Name,
		&doc.StorageKey,
		&doc.SizeBytes,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.DeletedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("delete document: %w", err)
	}

	return &doc, nil
}

// ListByFolder returns the live documents directly inside a folder.
func (r *PostgresDocumentRepository) ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error) {
	db, tenantID, err := r.scope.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, tenant_id, folder_id, name, storage_key, size_bytes, created_by, created_at, updated_at
		FROM %s
		WHERE tenant_id = $1 AND folder_id = $2 AND deleted_at IS NULL
		ORDER BY name
	`, r.tables.Documents)

	rows, err := db.Query(ctx, query, tenantID, folderID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.TenantID,
			&doc.FolderID,
			&doc.Name,
			&doc.StorageKey,
			&doc.SizeBytes,
			&doc.CreatedBy,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}
