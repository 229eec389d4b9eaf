package repositories

import (
	"context"

	"docuvault/internal/domain/models"
)

// DocumentRepository provides tenant-scoped access to document records.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	SoftDelete(ctx context.Context, id int64) (*models.Document, error)
	ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error)
}
