package services

import (
	"context"

	"docuvault/internal/domain/models"
)

// CreateDocumentRequest carries document creation input. The content itself
// lives in external storage; StorageKey references it.
type CreateDocumentRequest struct {
	FolderID   int64  `json:"folder_id"`
	Name       string `json:"name"`
	StorageKey string `json:"storage_key"`
	SizeBytes  int64  `json:"size_bytes"`
}

// UpdateDocumentRequest renames a document or repoints its storage key.
type UpdateDocumentRequest struct {
	Name       *string `json:"name"`
	StorageKey *string `json:"storage_key"`
	SizeBytes  *int64  `json:"size_bytes"`
}

// DocumentService implements document operations behind the access decision
// point: READ on the containing folder for reads, WRITE for mutations.
type DocumentService interface {
	Create(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)
	Get(ctx context.Context, id int64) (*models.Document, error)
	Update(ctx context.Context, id int64, req *UpdateDocumentRequest) (*models.Document, error)
	Delete(ctx context.Context, id int64) (*models.Document, error)
	ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error)
}
