package services

import (
	"context"

	"docuvault/internal/domain/models"
)

// CreateFolderRequest carries folder creation input. ParentID nil creates a
// root folder, which requires the tenant ADMIN role; child creation requires
// WRITE on the parent.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// UpdateFolderRequest renames and/or moves a folder. Nil fields are left
// unchanged; moving requires WRITE on both the folder and the new parent.
type UpdateFolderRequest struct {
	Name     *string `json:"name"`
	ParentID *int64  `json:"parent_id"`
}

// FolderService implements folder operations behind the access decision
// point.
type FolderService interface {
	Create(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)
	Get(ctx context.Context, id int64) (*models.Folder, error)
	Update(ctx context.Context, id int64, req *UpdateFolderRequest) (*models.Folder, error)
	Delete(ctx context.Context, id int64) (*models.Folder, error)
	Tree(ctx context.Context, rootID int64) (*models.FolderTreeNode, error)
}
