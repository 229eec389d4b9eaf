package services

import (
	"context"

	"docuvault/internal/domain/models"
)

// CreateGrantRequest carries grant creation input. The access level is the
// canonical uppercase name; recursive grants are inherited by descendants.
type CreateGrantRequest struct {
	FolderID  int64              `json:"folder_id"`
	UserID    int64              `json:"user_id"`
	Level     models.AccessLevel `json:"access_level"`
	Recursive bool               `json:"recursive"`
}

// GrantService implements grant administration. Every operation requires
// ADMIN on the target folder. Reactivation is a distinct operation on an
// existing revoked grant, never a re-insert.
type GrantService interface {
	Create(ctx context.Context, req *CreateGrantRequest) (*models.FolderGrant, error)
	ListByFolder(ctx context.Context, folderID int64) ([]models.FolderGrant, error)
	Revoke(ctx context.Context, grantID int64) (*models.FolderGrant, error)
	Reactivate(ctx context.Context, grantID int64) (*models.FolderGrant, error)
}
