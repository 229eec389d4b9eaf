package models

import (
	"time"
)

// Folder is a node in a tenant-scoped folder tree. ParentID is nil for root
// folders; a non-nil parent always belongs to the same tenant.
type Folder struct {
	ID        int64      `json:"id" db:"id"`
	TenantID  int64      `json:"tenant_id" db:"tenant_id"`
	ParentID  *int64     `json:"parent_id" db:"parent_id"` // NULL = root
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// FolderTreeNode is a folder with its resolved children, used by the tree
// endpoint. Computed, never stored.
type FolderTreeNode struct {
	Folder
	Children  []*FolderTreeNode `json:"children"`
	Documents []Document        `json:"documents,omitempty"`
}
