package models

import (
	"time"
)

// Document is a tenant-scoped document record. Content lives in external
// storage; StorageKey points at it. Rendering and physical storage are
// outside this service.
type Document struct {
	ID         int64      `json:"id" db:"id"`
	TenantID   int64      `json:"tenant_id" db:"tenant_id"`
	FolderID   int64      `json:"folder_id" db:"folder_id"`
	Name       string     `json:"name" db:"name"`
	StorageKey string     `json:"storage_key" db:"storage_key"`
	SizeBytes  int64      `json:"size_bytes" db:"size_bytes"`
	CreatedBy  int64      `json:"created_by" db:"created_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
