package models

import (
	"time"
)

// FolderGrant is an explicit ACL entry giving a user an access level on a
// folder. At most one grant per (folder, user) pair may be active at a time.
// Grants are never hard-deleted: revocation flips Active and the row stays
// for audit history. TenantID is immutable and always equals the folder's
// owning tenant.
type FolderGrant struct {
	ID        int64       `json:"id" db:"id"`
	TenantID  int64       `json:"tenant_id" db:"tenant_id"`
	FolderID  int64       `json:"folder_id" db:"folder_id"`
	UserID    int64       `json:"user_id" db:"user_id"`
	Level     AccessLevel `json:"access_level" db:"access_level"`
	Recursive bool        `json:"recursive" db:"recursive"`
	Active    bool        `json:"active" db:"active"`
	GrantedAt time.Time   `json:"granted_at" db:"granted_at"`
	RevokedAt *time.Time  `json:"revoked_at,omitempty" db:"revoked_at"`
}
