package models

import (
	"time"
)

// AuditRecord is the structured event emitted to the audit service.
// Append-only on the consumer side; this service only produces them and
// never blocks on delivery.
type AuditRecord struct {
	EventID    string         `json:"event_id"`
	TenantID   int64          `json:"tenant_id"`
	UserID     int64          `json:"user_id,omitempty"` // 0 = system/synthetic context
	EventCode  string         `json:"event_code"`
	Details    string         `json:"details,omitempty"`
	SourceIP   string         `json:"source_ip,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Audit event codes produced by this service.
const (
	AuditFolderCreated    = "folder.created"
	AuditFolderUpdated    = "folder.updated"
	AuditFolderDeleted    = "folder.deleted"
	AuditDocumentCreated  = "document.created"
	AuditDocumentUpdated  = "document.updated"
	AuditDocumentDeleted  = "document.deleted"
	AuditGrantCreated     = "grant.created"
	AuditGrantRevoked     = "grant.revoked"
	AuditGrantReactivated = "grant.reactivated"
	AuditAccessDenied     = "access.denied"
)
