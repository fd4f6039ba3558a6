package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent records one lifecycle change of an API key.
type AuditEvent struct {
	ID         uuid.UUID
	APIKeyID   uuid.UUID
	Action     AuditAction
	ActorEmail string
	OwnerEmail *string // owner of the key when the event was emitted, nil for SYSTEM keys
	Details    map[string]any
	CreatedAt  time.Time
}

// AuditEventFilter narrows an audit query. Nil fields are not applied.
type AuditEventFilter struct {
	OwnerEmail *string
	StartTime  *time.Time
	EndTime    *time.Time
	Offset     int
	Limit      int
}
