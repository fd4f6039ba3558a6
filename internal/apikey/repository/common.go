// Package repository implements API key and audit event persistence.
//
// PostgreSQL uses native UUID and JSONB columns, MySQL uses BINARY(16) and JSON.
// Every method runs on the transaction carried in ctx when present (database.GetTx).
package repository

import (
	"database/sql"
	"time"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

const apiKeyColumns = `id, name, secret_hash, secret_prefix, scope, owner_email, created_by_email,
	created_at, expires_at, last_used_at, revoked_at, revoked_by_email, is_active,
	rotated_from_id, grace_period_ends_at`

const auditEventColumns = `id, api_key_id, action, actor_email, owner_email, details, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// apiKeyNullables holds the nullable columns of an api_keys row while scanning.
type apiKeyNullables struct {
	scope     string
	owner     sql.NullString
	lastUsed  sql.NullTime
	revokedAt sql.NullTime
	revokedBy sql.NullString
	graceEnds sql.NullTime
}

func (n *apiKeyNullables) apply(key *domain.APIKey) {
	key.Scope = domain.Scope(n.scope)
	key.OwnerEmail = stringPtr(n.owner)
	key.LastUsedAt = timePtr(n.lastUsed)
	key.RevokedAt = timePtr(n.revokedAt)
	key.RevokedByEmail = stringPtr(n.revokedBy)
	key.GracePeriodEndsAt = timePtr(n.graceEnds)
	key.CreatedAt = key.CreatedAt.UTC()
	key.ExpiresAt = key.ExpiresAt.UTC()
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
