package repository

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

var (
	testNow          = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	apiKeyColumnList = []string{
		"id", "name", "secret_hash", "secret_prefix", "scope", "owner_email", "created_by_email",
		"created_at", "expires_at", "last_used_at", "revoked_at", "revoked_by_email", "is_active",
		"rotated_from_id", "grace_period_ends_at",
	}
	auditEventColumnList = []string{
		"id", "api_key_id", "action", "actor_email", "owner_email", "details", "created_at",
	}
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newUserKey() *domain.APIKey {
	owner := "alice@example.com"
	return &domain.APIKey{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           "ci-pipeline",
		SecretHash:     "$2a$12$hash",
		SecretPrefix:   "idp_user_AbCdEfGhIj",
		Scope:          domain.ScopeUser,
		OwnerEmail:     &owner,
		CreatedByEmail: owner,
		CreatedAt:      testNow,
		ExpiresAt:      testNow.AddDate(0, 0, 90),
		IsActive:       true,
	}
}

// postgresRow renders key the way lib/pq hands values to Scan.
func postgresRow(key *domain.APIKey) []driver.Value {
	var owner, revokedBy, rotatedFrom driver.Value
	var lastUsed, revokedAt, graceEnds driver.Value
	if key.OwnerEmail != nil {
		owner = *key.OwnerEmail
	}
	if key.RevokedByEmail != nil {
		revokedBy = *key.RevokedByEmail
	}
	if key.RotatedFromID != nil {
		rotatedFrom = key.RotatedFromID.String()
	}
	if key.LastUsedAt != nil {
		lastUsed = *key.LastUsedAt
	}
	if key.RevokedAt != nil {
		revokedAt = *key.RevokedAt
	}
	if key.GracePeriodEndsAt != nil {
		graceEnds = *key.GracePeriodEndsAt
	}
	return []driver.Value{
		key.ID.String(), key.Name, key.SecretHash, key.SecretPrefix, string(key.Scope), owner,
		key.CreatedByEmail, key.CreatedAt, key.ExpiresAt, lastUsed, revokedAt, revokedBy,
		key.IsActive, rotatedFrom, graceEnds,
	}
}

// mysqlRow renders key the way go-sql-driver/mysql hands values to Scan.
func mysqlRow(t *testing.T, key *domain.APIKey) []driver.Value {
	t.Helper()
	row := postgresRow(key)

	id, err := key.ID.MarshalBinary()
	require.NoError(t, err)
	row[0] = id

	if key.RotatedFromID != nil {
		from, err := key.RotatedFromID.MarshalBinary()
		require.NoError(t, err)
		row[13] = from
	}

	row[12] = int64(0)
	if key.IsActive {
		row[12] = int64(1)
	}
	return row
}
