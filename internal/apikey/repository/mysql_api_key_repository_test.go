package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

func TestMySQLAPIKeyRepository_Create(t *testing.T) {
	t.Run("Success_BinaryIDs", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAPIKeyRepository(db)
		key := newUserKey()
		from := uuid.Must(uuid.NewV7())
		key.RotatedFromID = &from

		id, _ := key.ID.MarshalBinary()
		fromBytes, _ := from.MarshalBinary()

		mock.ExpectExec("INSERT INTO api_keys").
			WithArgs(
				id, key.Name, key.SecretHash, key.SecretPrefix, "USER", "alice@example.com",
				"alice@example.com", key.CreatedAt, key.ExpiresAt, nil, nil, nil, true, fromBytes, nil,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), key))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_SecondSuccessor", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAPIKeyRepository(db)

		mock.ExpectExec("INSERT INTO api_keys").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		err := repo.Create(context.Background(), newUserKey())
		assert.ErrorIs(t, err, domain.ErrAPIKeyAlreadyRotated)
	})
}

func TestMySQLAPIKeyRepository_Get(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAPIKeyRepository(db)
		key := newUserKey()
		from := uuid.Must(uuid.NewV7())
		usedAt := testNow.Add(-time.Hour)
		key.RotatedFromID = &from
		key.LastUsedAt = &usedAt

		id, _ := key.ID.MarshalBinary()
		mock.ExpectQuery(regexp.QuoteMeta("FROM api_keys WHERE id = ?")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(apiKeyColumnList).AddRow(mysqlRow(t, key)...))

		got, err := repo.Get(context.Background(), key.ID)
		require.NoError(t, err)
		assert.Equal(t, key, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAPIKeyRepository(db)

		mock.ExpectQuery("FROM api_keys").WillReturnRows(sqlmock.NewRows(apiKeyColumnList))

		_, err := repo.GetForUpdate(context.Background(), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, domain.ErrAPIKeyNotFound)
	})
}

func TestMySQLAPIKeyRepository_Update(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAPIKeyRepository(db)
		key := newUserKey()
		graceEnds := testNow.Add(24 * time.Hour)
		key.GracePeriodEndsAt = &graceEnds

		id, _ := key.ID.MarshalBinary()
		mock.ExpectExec(regexp.QuoteMeta("WHERE id = ? AND revoked_at IS NULL")).
			WithArgs(key.Name, nil, nil, nil, true, graceEnds, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), key))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_AlreadyRevokedRow", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAPIKeyRepository(db)

		mock.ExpectExec("UPDATE api_keys").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), newUserKey())
		assert.ErrorIs(t, err, domain.ErrAPIKeyConcurrentUpdate)
	})
}

func TestMySQLAPIKeyRepository_ListExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLAPIKeyRepository(db)
	expired := newUserKey()
	expired.ExpiresAt = testNow.Add(-time.Minute)
	system := newUserKey()
	system.Scope = domain.ScopeSystem
	system.OwnerEmail = nil
	system.CreatedByEmail = "system"

	after := uuid.Must(uuid.NewV7())
	cursor, err := after.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("expires_at <= ? AND id > ? ORDER BY id ASC LIMIT ?")).
		WithArgs(testNow, cursor, 25).
		WillReturnRows(
			sqlmock.NewRows(apiKeyColumnList).
				AddRow(mysqlRow(t, expired)...).
				AddRow(mysqlRow(t, system)...),
		)

	keys, err := repo.ListExpired(context.Background(), testNow, after, 25)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, expired, keys[0])
	assert.Nil(t, keys[1].OwnerEmail)
	assert.Equal(t, domain.ScopeSystem, keys[1].Scope)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAPIKeyRepository_ListByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLAPIKeyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE scope = ? AND owner_email = ?")).
		WithArgs("USER", "bob@example.com").
		WillReturnRows(sqlmock.NewRows(apiKeyColumnList))

	keys, err := repo.ListByOwner(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAPIKeyRepository_UpdateLastUsed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLAPIKeyRepository(db)
	id := uuid.Must(uuid.NewV7())
	idBytes, _ := id.MarshalBinary()

	mock.ExpectExec("UPDATE api_keys SET last_used_at").
		WithArgs(testNow, idBytes).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastUsed(context.Background(), id, testNow))
	assert.NoError(t, mock.ExpectationsWereMet())
}
