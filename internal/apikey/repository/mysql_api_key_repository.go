package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/apikeys/internal/apikey/domain"
	"github.com/allisson/apikeys/internal/database"
	apperrors "github.com/allisson/apikeys/internal/errors"
)

// MySQLAPIKeyRepository implements APIKey persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts key. A unique violation on rotated_from_id means the
// predecessor already has a successor.
func (m *MySQLAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO api_keys (` + apiKeyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	var rotatedFrom []byte
	if key.RotatedFromID != nil {
		rotatedFrom, err = key.RotatedFromID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal rotated from id")
		}
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		key.Name,
		key.SecretHash,
		key.SecretPrefix,
		string(key.Scope),
		nullString(key.OwnerEmail),
		key.CreatedByEmail,
		key.CreatedAt,
		key.ExpiresAt,
		nullTime(key.LastUsedAt),
		nullTime(key.RevokedAt),
		nullString(key.RevokedByEmail),
		key.IsActive,
		rotatedFrom,
		nullTime(key.GracePeriodEndsAt),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrAPIKeyAlreadyRotated
		}
		return apperrors.Wrap(err, "failed to create api key")
	}
	return nil
}

func (m *MySQLAPIKeyRepository) Get(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	return m.getOne(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = ?`, id)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (m *MySQLAPIKeyRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	return m.getOne(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = ? FOR UPDATE`, id)
}

// Update writes the mutable columns of an unrevoked key. Relies on clientFoundRows
// (see database.NormalizeMySQLDSN) so an unchanged row still counts as matched.
func (m *MySQLAPIKeyRepository) Update(ctx context.Context, key *domain.APIKey) error {
	querier := database.GetTx(ctx, m.db)

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `UPDATE api_keys
			  SET name = ?,
				  last_used_at = ?,
				  revoked_at = ?,
				  revoked_by_email = ?,
				  is_active = ?,
				  grace_period_ends_at = ?
			  WHERE id = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(
		ctx,
		query,
		key.Name,
		nullTime(key.LastUsedAt),
		nullTime(key.RevokedAt),
		nullString(key.RevokedByEmail),
		key.IsActive,
		nullTime(key.GracePeriodEndsAt),
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update api key")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrAPIKeyConcurrentUpdate
	}
	return nil
}

func (m *MySQLAPIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	_, err = querier.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, usedAt, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to update api key last used")
	}
	return nil
}

func (m *MySQLAPIKeyRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE scope = ? AND owner_email = ?
			  ORDER BY created_at DESC, id DESC`
	return m.list(ctx, query, string(domain.ScopeUser), ownerEmail)
}

func (m *MySQLAPIKeyRepository) ListByScope(ctx context.Context, scope domain.Scope) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE scope = ?
			  ORDER BY created_at DESC, id DESC`
	return m.list(ctx, query, string(scope))
}

func (m *MySQLAPIKeyRepository) ListAll(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`
	return m.list(ctx, query, limit, offset)
}

func (m *MySQLAPIKeyRepository) ListByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error) {
	return m.list(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE secret_prefix = ?`, prefix)
}

func (m *MySQLAPIKeyRepository) ListExpired(
	ctx context.Context,
	now time.Time,
	afterID uuid.UUID,
	limit int,
) ([]*domain.APIKey, error) {
	cursor, err := afterID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE is_active = TRUE AND revoked_at IS NULL AND expires_at <= ? AND id > ?
			  ORDER BY id ASC
			  LIMIT ?`
	return m.list(ctx, query, now, cursor, limit)
}

func (m *MySQLAPIKeyRepository) ListGracePeriodElapsed(
	ctx context.Context,
	now time.Time,
	afterID uuid.UUID,
	limit int,
) ([]*domain.APIKey, error) {
	cursor, err := afterID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE revoked_at IS NULL AND grace_period_ends_at IS NOT NULL AND grace_period_ends_at <= ?
			  AND id > ?
			  ORDER BY id ASC
			  LIMIT ?`
	return m.list(ctx, query, now, cursor, limit)
}

func (m *MySQLAPIKeyRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key id")
	}

	key, err := scanMySQLAPIKey(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get api key")
	}
	return key, nil
}

func (m *MySQLAPIKeyRepository) list(ctx context.Context, query string, args ...any) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := make([]*domain.APIKey, 0)
	for rows.Next() {
		key, err := scanMySQLAPIKey(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan api key")
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate api keys")
	}
	return keys, nil
}

func scanMySQLAPIKey(row rowScanner) (*domain.APIKey, error) {
	var key domain.APIKey
	var n apiKeyNullables
	var id, rotatedFrom []byte

	err := row.Scan(
		&id,
		&key.Name,
		&key.SecretHash,
		&key.SecretPrefix,
		&n.scope,
		&n.owner,
		&key.CreatedByEmail,
		&key.CreatedAt,
		&key.ExpiresAt,
		&n.lastUsed,
		&n.revokedAt,
		&n.revokedBy,
		&key.IsActive,
		&rotatedFrom,
		&n.graceEnds,
	)
	if err != nil {
		return nil, err
	}

	if err := key.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
	}
	if rotatedFrom != nil {
		var from uuid.UUID
		if err := from.UnmarshalBinary(rotatedFrom); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal rotated from id")
		}
		key.RotatedFromID = &from
	}

	n.apply(&key)
	return &key, nil
}

// NewMySQLAPIKeyRepository creates a new MySQL APIKey repository.
func NewMySQLAPIKeyRepository(db *sql.DB) *MySQLAPIKeyRepository {
	return &MySQLAPIKeyRepository{db: db}
}
