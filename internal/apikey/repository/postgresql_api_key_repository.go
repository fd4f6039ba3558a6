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

// PostgreSQLAPIKeyRepository implements APIKey persistence for PostgreSQL.
type PostgreSQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts key. A unique violation on rotated_from_id means the
// predecessor already has a successor.
func (p *PostgreSQLAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO api_keys (` + apiKeyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	var rotatedFrom uuid.NullUUID
	if key.RotatedFromID != nil {
		rotatedFrom = uuid.NullUUID{UUID: *key.RotatedFromID, Valid: true}
	}

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
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

func (p *PostgreSQLAPIKeyRepository) Get(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	return p.getOne(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (p *PostgreSQLAPIKeyRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	return p.getOne(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1 FOR UPDATE`, id)
}

// Update writes the mutable columns. The revoked_at guard makes revocation terminal
// even under concurrent writers.
func (p *PostgreSQLAPIKeyRepository) Update(ctx context.Context, key *domain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys
			  SET name = $1,
				  last_used_at = $2,
				  revoked_at = $3,
				  revoked_by_email = $4,
				  is_active = $5,
				  grace_period_ends_at = $6
			  WHERE id = $7 AND revoked_at IS NULL`

	result, err := querier.ExecContext(
		ctx,
		query,
		key.Name,
		nullTime(key.LastUsedAt),
		nullTime(key.RevokedAt),
		nullString(key.RevokedByEmail),
		key.IsActive,
		nullTime(key.GracePeriodEndsAt),
		key.ID,
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

func (p *PostgreSQLAPIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx, `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, usedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update api key last used")
	}
	return nil
}

func (p *PostgreSQLAPIKeyRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE scope = $1 AND owner_email = $2
			  ORDER BY created_at DESC, id DESC`
	return p.list(ctx, query, string(domain.ScopeUser), ownerEmail)
}

func (p *PostgreSQLAPIKeyRepository) ListByScope(ctx context.Context, scope domain.Scope) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE scope = $1
			  ORDER BY created_at DESC, id DESC`
	return p.list(ctx, query, string(scope))
}

func (p *PostgreSQLAPIKeyRepository) ListAll(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`
	return p.list(ctx, query, limit, offset)
}

func (p *PostgreSQLAPIKeyRepository) ListByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE secret_prefix = $1`
	return p.list(ctx, query, prefix)
}

func (p *PostgreSQLAPIKeyRepository) ListExpired(
	ctx context.Context,
	now time.Time,
	afterID uuid.UUID,
	limit int,
) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE is_active = TRUE AND revoked_at IS NULL AND expires_at <= $1 AND id > $2
			  ORDER BY id ASC
			  LIMIT $3`
	return p.list(ctx, query, now, afterID, limit)
}

func (p *PostgreSQLAPIKeyRepository) ListGracePeriodElapsed(
	ctx context.Context,
	now time.Time,
	afterID uuid.UUID,
	limit int,
) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
			  WHERE revoked_at IS NULL AND grace_period_ends_at IS NOT NULL AND grace_period_ends_at <= $1
			  AND id > $2
			  ORDER BY id ASC
			  LIMIT $3`
	return p.list(ctx, query, now, afterID, limit)
}

func (p *PostgreSQLAPIKeyRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	key, err := scanPostgreSQLAPIKey(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get api key")
	}
	return key, nil
}

func (p *PostgreSQLAPIKeyRepository) list(ctx context.Context, query string, args ...any) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := make([]*domain.APIKey, 0)
	for rows.Next() {
		key, err := scanPostgreSQLAPIKey(rows)
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

func scanPostgreSQLAPIKey(row rowScanner) (*domain.APIKey, error) {
	var key domain.APIKey
	var n apiKeyNullables
	var rotatedFrom uuid.NullUUID

	err := row.Scan(
		&key.ID,
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

	n.apply(&key)
	if rotatedFrom.Valid {
		id := rotatedFrom.UUID
		key.RotatedFromID = &id
	}
	return &key, nil
}

// NewPostgreSQLAPIKeyRepository creates a new PostgreSQL APIKey repository.
func NewPostgreSQLAPIKeyRepository(db *sql.DB) *PostgreSQLAPIKeyRepository {
	return &PostgreSQLAPIKeyRepository{db: db}
}
