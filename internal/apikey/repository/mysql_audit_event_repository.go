package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/allisson/apikeys/internal/apikey/domain"
	"github.com/allisson/apikeys/internal/database"
	apperrors "github.com/allisson/apikeys/internal/errors"
)

// MySQLAuditEventRepository implements AuditEvent persistence for MySQL.
type MySQLAuditEventRepository struct {
	db *sql.DB
}

// Create inserts an audit event. IDs are stored as BINARY(16), details as JSON.
func (m *MySQLAuditEventRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	querier := database.GetTx(ctx, m.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}
	apiKeyID, err := event.APIKeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}
	details, err := json.Marshal(event.Details)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event details")
	}

	query := `INSERT INTO api_key_audit_events (` + auditEventColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		apiKeyID,
		string(event.Action),
		event.ActorEmail,
		nullString(event.OwnerEmail),
		details,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// List returns audit events matching filter ordered by created_at descending.
func (m *MySQLAuditEventRepository) List(
	ctx context.Context,
	filter domain.AuditEventFilter,
) ([]*domain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []any

	if filter.OwnerEmail != nil {
		conditions = append(conditions, "owner_email = ?")
		args = append(args, *filter.OwnerEmail)
	}
	if filter.StartTime != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *filter.StartTime)
	}
	if filter.EndTime != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *filter.EndTime)
	}

	query := `SELECT ` + auditEventColumns + ` FROM api_key_audit_events`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*domain.AuditEvent, 0)
	for rows.Next() {
		var event domain.AuditEvent
		var id, apiKeyID, details []byte
		var action string
		var owner sql.NullString

		if err := rows.Scan(
			&id,
			&apiKeyID,
			&action,
			&event.ActorEmail,
			&owner,
			&details,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}

		if err := event.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
		}
		if err := event.APIKeyID.UnmarshalBinary(apiKeyID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
		}
		if err := decodeAuditEvent(&event, action, owner, details); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}

// NewMySQLAuditEventRepository creates a new MySQL AuditEvent repository.
func NewMySQLAuditEventRepository(db *sql.DB) *MySQLAuditEventRepository {
	return &MySQLAuditEventRepository{db: db}
}
