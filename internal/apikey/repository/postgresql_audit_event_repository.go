package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/allisson/apikeys/internal/apikey/domain"
	"github.com/allisson/apikeys/internal/database"
	apperrors "github.com/allisson/apikeys/internal/errors"
)

// PostgreSQLAuditEventRepository implements AuditEvent persistence for PostgreSQL.
type PostgreSQLAuditEventRepository struct {
	db *sql.DB
}

// Create inserts an audit event. Details are stored as JSONB.
func (p *PostgreSQLAuditEventRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	querier := database.GetTx(ctx, p.db)

	details, err := json.Marshal(event.Details)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event details")
	}

	query := `INSERT INTO api_key_audit_events (` + auditEventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.APIKeyID,
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
func (p *PostgreSQLAuditEventRepository) List(
	ctx context.Context,
	filter domain.AuditEventFilter,
) ([]*domain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []any

	if filter.OwnerEmail != nil {
		args = append(args, *filter.OwnerEmail)
		conditions = append(conditions, fmt.Sprintf("owner_email = $%d", len(args)))
	}
	if filter.StartTime != nil {
		args = append(args, *filter.StartTime)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.EndTime != nil {
		args = append(args, *filter.EndTime)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT ` + auditEventColumns + ` FROM api_key_audit_events`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

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
		var action string
		var owner sql.NullString
		var details []byte

		if err := rows.Scan(
			&event.ID,
			&event.APIKeyID,
			&action,
			&event.ActorEmail,
			&owner,
			&details,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
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

func decodeAuditEvent(event *domain.AuditEvent, action string, owner sql.NullString, details []byte) error {
	event.Action = domain.AuditAction(action)
	event.OwnerEmail = stringPtr(owner)
	event.CreatedAt = event.CreatedAt.UTC()
	if len(details) > 0 {
		if err := json.Unmarshal(details, &event.Details); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal audit event details")
		}
	}
	return nil
}

// NewPostgreSQLAuditEventRepository creates a new PostgreSQL AuditEvent repository.
func NewPostgreSQLAuditEventRepository(db *sql.DB) *PostgreSQLAuditEventRepository {
	return &PostgreSQLAuditEventRepository{db: db}
}
