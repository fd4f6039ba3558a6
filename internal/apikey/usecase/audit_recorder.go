package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/apikeys/internal/apikey/domain"
	apperrors "github.com/allisson/apikeys/internal/errors"
)

type auditRecorder struct {
	auditEventRepo AuditEventRepository
	logger         *slog.Logger
	now            func() time.Time
}

// Record stores one audit event for key. The owner is captured at emission time so
// queries by owner keep working after ownership-relevant fields change.
func (a *auditRecorder) Record(
	ctx context.Context,
	key *domain.APIKey,
	action domain.AuditAction,
	actorEmail string,
	details map[string]any,
) error {
	if details == nil {
		details = map[string]any{}
	}

	event := &domain.AuditEvent{
		ID:         uuid.Must(uuid.NewV7()),
		APIKeyID:   key.ID,
		Action:     action,
		ActorEmail: actorEmail,
		OwnerEmail: key.OwnerEmail,
		Details:    details,
		CreatedAt:  a.now(),
	}

	if err := a.auditEventRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit event")
	}

	// The surrounding transaction may still roll back; callers log the outcome after commit.
	a.logger.Debug("api key audit event staged",
		slog.String("audit_event_id", event.ID.String()),
		slog.String("api_key_id", key.ID.String()),
		slog.String("action", string(action)),
		slog.String("actor", actorEmail),
	)
	return nil
}

// NewAuditRecorder creates an AuditRecorder backed by auditEventRepo.
func NewAuditRecorder(auditEventRepo AuditEventRepository, logger *slog.Logger) AuditRecorder {
	return &auditRecorder{
		auditEventRepo: auditEventRepo,
		logger:         logger,
		now:            utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
