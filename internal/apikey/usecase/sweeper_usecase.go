package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/apikeys/internal/apikey/domain"
	"github.com/allisson/apikeys/internal/database"
)

// SweeperConfig holds expiration sweeper configuration.
type SweeperConfig struct {
	Interval  time.Duration
	BatchSize int
}

const defaultSweepBatchSize = 100

type sweeperUseCase struct {
	config        SweeperConfig
	txManager     database.TxManager
	apiKeyRepo    APIKeyRepository
	auditRecorder AuditRecorder
	logger        *slog.Logger
	now           func() time.Time
}

// listPage loads the candidates with an id greater than afterID, at most limit of them.
type listPage func(ctx context.Context, afterID uuid.UUID, limit int) ([]*domain.APIKey, error)

// SweepExpired deactivates every active key whose expiration passed and records an
// EXPIRE event for each. Returns the number of keys deactivated.
func (s *sweeperUseCase) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	list := func(ctx context.Context, afterID uuid.UUID, limit int) ([]*domain.APIKey, error) {
		return s.apiKeyRepo.ListExpired(ctx, now, afterID, limit)
	}

	return s.sweep(ctx, "expired", list, func(ctx context.Context, key *domain.APIKey) (bool, error) {
		// Re-check under lock: the key may have been revoked since it was listed
		if key.IsRevoked() || !key.IsActive || key.ExpiresAt.After(now) {
			return false, nil
		}

		key.IsActive = false
		if err := s.apiKeyRepo.Update(ctx, key); err != nil {
			return false, err
		}

		return true, s.auditRecorder.Record(ctx, key, domain.AuditActionExpire, domain.SystemActorEmail,
			map[string]any{
				"keyName":   key.Name,
				"expiredAt": key.ExpiresAt.Format(time.RFC3339),
				"reason":    domain.ExpireReasonAutomatic,
			},
		)
	})
}

// SweepGracePeriod revokes every rotated key whose grace period ended and records a
// REVOKE event for each. Returns the number of keys revoked.
func (s *sweeperUseCase) SweepGracePeriod(ctx context.Context) (int, error) {
	now := s.now()
	list := func(ctx context.Context, afterID uuid.UUID, limit int) ([]*domain.APIKey, error) {
		return s.apiKeyRepo.ListGracePeriodElapsed(ctx, now, afterID, limit)
	}

	return s.sweep(ctx, "grace_period", list, func(ctx context.Context, key *domain.APIKey) (bool, error) {
		if key.IsRevoked() || key.GracePeriodEndsAt == nil || key.GracePeriodEndsAt.After(now) {
			return false, nil
		}

		key.Revoke(now, domain.SystemActorEmail)
		if err := s.apiKeyRepo.Update(ctx, key); err != nil {
			return false, err
		}

		return true, s.auditRecorder.Record(ctx, key, domain.AuditActionRevoke, domain.SystemActorEmail,
			map[string]any{
				"keyName":            key.Name,
				"keyType":            string(key.Scope),
				"gracePeriodEndedAt": key.GracePeriodEndsAt.Format(time.RFC3339),
				"reason":             domain.RevokeReasonGracePeriodElapsed,
			},
		)
	})
}

// sweep pages through the candidates by id and applies fn to each in its own
// transaction, re-reading the row under lock first. fn returns false when the stored
// state no longer qualifies. Failures are logged and skipped; the cursor moves past
// them so they cannot hold back later candidates. The result counts applied changes.
func (s *sweeperUseCase) sweep(
	ctx context.Context,
	phase string,
	list listPage,
	fn func(ctx context.Context, key *domain.APIKey) (bool, error),
) (int, error) {
	limit := s.config.BatchSize
	if limit <= 0 {
		limit = defaultSweepBatchSize
	}

	swept, failed, candidates := 0, 0, 0
	cursor := uuid.Nil
	for ctx.Err() == nil {
		batch, err := list(ctx, cursor, limit)
		if err != nil {
			return swept, err
		}
		candidates += len(batch)

		for _, candidate := range batch {
			if ctx.Err() != nil {
				break
			}

			applied, err := s.sweepOne(ctx, candidate.ID, fn)
			if err != nil {
				failed++
				s.logger.Error("failed to sweep api key",
					slog.String("phase", phase),
					slog.String("api_key_id", candidate.ID.String()),
					slog.Any("error", err),
				)
				continue
			}
			if applied {
				swept++
			}
		}

		if len(batch) < limit {
			break
		}
		cursor = batch[len(batch)-1].ID
	}

	if swept > 0 || failed > 0 {
		s.logger.Info("api key sweep completed",
			slog.String("phase", phase),
			slog.Int("candidates", candidates),
			slog.Int("swept", swept),
			slog.Int("failed", failed),
		)
	}
	return swept, nil
}

func (s *sweeperUseCase) sweepOne(
	ctx context.Context,
	id uuid.UUID,
	fn func(ctx context.Context, key *domain.APIKey) (bool, error),
) (bool, error) {
	applied := false
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		key, err := s.apiKeyRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		applied, err = fn(ctx, key)
		return err
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// NewSweeperUseCase creates the expiration sweeper.
func NewSweeperUseCase(
	config SweeperConfig,
	txManager database.TxManager,
	apiKeyRepo APIKeyRepository,
	auditRecorder AuditRecorder,
	logger *slog.Logger,
) SweeperUseCase {
	return &sweeperUseCase{
		config:        config,
		txManager:     txManager,
		apiKeyRepo:    apiKeyRepo,
		auditRecorder: auditRecorder,
		logger:        logger,
		now:           utcNow,
	}
}
