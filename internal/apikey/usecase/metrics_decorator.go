package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/apikeys/internal/apikey/domain"
	apperrors "github.com/allisson/apikeys/internal/errors"
	"github.com/allisson/apikeys/internal/metrics"
)

type apiKeyUseCaseWithMetrics struct {
	next    APIKeyUseCase
	metrics metrics.BusinessMetrics
}

// NewAPIKeyUseCaseWithMetrics wraps an APIKeyUseCase with metrics recording.
func NewAPIKeyUseCaseWithMetrics(useCase APIKeyUseCase, m metrics.BusinessMetrics) APIKeyUseCase {
	return &apiKeyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *apiKeyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, operation, status)
	a.metrics.RecordDuration(ctx, operation, time.Since(start), status)
}

func (a *apiKeyUseCaseWithMetrics) CreateUserKey(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	start := time.Now()
	view, err := a.next.CreateUserKey(ctx, input, actor)
	a.record(ctx, "create_user_key", start, err)
	return view, err
}

func (a *apiKeyUseCaseWithMetrics) CreateSystemKey(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	start := time.Now()
	view, err := a.next.CreateSystemKey(ctx, input, actor)
	a.record(ctx, "create_system_key", start, err)
	return view, err
}

func (a *apiKeyUseCaseWithMetrics) Rename(
	ctx context.Context,
	id uuid.UUID,
	newName string,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	start := time.Now()
	view, err := a.next.Rename(ctx, id, newName, actor)
	a.record(ctx, "rename", start, err)
	return view, err
}

func (a *apiKeyUseCaseWithMetrics) Revoke(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	start := time.Now()
	view, err := a.next.Revoke(ctx, id, actor)
	a.record(ctx, "revoke", start, err)
	return view, err
}

func (a *apiKeyUseCaseWithMetrics) Rotate(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	start := time.Now()
	view, err := a.next.Rotate(ctx, id, actor)
	a.record(ctx, "rotate", start, err)
	return view, err
}

func (a *apiKeyUseCaseWithMetrics) Get(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	start := time.Now()
	view, err := a.next.Get(ctx, id, actor)
	a.record(ctx, "get", start, err)
	return view, err
}

func (a *apiKeyUseCaseWithMetrics) ListForOwner(
	ctx context.Context,
	actor domain.Actor,
) ([]*domain.CredentialView, error) {
	start := time.Now()
	views, err := a.next.ListForOwner(ctx, actor)
	a.record(ctx, "list_for_owner", start, err)
	return views, err
}

func (a *apiKeyUseCaseWithMetrics) ListAll(
	ctx context.Context,
	actor domain.Actor,
	offset, limit int,
) ([]*domain.CredentialView, error) {
	start := time.Now()
	views, err := a.next.ListAll(ctx, actor, offset, limit)
	a.record(ctx, "list_all", start, err)
	return views, err
}

func (a *apiKeyUseCaseWithMetrics) ListAuditEvents(
	ctx context.Context,
	filter domain.AuditEventFilter,
	actor domain.Actor,
) ([]*domain.AuditEvent, error) {
	start := time.Now()
	events, err := a.next.ListAuditEvents(ctx, filter, actor)
	a.record(ctx, "list_audit_events", start, err)
	return events, err
}

// Authenticate is counted by outcome rather than as an operation; it runs on every request.
func (a *apiKeyUseCaseWithMetrics) Authenticate(ctx context.Context, plaintext string) (*domain.APIKey, error) {
	key, err := a.next.Authenticate(ctx, plaintext)

	outcome := "success"
	switch {
	case err == nil:
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		outcome = "invalid"
	default:
		outcome = "error"
	}
	a.metrics.RecordAuthentication(ctx, outcome)

	return key, err
}

type sweeperUseCaseWithMetrics struct {
	next    SweeperUseCase
	metrics metrics.BusinessMetrics
}

// NewSweeperUseCaseWithMetrics wraps a SweeperUseCase with metrics recording.
func NewSweeperUseCaseWithMetrics(useCase SweeperUseCase, m metrics.BusinessMetrics) SweeperUseCase {
	return &sweeperUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *sweeperUseCaseWithMetrics) SweepExpired(ctx context.Context) (int, error) {
	return s.observe(ctx, "sweep_expired", "expired", s.next.SweepExpired)
}

func (s *sweeperUseCaseWithMetrics) SweepGracePeriod(ctx context.Context) (int, error) {
	return s.observe(ctx, "sweep_grace_period", "grace_period", s.next.SweepGracePeriod)
}

func (s *sweeperUseCaseWithMetrics) observe(
	ctx context.Context,
	operation, phase string,
	fn func(ctx context.Context) (int, error),
) (int, error) {
	start := time.Now()
	count, err := fn(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, operation, status)
	s.metrics.RecordDuration(ctx, operation, time.Since(start), status)
	s.metrics.RecordSweep(ctx, phase, count)

	return count, err
}
