package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time { return testNow }

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

// mockTxManager runs fn inline unless an error is configured.
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

func newMockTxManager() *mockTxManager {
	m := &mockTxManager{}
	m.On("WithTx", mock.Anything, mock.Anything).Return(nil)
	return m
}

type mockAPIKeyRepository struct {
	mock.Mock
}

func (m *mockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockAPIKeyRepository) Get(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) Update(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockAPIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *mockAPIKeyRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, ownerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) ListByScope(ctx context.Context, scope domain.Scope) ([]*domain.APIKey, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) ListAll(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) ListByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) ListExpired(
	ctx context.Context,
	now time.Time,
	afterID uuid.UUID,
	limit int,
) ([]*domain.APIKey, error) {
	args := m.Called(ctx, now, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) ListGracePeriodElapsed(
	ctx context.Context,
	now time.Time,
	afterID uuid.UUID,
	limit int,
) ([]*domain.APIKey, error) {
	args := m.Called(ctx, now, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

type mockAuditEventRepository struct {
	mock.Mock
}

func (m *mockAuditEventRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockAuditEventRepository) List(
	ctx context.Context,
	filter domain.AuditEventFilter,
) ([]*domain.AuditEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditEvent), args.Error(1)
}

type mockAuditRecorder struct {
	mock.Mock
}

func (m *mockAuditRecorder) Record(
	ctx context.Context,
	key *domain.APIKey,
	action domain.AuditAction,
	actorEmail string,
	details map[string]any,
) error {
	args := m.Called(ctx, key, action, actorEmail, details)
	return args.Error(0)
}

type mockSecretHasher struct {
	mock.Mock
}

func (m *mockSecretHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *mockSecretHasher) Verify(plaintext, hash string) bool {
	args := m.Called(plaintext, hash)
	return args.Bool(0)
}

// userKey builds a live USER key created createdDaysAgo days before testNow with a 90 day lifetime.
func userKey(owner, name string, createdDaysAgo int) *domain.APIKey {
	createdAt := testNow.AddDate(0, 0, -createdDaysAgo)
	return &domain.APIKey{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           name,
		SecretHash:     "stored-hash",
		SecretPrefix:   "idp_user_AbCdEfGhIj",
		Scope:          domain.ScopeUser,
		OwnerEmail:     strPtr(owner),
		CreatedByEmail: owner,
		CreatedAt:      createdAt,
		ExpiresAt:      createdAt.AddDate(0, 0, 90),
		IsActive:       true,
	}
}

func systemKey(name string) *domain.APIKey {
	return &domain.APIKey{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           name,
		SecretHash:     "stored-hash",
		SecretPrefix:   "idp_system_AbCdEfGhI",
		Scope:          domain.ScopeSystem,
		CreatedByEmail: "admin@example.com",
		CreatedAt:      testNow.AddDate(0, 0, -1),
		ExpiresAt:      testNow.AddDate(0, 0, 89),
		IsActive:       true,
	}
}
