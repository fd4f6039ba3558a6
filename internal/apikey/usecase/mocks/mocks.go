// Package mocks provides testify mocks of the API key use cases for handler and command tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

// MockAPIKeyUseCase is a testify mock of usecase.APIKeyUseCase.
type MockAPIKeyUseCase struct {
	mock.Mock
}

func (m *MockAPIKeyUseCase) CreateUserKey(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	args := m.Called(ctx, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CredentialView), args.Error(1)
}

func (m *MockAPIKeyUseCase) CreateSystemKey(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	args := m.Called(ctx, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CredentialView), args.Error(1)
}

func (m *MockAPIKeyUseCase) Rename(
	ctx context.Context,
	id uuid.UUID,
	newName string,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	args := m.Called(ctx, id, newName, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CredentialView), args.Error(1)
}

func (m *MockAPIKeyUseCase) Revoke(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.CredentialView, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CredentialView), args.Error(1)
}

func (m *MockAPIKeyUseCase) Rotate(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.CredentialView, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CredentialView), args.Error(1)
}

func (m *MockAPIKeyUseCase) Get(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.CredentialView, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CredentialView), args.Error(1)
}

func (m *MockAPIKeyUseCase) ListForOwner(ctx context.Context, actor domain.Actor) ([]*domain.CredentialView, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CredentialView), args.Error(1)
}

func (m *MockAPIKeyUseCase) ListAll(
	ctx context.Context,
	actor domain.Actor,
	offset, limit int,
) ([]*domain.CredentialView, error) {
	args := m.Called(ctx, actor, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CredentialView), args.Error(1)
}

func (m *MockAPIKeyUseCase) ListAuditEvents(
	ctx context.Context,
	filter domain.AuditEventFilter,
	actor domain.Actor,
) ([]*domain.AuditEvent, error) {
	args := m.Called(ctx, filter, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditEvent), args.Error(1)
}

func (m *MockAPIKeyUseCase) Authenticate(ctx context.Context, plaintext string) (*domain.APIKey, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

// MockSweeperUseCase is a testify mock of usecase.SweeperUseCase.
type MockSweeperUseCase struct {
	mock.Mock
}

func (m *MockSweeperUseCase) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSweeperUseCase) SweepGracePeriod(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
