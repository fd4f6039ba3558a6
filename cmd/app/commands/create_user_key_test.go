package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/apikeys/internal/apikey/domain"
	apikeyMocks "github.com/allisson/apikeys/internal/apikey/usecase/mocks"
)

func TestRunCreateUserKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	keyID := uuid.Must(uuid.NewV7())
	owner := "carol@example.com"
	plainSecret := "idp_user_0123456789abcdefghijklmnopqrstuv"

	newView := func() *domain.CredentialView {
		return &domain.CredentialView{
			ID:           keyID,
			Name:         "laptop",
			SecretPrefix: "idp_user_0123456789a",
			Scope:        domain.ScopeUser,
			OwnerEmail:   &owner,
			ExpiresAt:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			IsActive:     true,
			Status:       domain.StatusActive,
			PlainSecret:  &plainSecret,
		}
	}

	t.Run("text-output-issued-by-system", func(t *testing.T) {
		mockUseCase := &apikeyMocks.MockAPIKeyUseCase{}
		input := &domain.CreateAPIKeyInput{Name: "laptop", OwnerEmail: owner}
		mockUseCase.On("CreateUserKey", ctx, input, domain.SystemActor()).Return(newView(), nil)

		var out bytes.Buffer
		err := RunCreateUserKey(ctx, mockUseCase, logger, &out, " Carol@Example.com ", "laptop", 0, "", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "User API key created successfully!")
		require.Contains(t, out.String(), "Owner: carol@example.com")
		require.Contains(t, out.String(), plainSecret)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output-with-operator", func(t *testing.T) {
		mockUseCase := &apikeyMocks.MockAPIKeyUseCase{}
		actor := domain.Actor{Email: "ops@example.com", IsAdmin: true}
		mockUseCase.On("CreateUserKey", ctx, mock.MatchedBy(func(input *domain.CreateAPIKeyInput) bool {
			return input.OwnerEmail == owner && input.ExpirationDays != nil && *input.ExpirationDays == 7
		}), actor).Return(newView(), nil)

		var out bytes.Buffer
		err := RunCreateUserKey(ctx, mockUseCase, logger, &out, owner, "laptop", 7, "ops@example.com", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"owner_email": "carol@example.com"`)
		require.Contains(t, out.String(), `"scope": "USER"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-owner-email", func(t *testing.T) {
		for _, email := range []string{"", "carol", "   "} {
			mockUseCase := &apikeyMocks.MockAPIKeyUseCase{}

			err := RunCreateUserKey(ctx, mockUseCase, logger, &bytes.Buffer{}, email, "laptop", 0, "", "text")

			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid owner email")
			mockUseCase.AssertNotCalled(t, "CreateUserKey", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &apikeyMocks.MockAPIKeyUseCase{}
		mockUseCase.On("CreateUserKey", ctx, mock.Anything, domain.SystemActor()).
			Return(nil, domain.ErrMaxAPIKeysReached)

		var out bytes.Buffer
		err := RunCreateUserKey(ctx, mockUseCase, logger, &out, owner, "laptop", 0, "", "text")

		require.True(t, errors.Is(err, domain.ErrMaxAPIKeysReached))
		require.Empty(t, out.String())
	})

	t.Run("invalid-expiration-days", func(t *testing.T) {
		mockUseCase := &apikeyMocks.MockAPIKeyUseCase{}
		err := RunCreateUserKey(ctx, mockUseCase, logger, &bytes.Buffer{}, owner, "laptop", -3, "", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "expiration days must be a positive number")
	})
}
