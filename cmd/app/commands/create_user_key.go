package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/allisson/apikeys/internal/apikey/domain"
	apikeyUseCase "github.com/allisson/apikeys/internal/apikey/usecase"
	customValidation "github.com/allisson/apikeys/internal/validation"
)

// RunCreateUserKey issues a USER scoped API key owned by ownerEmail and prints the
// plaintext secret once. It is how a person gets their first key; later keys can be
// created through the API with that one. expirationDays and createdBy behave as in
// RunCreateSystemKey.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUserKey(
	ctx context.Context,
	apiKeyUseCase apikeyUseCase.APIKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	ownerEmail string,
	name string,
	expirationDays int,
	createdBy string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if expirationDays < 0 {
		return fmt.Errorf("expiration days must be a positive number, got: %d", expirationDays)
	}

	ownerEmail = strings.ToLower(strings.TrimSpace(ownerEmail))
	if err := validation.Validate(ownerEmail, validation.Required, customValidation.Email); err != nil {
		return fmt.Errorf("invalid owner email: %w", err)
	}

	logger.Info("creating user api key",
		slog.String("name", name),
		slog.String("owner_email", ownerEmail),
	)

	input := &domain.CreateAPIKeyInput{Name: name, OwnerEmail: ownerEmail}
	if expirationDays > 0 {
		input.ExpirationDays = &expirationDays
	}

	actor := operatorActor(createdBy)

	view, err := apiKeyUseCase.CreateUserKey(ctx, input, actor)
	if err != nil {
		return fmt.Errorf("failed to create user api key: %w", err)
	}

	if format == "json" {
		outputCreatedKeyJSON(view, writer)
	} else {
		outputCreatedKeyText("User", view, writer)
	}

	logger.Info("user api key created successfully",
		slog.String("api_key_id", view.ID.String()),
		slog.String("secret_prefix", view.SecretPrefix),
		slog.String("created_by", actor.Email),
	)

	return nil
}
