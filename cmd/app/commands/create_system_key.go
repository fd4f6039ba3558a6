package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/allisson/apikeys/internal/apikey/domain"
	apikeyUseCase "github.com/allisson/apikeys/internal/apikey/usecase"
)

// RunCreateSystemKey issues a SYSTEM scoped API key and prints the plaintext secret once.
// expirationDays of zero applies the configured default. createdBy names the operator
// recorded in the audit trail; empty means the system principal.
//
// Requirements: Database must be migrated and accessible.
func RunCreateSystemKey(
	ctx context.Context,
	apiKeyUseCase apikeyUseCase.APIKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
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

	logger.Info("creating system api key", slog.String("name", name))

	input := &domain.CreateAPIKeyInput{Name: name}
	if expirationDays > 0 {
		input.ExpirationDays = &expirationDays
	}

	actor := operatorActor(createdBy)

	view, err := apiKeyUseCase.CreateSystemKey(ctx, input, actor)
	if err != nil {
		return fmt.Errorf("failed to create system api key: %w", err)
	}

	if format == "json" {
		outputCreatedKeyJSON(view, writer)
	} else {
		outputCreatedKeyText("System", view, writer)
	}

	logger.Info("system api key created successfully",
		slog.String("api_key_id", view.ID.String()),
		slog.String("secret_prefix", view.SecretPrefix),
		slog.String("created_by", actor.Email),
	)

	return nil
}

// operatorActor returns the admin actor recorded as creator. An empty createdBy
// means the system principal.
func operatorActor(createdBy string) domain.Actor {
	if email := strings.ToLower(strings.TrimSpace(createdBy)); email != "" {
		return domain.Actor{Email: email, IsAdmin: true}
	}
	return domain.SystemActor()
}

func outputCreatedKeyText(kind string, view *domain.CredentialView, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "\n%s API key created successfully!\n", kind)
	_, _ = fmt.Fprintf(writer, "ID: %s\n", view.ID.String())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", view.Name)
	if view.OwnerEmail != nil {
		_, _ = fmt.Fprintf(writer, "Owner: %s\n", *view.OwnerEmail)
	}
	_, _ = fmt.Fprintf(writer, "Prefix: %s\n", view.SecretPrefix)
	_, _ = fmt.Fprintf(writer, "Expires At: %s\n", view.ExpiresAt.Format(time.RFC3339))
	if view.PlainSecret != nil {
		_, _ = fmt.Fprintf(writer, "Key: %s\n", *view.PlainSecret)
	}
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The key is shown only once. Store it securely.")
}

func outputCreatedKeyJSON(view *domain.CredentialView, writer io.Writer) {
	result := map[string]any{
		"id":         view.ID.String(),
		"name":       view.Name,
		"key_prefix": view.SecretPrefix,
		"scope":      string(view.Scope),
		"expires_at": view.ExpiresAt.Format(time.RFC3339),
	}
	if view.OwnerEmail != nil {
		result["owner_email"] = *view.OwnerEmail
	}
	if view.PlainSecret != nil {
		result["key"] = *view.PlainSecret
	}

	writeJSON(writer, result)
}
