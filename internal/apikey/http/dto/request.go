// Package dto provides the request and response bodies of the API key endpoints.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/allisson/apikeys/internal/apikey/domain"
	customValidation "github.com/allisson/apikeys/internal/validation"
)

// CreateAPIKeyRequest is the body of POST /v1/api-keys and POST /v1/admin/api-keys.
// ExpirationDays may be omitted to use the server default.
type CreateAPIKeyRequest struct {
	Name           string `json:"name"`
	ExpirationDays *int   `json:"expiration_days"`
}

// Validate checks the name and the optional lifetime.
func (r *CreateAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, customValidation.KeyName...),
		validation.Field(&r.ExpirationDays, customValidation.ExpirationDays),
	)
}

// ToInput converts the request to the use case input.
func (r *CreateAPIKeyRequest) ToInput() *domain.CreateAPIKeyInput {
	return &domain.CreateAPIKeyInput{
		Name:           strings.TrimSpace(r.Name),
		ExpirationDays: r.ExpirationDays,
	}
}

// IssueUserAPIKeyRequest is the body of POST /v1/admin/user-api-keys, used by admins
// to issue a person's first key.
type IssueUserAPIKeyRequest struct {
	Name           string `json:"name"`
	OwnerEmail     string `json:"owner_email"`
	ExpirationDays *int   `json:"expiration_days"`
}

// Validate checks the name, the owner email and the optional lifetime.
func (r *IssueUserAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, customValidation.KeyName...),
		validation.Field(&r.OwnerEmail, validation.Required, customValidation.Email),
		validation.Field(&r.ExpirationDays, customValidation.ExpirationDays),
	)
}

// ToInput converts the request to the use case input.
func (r *IssueUserAPIKeyRequest) ToInput() *domain.CreateAPIKeyInput {
	return &domain.CreateAPIKeyInput{
		Name:           strings.TrimSpace(r.Name),
		ExpirationDays: r.ExpirationDays,
		OwnerEmail:     strings.ToLower(strings.TrimSpace(r.OwnerEmail)),
	}
}

// RenameAPIKeyRequest is the body of PATCH /v1/api-keys/:id.
type RenameAPIKeyRequest struct {
	Name string `json:"name"`
}

// Validate checks the new name.
func (r *RenameAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, customValidation.KeyName...),
	)
}
