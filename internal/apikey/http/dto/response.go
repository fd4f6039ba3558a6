package dto

import (
	"time"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

// APIKeyResponse is the JSON form of a CredentialView. Key is present only in the
// responses to create and rotate.
type APIKeyResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Key               *string    `json:"key,omitempty"` //nolint:gosec // returned once on create and rotate
	KeyPrefix         string     `json:"key_prefix"`
	Scope             string     `json:"scope"`
	OwnerEmail        *string    `json:"owner_email"`
	CreatedByEmail    string     `json:"created_by_email"`
	CreatedAt         time.Time  `json:"created_at"`
	ExpiresAt         time.Time  `json:"expires_at"`
	LastUsedAt        *time.Time `json:"last_used_at"`
	IsActive          bool       `json:"is_active"`
	Status            string     `json:"status"`
	IsExpiringSoon    bool       `json:"is_expiring_soon"`
	RevokedAt         *time.Time `json:"revoked_at,omitempty"`
	RevokedByEmail    *string    `json:"revoked_by_email,omitempty"`
	RotatedFromID     *string    `json:"rotated_from_id,omitempty"`
	GracePeriodEndsAt *time.Time `json:"grace_period_ends_at,omitempty"`
}

// MapAPIKeyToResponse converts a credential view to an API response.
func MapAPIKeyToResponse(view *domain.CredentialView) APIKeyResponse {
	response := APIKeyResponse{
		ID:                view.ID.String(),
		Name:              view.Name,
		Key:               view.PlainSecret,
		KeyPrefix:         view.SecretPrefix,
		Scope:             string(view.Scope),
		OwnerEmail:        view.OwnerEmail,
		CreatedByEmail:    view.CreatedByEmail,
		CreatedAt:         view.CreatedAt,
		ExpiresAt:         view.ExpiresAt,
		LastUsedAt:        view.LastUsedAt,
		IsActive:          view.IsActive,
		Status:            string(view.Status),
		IsExpiringSoon:    view.IsExpiringSoon,
		RevokedAt:         view.RevokedAt,
		RevokedByEmail:    view.RevokedByEmail,
		GracePeriodEndsAt: view.GracePeriodEndsAt,
	}
	if view.RotatedFromID != nil {
		rotatedFrom := view.RotatedFromID.String()
		response.RotatedFromID = &rotatedFrom
	}
	return response
}

// ListAPIKeysResponse wraps a list of keys.
type ListAPIKeysResponse struct {
	Data []APIKeyResponse `json:"data"`
}

// MapAPIKeysToListResponse converts credential views to a list response.
func MapAPIKeysToListResponse(views []*domain.CredentialView) ListAPIKeysResponse {
	data := make([]APIKeyResponse, 0, len(views))
	for _, view := range views {
		data = append(data, MapAPIKeyToResponse(view))
	}
	return ListAPIKeysResponse{Data: data}
}

// AuditEventResponse represents an audit event in API responses.
type AuditEventResponse struct {
	ID         string         `json:"id"`
	APIKeyID   string         `json:"api_key_id"`
	Action     string         `json:"action"`
	ActorEmail string         `json:"actor_email"`
	OwnerEmail *string        `json:"owner_email"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ListAuditEventsResponse wraps a list of audit events.
type ListAuditEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}

// MapAuditEventsToListResponse converts audit events to a list response.
func MapAuditEventsToListResponse(events []*domain.AuditEvent) ListAuditEventsResponse {
	data := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		details := event.Details
		if details == nil {
			details = map[string]any{}
		}
		data = append(data, AuditEventResponse{
			ID:         event.ID.String(),
			APIKeyID:   event.APIKeyID.String(),
			Action:     string(event.Action),
			ActorEmail: event.ActorEmail,
			OwnerEmail: event.OwnerEmail,
			Details:    details,
			CreatedAt:  event.CreatedAt,
		})
	}
	return ListAuditEventsResponse{Data: data}
}
