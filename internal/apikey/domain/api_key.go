package domain

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a stored credential. Secret material is kept only as SecretHash.
type APIKey struct {
	ID                uuid.UUID
	Name              string
	SecretHash        string //nolint:gosec // salted hash, never the plaintext
	SecretPrefix      string
	Scope             Scope
	OwnerEmail        *string // nil for SYSTEM keys
	CreatedByEmail    string
	CreatedAt         time.Time
	ExpiresAt         time.Time
	LastUsedAt        *time.Time
	RevokedAt         *time.Time
	RevokedByEmail    *string
	IsActive          bool
	RotatedFromID     *uuid.UUID
	GracePeriodEndsAt *time.Time
}

// Status derives the lifecycle status at now.
func (k *APIKey) Status(now time.Time) Status {
	return ResolveStatus(now, k.ExpiresAt, k.RevokedAt)
}

// IsRevoked reports whether the key was revoked.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// IsRotated reports whether the key already has a successor.
func (k *APIKey) IsRotated() bool {
	return k.GracePeriodEndsAt != nil
}

// CanAuthenticate reports whether the key may be used as a bearer credential at now.
// Rotated keys keep authenticating until the sweeper revokes them.
func (k *APIKey) CanAuthenticate(now time.Time) bool {
	return k.IsActive && k.Status(now).IsUsable()
}

// Owner returns the owner email or "" for SYSTEM keys.
func (k *APIKey) Owner() string {
	if k.OwnerEmail == nil {
		return ""
	}
	return *k.OwnerEmail
}

// Revoke marks the key revoked by actorEmail. The caller checks IsRevoked first.
func (k *APIKey) Revoke(now time.Time, actorEmail string) {
	k.RevokedAt = &now
	k.RevokedByEmail = &actorEmail
	k.IsActive = false
}

// Actor is the authenticated principal performing an operation. IsSystem marks
// non-human principals (the service itself and SYSTEM key bearers); they never own keys.
type Actor struct {
	Email    string
	IsAdmin  bool
	IsSystem bool
}

// SystemActor is used by the sweeper and by administrative CLI commands.
func SystemActor() Actor {
	return Actor{Email: SystemActorEmail, IsAdmin: true, IsSystem: true}
}

// CreateAPIKeyInput carries the caller-supplied fields of a new key.
// A nil ExpirationDays applies the configured default. OwnerEmail is only used
// when an admin issues a USER key on behalf of someone else.
type CreateAPIKeyInput struct {
	Name           string
	ExpirationDays *int
	OwnerEmail     string
}

// CredentialView is the read model returned to callers. PlainSecret is only
// set in the response to create and rotate.
type CredentialView struct {
	ID                uuid.UUID
	Name              string
	SecretPrefix      string
	Scope             Scope
	OwnerEmail        *string
	CreatedByEmail    string
	CreatedAt         time.Time
	ExpiresAt         time.Time
	LastUsedAt        *time.Time
	IsActive          bool
	Status            Status
	IsExpiringSoon    bool
	RevokedAt         *time.Time
	RevokedByEmail    *string
	RotatedFromID     *uuid.UUID
	GracePeriodEndsAt *time.Time
	PlainSecret       *string
}

// NewCredentialView projects key at now. plainSecret may be empty.
func NewCredentialView(key *APIKey, now time.Time, plainSecret string) *CredentialView {
	status := key.Status(now)
	view := &CredentialView{
		ID:                key.ID,
		Name:              key.Name,
		SecretPrefix:      key.SecretPrefix,
		Scope:             key.Scope,
		OwnerEmail:        key.OwnerEmail,
		CreatedByEmail:    key.CreatedByEmail,
		CreatedAt:         key.CreatedAt,
		ExpiresAt:         key.ExpiresAt,
		LastUsedAt:        key.LastUsedAt,
		IsActive:          key.IsActive && status != StatusExpired,
		Status:            status,
		IsExpiringSoon:    status == StatusExpiringSoon,
		RevokedAt:         key.RevokedAt,
		RevokedByEmail:    key.RevokedByEmail,
		RotatedFromID:     key.RotatedFromID,
		GracePeriodEndsAt: key.GracePeriodEndsAt,
	}
	if plainSecret != "" {
		view.PlainSecret = &plainSecret
	}
	return view
}
