// Package domain defines the API key credential model and its lifecycle rules.
//
// A credential is either owned by a user (USER scope) or by the platform (SYSTEM scope).
// Plaintext secrets exist only in memory between generation and the response that
// returns them once; the model stores a salted hash and a display-safe prefix.
package domain

import "time"

// Scope separates user-owned credentials from platform credentials.
type Scope string

const (
	// ScopeUser keys belong to a single owner email.
	ScopeUser Scope = "USER"

	// ScopeSystem keys belong to the platform and have no owner.
	ScopeSystem Scope = "SYSTEM"
)

// Status is the lifecycle status derived from stored timestamps.
type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusExpiringSoon Status = "EXPIRING_SOON"
	StatusExpired      Status = "EXPIRED"
	StatusRevoked      Status = "REVOKED"
)

// Operation is an action an actor attempts on an existing credential.
type Operation string

const (
	OperationView   Operation = "view"
	OperationRename Operation = "rename"
	OperationRevoke Operation = "revoke"
	OperationRotate Operation = "rotate"
)

// AuditAction names a lifecycle event written to the audit store.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionRotate AuditAction = "ROTATE"
	AuditActionRevoke AuditAction = "REVOKE"
	AuditActionExpire AuditAction = "EXPIRE"
	AuditActionRename AuditAction = "RENAME"
)

const (
	// ExpiringSoonWindow is how far ahead of expiry a key reports EXPIRING_SOON.
	ExpiringSoonWindow = 7 * 24 * time.Hour

	// SecretPrefixLength is the number of plaintext characters kept for display and lookup.
	SecretPrefixLength = 20

	// MaxNameLength bounds key names in runes.
	MaxNameLength = 100

	// MinExpirationDays and MaxExpirationDays bound the requested lifetime.
	MinExpirationDays = 1
	MaxExpirationDays = 365

	// SystemActorEmail identifies changes made by the service itself (sweeper, CLI).
	SystemActorEmail = "system"

	// RevokeReasonGracePeriodElapsed is recorded when the sweeper revokes a rotated key.
	RevokeReasonGracePeriodElapsed = "rotation_grace_period_elapsed"

	// ExpireReasonAutomatic is recorded when the sweeper deactivates an expired key.
	ExpireReasonAutomatic = "Automatic expiration"
)
