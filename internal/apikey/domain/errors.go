package domain

import (
	"github.com/allisson/apikeys/internal/errors"
)

// API key lifecycle errors.
var (
	// ErrAPIKeyNotFound indicates no key exists with the requested id.
	ErrAPIKeyNotFound = errors.Wrap(errors.ErrNotFound, "api key not found")

	// ErrAPIKeyAlreadyRevoked is returned when revoking a key twice.
	ErrAPIKeyAlreadyRevoked = errors.Wrap(errors.ErrConflict, "api key already revoked")

	// ErrAPIKeyAlreadyRotated is returned when a key already has a successor.
	ErrAPIKeyAlreadyRotated = errors.Wrap(errors.ErrConflict, "api key already rotated")

	// ErrAPIKeyConcurrentUpdate means the guarded update matched no row.
	ErrAPIKeyConcurrentUpdate = errors.Wrap(errors.ErrConflict, "api key was modified concurrently")

	// ErrAPIKeyRevoked is returned when mutating a revoked key.
	ErrAPIKeyRevoked = errors.Wrap(errors.ErrInvalidInput, "api key is revoked")

	// ErrDuplicateAPIKeyName is returned when an active key with the same name already exists.
	ErrDuplicateAPIKeyName = errors.Wrap(errors.ErrInvalidInput, "an active api key with this name already exists")

	// ErrMaxAPIKeysReached is returned when the owner already holds the maximum number of active keys.
	ErrMaxAPIKeysReached = errors.Wrap(errors.ErrInvalidInput, "maximum number of active api keys reached")

	// ErrInvalidAPIKeyName is returned for blank or over-long names.
	ErrInvalidAPIKeyName = errors.Wrap(errors.ErrInvalidInput, "api key name must be 1 to 100 characters and not blank")

	// ErrInvalidExpirationDays is returned when the lifetime falls outside 1 to 365 days.
	ErrInvalidExpirationDays = errors.Wrap(errors.ErrInvalidInput, "expiration days must be between 1 and 365")

	// ErrOwnerEmailRequired is returned when a USER key is created without an owner.
	ErrOwnerEmailRequired = errors.Wrap(errors.ErrInvalidInput, "owner email is required for user api keys")

	// ErrForbidden is returned when the actor may not act on the key.
	ErrForbidden = errors.Wrap(errors.ErrForbidden, "not allowed to manage this api key")

	// ErrAdminRequired is returned for admin-only operations.
	ErrAdminRequired = errors.Wrap(errors.ErrForbidden, "admin privileges required")

	// ErrInvalidCredentials covers malformed, unknown and mismatching secrets alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid api key")

	// ErrAPIKeyInactive is returned when authenticating with a revoked, expired or deactivated key.
	ErrAPIKeyInactive = errors.Wrap(errors.ErrUnauthorized, "api key is not active")
)
