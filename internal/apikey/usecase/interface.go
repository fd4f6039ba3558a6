// Package usecase orchestrates the API key lifecycle: creation, rotation, revocation,
// authentication, auditing and the periodic expiration sweep.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

// APIKeyRepository persists API keys. Implementations honour the transaction
// carried in ctx.
type APIKeyRepository interface {
	// Create stores a new key. A second successor for the same predecessor fails
	// with ErrAPIKeyAlreadyRotated.
	Create(ctx context.Context, key *domain.APIKey) error

	// Get returns ErrAPIKeyNotFound if no key has id.
	Get(ctx context.Context, id uuid.UUID) (*domain.APIKey, error)

	// GetForUpdate is Get with a row lock held until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.APIKey, error)

	// Update writes the mutable fields of an unrevoked key. It returns
	// ErrAPIKeyConcurrentUpdate when the stored row is already revoked.
	Update(ctx context.Context, key *domain.APIKey) error

	// UpdateLastUsed records a successful authentication.
	UpdateLastUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error

	// ListByOwner returns the owner's USER keys, newest first.
	ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.APIKey, error)

	// ListByScope returns every key of scope, newest first.
	ListByScope(ctx context.Context, scope domain.Scope) ([]*domain.APIKey, error)

	// ListAll returns keys of every scope, newest first.
	ListAll(ctx context.Context, offset, limit int) ([]*domain.APIKey, error)

	// ListByPrefix returns the keys whose stored secret prefix equals prefix.
	ListByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error)

	// ListExpired returns up to limit active, unrevoked keys with expires_at <= now and
	// an id greater than afterID, ordered by id.
	ListExpired(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]*domain.APIKey, error)

	// ListGracePeriodElapsed returns up to limit unrevoked keys whose grace period ended at
	// or before now and whose id is greater than afterID, ordered by id.
	ListGracePeriodElapsed(
		ctx context.Context,
		now time.Time,
		afterID uuid.UUID,
		limit int,
	) ([]*domain.APIKey, error)
}

// AuditEventRepository persists lifecycle audit events.
type AuditEventRepository interface {
	Create(ctx context.Context, event *domain.AuditEvent) error

	// List returns matching events, newest first.
	List(ctx context.Context, filter domain.AuditEventFilter) ([]*domain.AuditEvent, error)
}

// AuditRecorder emits lifecycle events. Called inside the mutation's transaction so
// the event commits or rolls back with the change it describes.
type AuditRecorder interface {
	Record(
		ctx context.Context,
		key *domain.APIKey,
		action domain.AuditAction,
		actorEmail string,
		details map[string]any,
	) error
}

// APIKeyUseCase is the credential lifecycle manager.
type APIKeyUseCase interface {
	// CreateUserKey issues a USER key owned by actor, or by input.OwnerEmail when an
	// admin issues it on someone's behalf. The returned view carries the plaintext
	// secret; it is never retrievable again.
	CreateUserKey(
		ctx context.Context,
		input *domain.CreateAPIKeyInput,
		actor domain.Actor,
	) (*domain.CredentialView, error)

	// CreateSystemKey issues a SYSTEM key. Admin only.
	CreateSystemKey(
		ctx context.Context,
		input *domain.CreateAPIKeyInput,
		actor domain.Actor,
	) (*domain.CredentialView, error)

	// Rename changes the name of a key the actor may manage.
	Rename(ctx context.Context, id uuid.UUID, newName string, actor domain.Actor) (*domain.CredentialView, error)

	// Revoke is terminal. Revoking twice returns ErrAPIKeyAlreadyRevoked.
	Revoke(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.CredentialView, error)

	// Rotate issues a successor with the same name, scope, owner and lifetime, and
	// starts the predecessor's grace period. The successor's plaintext is returned once.
	Rotate(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.CredentialView, error)

	// Get returns one key the actor may view.
	Get(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.CredentialView, error)

	// ListForOwner returns the actor's own USER keys, newest first.
	ListForOwner(ctx context.Context, actor domain.Actor) ([]*domain.CredentialView, error)

	// ListAll returns keys of every owner and scope. Admin only.
	ListAll(ctx context.Context, actor domain.Actor, offset, limit int) ([]*domain.CredentialView, error)

	// ListAuditEvents queries the audit trail. Admin only.
	ListAuditEvents(
		ctx context.Context,
		filter domain.AuditEventFilter,
		actor domain.Actor,
	) ([]*domain.AuditEvent, error)

	// Authenticate resolves a bearer secret to its key and records the use.
	// Every rejection wraps ErrUnauthorized.
	Authenticate(ctx context.Context, plaintext string) (*domain.APIKey, error)
}

// SweeperUseCase runs the periodic expiration passes.
type SweeperUseCase interface {
	// SweepExpired deactivates expired keys and returns how many were processed.
	SweepExpired(ctx context.Context) (int, error)

	// SweepGracePeriod revokes rotated keys whose grace period elapsed.
	SweepGracePeriod(ctx context.Context) (int, error)
}
