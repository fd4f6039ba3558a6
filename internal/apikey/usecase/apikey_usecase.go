package usecase

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/allisson/apikeys/internal/apikey/domain"
	"github.com/allisson/apikeys/internal/apikey/service"
	"github.com/allisson/apikeys/internal/database"
)

// Config holds the lifecycle limits applied by the use case.
type Config struct {
	DefaultExpirationDays int
	MaxKeysPerUser        int
	RotationGracePeriod   time.Duration
}

const defaultAuditEventLimit = 50

// apiKeyUseCase implements APIKeyUseCase on top of the repositories and secret services.
type apiKeyUseCase struct {
	config         Config
	txManager      database.TxManager
	apiKeyRepo     APIKeyRepository
	auditEventRepo AuditEventRepository
	auditRecorder  AuditRecorder
	generator      service.SecretGenerator
	hasher         service.SecretHasher
	logger         *slog.Logger
	now            func() time.Time
}

// CreateUserKey issues a USER key. Without input.OwnerEmail the key belongs to the
// actor, which must be a person. With it, the key is issued on the owner's behalf and
// the actor must be an admin. Returns the key metadata plus the one-time plaintext.
func (u *apiKeyUseCase) CreateUserKey(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	owner := normalizeEmail(input.OwnerEmail)
	switch {
	case owner != "":
		if !domain.CanIssueFor(actor, owner) {
			return nil, domain.ErrAdminRequired
		}
	case domain.CanCreate(actor, domain.ScopeUser):
		owner = normalizeEmail(actor.Email)
	default:
		return nil, domain.ErrOwnerEmailRequired
	}
	return u.create(ctx, domain.ScopeUser, owner, input, actor)
}

// CreateSystemKey issues a SYSTEM key. Only admins may call it.
func (u *apiKeyUseCase) CreateSystemKey(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	if !domain.CanCreate(actor, domain.ScopeSystem) {
		return nil, domain.ErrAdminRequired
	}
	return u.create(ctx, domain.ScopeSystem, "", input, actor)
}

// create validates the input, enforces the name and per-user limits against the
// owner's live keys and persists the key with its CREATE audit event.
func (u *apiKeyUseCase) create(
	ctx context.Context,
	scope domain.Scope,
	ownerEmail string,
	input *domain.CreateAPIKeyInput,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}

	days := u.config.DefaultExpirationDays
	if input.ExpirationDays != nil {
		days = *input.ExpirationDays
	}
	if days < domain.MinExpirationDays || days > domain.MaxExpirationDays {
		return nil, domain.ErrInvalidExpirationDays
	}

	var owner *string
	if scope == domain.ScopeUser {
		owner = &ownerEmail
	}

	// Hashing is slow on purpose; keep it outside the transaction.
	plaintext, hash, err := u.issueSecret(scope)
	if err != nil {
		return nil, err
	}

	now := u.now()
	key := &domain.APIKey{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           name,
		SecretHash:     hash,
		SecretPrefix:   u.generator.Prefix(plaintext),
		Scope:          scope,
		OwnerEmail:     owner,
		CreatedByEmail: actor.Email,
		CreatedAt:      now,
		ExpiresAt:      now.AddDate(0, 0, days),
		IsActive:       true,
	}

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		// Check limits against the keys sharing the namespace
		if err := u.checkNewLiveKey(ctx, key, uuid.Nil, now); err != nil {
			return err
		}

		// Persist the key and its audit event together
		if err := u.apiKeyRepo.Create(ctx, key); err != nil {
			return err
		}

		return u.auditRecorder.Record(ctx, key, domain.AuditActionCreate, actor.Email, map[string]any{
			"keyName":        key.Name,
			"keyType":        string(key.Scope),
			"expirationDays": days,
		})
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("api key created",
		slog.String("api_key_id", key.ID.String()),
		slog.String("secret_prefix", key.SecretPrefix),
		slog.String("scope", string(key.Scope)),
		slog.String("actor", actor.Email),
	)

	return domain.NewCredentialView(key, now, plaintext), nil
}

// Rename changes a key's name. The new name must be free among the owner's live keys.
// Renaming to the current name is a no-op without an audit event.
func (u *apiKeyUseCase) Rename(
	ctx context.Context,
	id uuid.UUID,
	newName string,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	name, err := normalizeName(newName)
	if err != nil {
		return nil, err
	}

	now := u.now()
	var key *domain.APIKey

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		// Lock the key and check the actor's rights
		key, err = u.apiKeyRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.Authorize(actor, key, domain.OperationRename); err != nil {
			return err
		}
		if key.IsRevoked() {
			return domain.ErrAPIKeyRevoked
		}
		if key.Name == name {
			return nil
		}

		siblings, err := u.siblings(ctx, key)
		if err != nil {
			return err
		}
		if nameTaken(siblings, name, key.ID, now) {
			return domain.ErrDuplicateAPIKeyName
		}

		oldName := key.Name
		key.Name = name
		if err := u.apiKeyRepo.Update(ctx, key); err != nil {
			return err
		}

		return u.auditRecorder.Record(ctx, key, domain.AuditActionRename, actor.Email, map[string]any{
			"oldName": oldName,
			"newName": name,
		})
	})
	if err != nil {
		return nil, err
	}

	return domain.NewCredentialView(key, now, ""), nil
}

// Revoke permanently disables a key. Revoking a revoked key returns ErrAPIKeyAlreadyRevoked.
func (u *apiKeyUseCase) Revoke(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	now := u.now()
	var key *domain.APIKey

	err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		key, err = u.apiKeyRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.Authorize(actor, key, domain.OperationRevoke); err != nil {
			return err
		}
		if key.IsRevoked() {
			return domain.ErrAPIKeyAlreadyRevoked
		}

		// Update is guarded on revoked_at, so a concurrent revoke surfaces as a conflict
		key.Revoke(now, actor.Email)
		if err := u.apiKeyRepo.Update(ctx, key); err != nil {
			return err
		}

		return u.auditRecorder.Record(ctx, key, domain.AuditActionRevoke, actor.Email, map[string]any{
			"keyName": key.Name,
			"keyType": string(key.Scope),
		})
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("api key revoked",
		slog.String("api_key_id", key.ID.String()),
		slog.String("secret_prefix", key.SecretPrefix),
		slog.String("actor", actor.Email),
	)

	return domain.NewCredentialView(key, now, ""), nil
}

// Rotate replaces a key with a successor that keeps its name, scope, owner and
// lifetime. The predecessor keeps authenticating until its grace period ends and the
// sweeper revokes it. Returns the successor plus its one-time plaintext.
func (u *apiKeyUseCase) Rotate(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	// Authorize and hash before opening the transaction
	current, err := u.apiKeyRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(actor, current, domain.OperationRotate); err != nil {
		return nil, err
	}

	plaintext, hash, err := u.issueSecret(current.Scope)
	if err != nil {
		return nil, err
	}

	now := u.now()
	var successor *domain.APIKey

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		old, err := u.apiKeyRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if old.IsRevoked() {
			return domain.ErrAPIKeyRevoked
		}
		if old.IsRotated() {
			return domain.ErrAPIKeyAlreadyRotated
		}

		lifetime := old.ExpiresAt.Sub(old.CreatedAt)
		successor = &domain.APIKey{
			ID:             uuid.Must(uuid.NewV7()),
			Name:           old.Name,
			SecretHash:     hash,
			SecretPrefix:   u.generator.Prefix(plaintext),
			Scope:          old.Scope,
			OwnerEmail:     old.OwnerEmail,
			CreatedByEmail: actor.Email,
			CreatedAt:      now,
			ExpiresAt:      now.Add(lifetime),
			IsActive:       true,
			RotatedFromID:  &old.ID,
		}

		// A live predecessor hands its slot and name over to the successor. An expired
		// one no longer holds either, so the successor counts as a new key.
		if !isLive(old, now) {
			if err := u.checkNewLiveKey(ctx, successor, old.ID, now); err != nil {
				return err
			}
		}

		if err := u.apiKeyRepo.Create(ctx, successor); err != nil {
			return err
		}

		// Start the predecessor's grace period
		graceEnds := now.Add(u.config.RotationGracePeriod)
		old.GracePeriodEndsAt = &graceEnds
		if err := u.apiKeyRepo.Update(ctx, old); err != nil {
			return err
		}

		err = u.auditRecorder.Record(ctx, successor, domain.AuditActionCreate, actor.Email, map[string]any{
			"keyName":        successor.Name,
			"keyType":        string(successor.Scope),
			"expirationDays": int(math.Round(lifetime.Hours() / 24)),
			"rotatedFrom":    old.ID.String(),
		})
		if err != nil {
			return err
		}

		return u.auditRecorder.Record(ctx, old, domain.AuditActionRotate, actor.Email, map[string]any{
			"newKeyId":          successor.ID.String(),
			"gracePeriodHours":  u.config.RotationGracePeriod.Hours(),
			"oldKeyRevokeAfter": graceEnds.Format(time.RFC3339),
		})
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("api key rotated",
		slog.String("api_key_id", id.String()),
		slog.String("new_api_key_id", successor.ID.String()),
		slog.String("secret_prefix", successor.SecretPrefix),
		slog.String("actor", actor.Email),
	)

	return domain.NewCredentialView(successor, now, plaintext), nil
}

// Get returns one key if the actor may view it.
func (u *apiKeyUseCase) Get(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
) (*domain.CredentialView, error) {
	key, err := u.apiKeyRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(actor, key, domain.OperationView); err != nil {
		return nil, err
	}
	return domain.NewCredentialView(key, u.now(), ""), nil
}

// ListForOwner returns the actor's USER keys, newest first.
func (u *apiKeyUseCase) ListForOwner(ctx context.Context, actor domain.Actor) ([]*domain.CredentialView, error) {
	if actor.Email == "" {
		return nil, domain.ErrOwnerEmailRequired
	}
	keys, err := u.apiKeyRepo.ListByOwner(ctx, normalizeEmail(actor.Email))
	if err != nil {
		return nil, err
	}
	return u.views(keys), nil
}

// ListAll returns a page of keys across every owner and scope. Admin only.
func (u *apiKeyUseCase) ListAll(
	ctx context.Context,
	actor domain.Actor,
	offset, limit int,
) ([]*domain.CredentialView, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrAdminRequired
	}
	keys, err := u.apiKeyRepo.ListAll(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return u.views(keys), nil
}

// ListAuditEvents queries the audit trail. Admin only. A zero limit applies the default
// page size and the owner filter is matched case-insensitively.
func (u *apiKeyUseCase) ListAuditEvents(
	ctx context.Context,
	filter domain.AuditEventFilter,
	actor domain.Actor,
) ([]*domain.AuditEvent, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrAdminRequired
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditEventLimit
	}
	if filter.OwnerEmail != nil {
		email := normalizeEmail(*filter.OwnerEmail)
		filter.OwnerEmail = &email
	}
	return u.auditEventRepo.List(ctx, filter)
}

// Authenticate resolves a bearer secret to its key. Malformed, unknown and mismatching
// secrets all return ErrInvalidCredentials; revoked, expired and deactivated keys return
// ErrAPIKeyInactive. Keys in their rotation grace period still authenticate.
func (u *apiKeyUseCase) Authenticate(ctx context.Context, plaintext string) (*domain.APIKey, error) {
	// Reject malformed secrets before touching the database
	if !u.generator.ValidateFormat(plaintext) {
		return nil, domain.ErrInvalidCredentials
	}

	candidates, err := u.apiKeyRepo.ListByPrefix(ctx, u.generator.Prefix(plaintext))
	if err != nil {
		return nil, err
	}

	// Prefixes may collide, so verify against every candidate
	var key *domain.APIKey
	for _, candidate := range candidates {
		if u.hasher.Verify(plaintext, candidate.SecretHash) {
			key = candidate
			break
		}
	}
	if key == nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := u.now()
	if !key.CanAuthenticate(now) {
		u.logger.Warn("rejected inactive api key",
			slog.String("api_key_id", key.ID.String()),
			slog.String("secret_prefix", key.SecretPrefix),
			slog.String("status", string(key.Status(now))),
		)
		return nil, domain.ErrAPIKeyInactive
	}

	// Losing a last-used timestamp must not fail the request it belongs to.
	if err := u.apiKeyRepo.UpdateLastUsed(ctx, key.ID, now); err != nil {
		u.logger.Warn("failed to update api key last used",
			slog.String("api_key_id", key.ID.String()),
			slog.Any("error", err),
		)
	} else {
		key.LastUsedAt = &now
	}

	return key, nil
}

// issueSecret returns a fresh plaintext and its hash.
func (u *apiKeyUseCase) issueSecret(scope domain.Scope) (string, string, error) {
	plaintext, err := u.generator.Generate(scope)
	if err != nil {
		return "", "", err
	}
	hash, err := u.hasher.Hash(plaintext)
	if err != nil {
		return "", "", err
	}
	return plaintext, hash, nil
}

// checkNewLiveKey rejects key when its owner already holds the maximum number of live
// keys or a live key named like it. exclude is ignored by the name check.
func (u *apiKeyUseCase) checkNewLiveKey(
	ctx context.Context,
	key *domain.APIKey,
	exclude uuid.UUID,
	now time.Time,
) error {
	siblings, err := u.siblings(ctx, key)
	if err != nil {
		return err
	}

	if key.Scope == domain.ScopeUser && u.config.MaxKeysPerUser > 0 &&
		countActive(siblings, now) >= u.config.MaxKeysPerUser {
		return domain.ErrMaxAPIKeysReached
	}
	if nameTaken(siblings, key.Name, exclude, now) {
		return domain.ErrDuplicateAPIKeyName
	}
	return nil
}

// siblings returns the keys that share key's namespace: the owner's USER keys,
// or every SYSTEM key.
func (u *apiKeyUseCase) siblings(ctx context.Context, key *domain.APIKey) ([]*domain.APIKey, error) {
	if key.Scope == domain.ScopeSystem {
		return u.apiKeyRepo.ListByScope(ctx, domain.ScopeSystem)
	}
	return u.apiKeyRepo.ListByOwner(ctx, key.Owner())
}

func (u *apiKeyUseCase) views(keys []*domain.APIKey) []*domain.CredentialView {
	now := u.now()
	views := make([]*domain.CredentialView, 0, len(keys))
	for _, key := range keys {
		views = append(views, domain.NewCredentialView(key, now, ""))
	}
	return views
}

// isLive reports whether key still counts toward limits and name uniqueness.
func isLive(key *domain.APIKey, now time.Time) bool {
	return key.IsActive && key.Status(now).IsUsable()
}

func countActive(keys []*domain.APIKey, now time.Time) int {
	count := 0
	for _, key := range keys {
		if isLive(key, now) {
			count++
		}
	}
	return count
}

// nameTaken ignores exclude and keys already superseded by a rotation.
func nameTaken(keys []*domain.APIKey, name string, exclude uuid.UUID, now time.Time) bool {
	for _, key := range keys {
		if key.ID == exclude || key.IsRotated() || !isLive(key, now) {
			continue
		}
		if strings.EqualFold(key.Name, name) {
			return true
		}
	}
	return false
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > domain.MaxNameLength {
		return "", domain.ErrInvalidAPIKeyName
	}
	return name, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAPIKeyUseCase creates the lifecycle manager.
func NewAPIKeyUseCase(
	config Config,
	txManager database.TxManager,
	apiKeyRepo APIKeyRepository,
	auditEventRepo AuditEventRepository,
	auditRecorder AuditRecorder,
	generator service.SecretGenerator,
	hasher service.SecretHasher,
	logger *slog.Logger,
) APIKeyUseCase {
	return &apiKeyUseCase{
		config:         config,
		txManager:      txManager,
		apiKeyRepo:     apiKeyRepo,
		auditEventRepo: auditEventRepo,
		auditRecorder:  auditRecorder,
		generator:      generator,
		hasher:         hasher,
		logger:         logger,
		now:            utcNow,
	}
}
