// Package http exposes the API key lifecycle over gin: bearer authentication,
// per-key rate limiting and the key and audit event handlers.
package http

import (
	"context"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

type actorKey struct{}

type apiKeyKey struct{}

// WithActor stores the authenticated actor in the context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns the actor stored by AuthenticationMiddleware.
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// WithAPIKey stores the key that authenticated the request.
func WithAPIKey(ctx context.Context, key *domain.APIKey) context.Context {
	return context.WithValue(ctx, apiKeyKey{}, key)
}

// GetAPIKey returns the key stored by AuthenticationMiddleware.
func GetAPIKey(ctx context.Context) (*domain.APIKey, bool) {
	key, ok := ctx.Value(apiKeyKey{}).(*domain.APIKey)
	return key, ok
}
