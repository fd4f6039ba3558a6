package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/apikeys/internal/apikey/domain"
	apikeyUseCase "github.com/allisson/apikeys/internal/apikey/usecase"
	apperrors "github.com/allisson/apikeys/internal/errors"
	"github.com/allisson/apikeys/internal/httputil"
)

const systemActorPrefix = "system-"

// AuthenticationMiddleware authenticates "Authorization: Bearer <api key>" and stores
// the resulting Actor and APIKey in the request context.
//
// SYSTEM keys act as the admin principal "system-<id>". USER keys act as their owner,
// with admin rights when the owner is listed in adminEmails.
//
// Missing or malformed headers and every rejected key produce 401.
func AuthenticationMiddleware(
	apiKeyUseCase apikeyUseCase.APIKeyUseCase,
	adminEmails []string,
	logger *slog.Logger,
) gin.HandlerFunc {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(email)] = struct{}{}
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		plainKey := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainKey == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		key, err := apiKeyUseCase.Authenticate(c.Request.Context(), plainKey)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			return
		}

		actor := actorFor(key, admins)
		ctx := WithActor(c.Request.Context(), actor)
		ctx = WithAPIKey(ctx, key)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("api_key_id", key.ID.String()),
			slog.String("actor", actor.Email),
			slog.Bool("is_admin", actor.IsAdmin))

		c.Next()
	}
}

func actorFor(key *domain.APIKey, admins map[string]struct{}) domain.Actor {
	if key.Scope == domain.ScopeSystem {
		return domain.Actor{Email: systemActorPrefix + key.ID.String(), IsAdmin: true, IsSystem: true}
	}
	email := strings.ToLower(key.Owner())
	_, isAdmin := admins[email]
	return domain.Actor{Email: email, IsAdmin: isAdmin}
}
