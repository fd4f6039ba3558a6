package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/apikeys/internal/apikey/domain"
	"github.com/allisson/apikeys/internal/apikey/http/dto"
	apikeyUseCase "github.com/allisson/apikeys/internal/apikey/usecase"
	apperrors "github.com/allisson/apikeys/internal/errors"
	"github.com/allisson/apikeys/internal/httputil"
	customValidation "github.com/allisson/apikeys/internal/validation"
)

var errInvalidAPIKeyID = errors.New("invalid api key ID format: must be a valid UUID")

type createFunc func(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
	actor domain.Actor,
) (*domain.CredentialView, error)

type createRequest interface {
	Validate() error
	ToInput() *domain.CreateAPIKeyInput
}

type mutateFunc func(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.CredentialView, error)

// APIKeyHandler serves the API key lifecycle endpoints. Ownership and admin checks
// happen in the use case against the Actor set by AuthenticationMiddleware.
type APIKeyHandler struct {
	apiKeyUseCase apikeyUseCase.APIKeyUseCase
	logger        *slog.Logger
}

// NewAPIKeyHandler creates a new API key handler.
func NewAPIKeyHandler(apiKeyUseCase apikeyUseCase.APIKeyUseCase, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyUseCase: apiKeyUseCase,
		logger:        logger,
	}
}

// CreateHandler issues a USER key owned by the caller.
// POST /v1/api-keys - Returns 201 Created with the plaintext key.
func (h *APIKeyHandler) CreateHandler(c *gin.Context) {
	h.create(c, &dto.CreateAPIKeyRequest{}, h.apiKeyUseCase.CreateUserKey)
}

// IssueUserKeyHandler issues a USER key on behalf of owner_email.
// POST /v1/admin/user-api-keys - Admin only. Returns 201 Created with the plaintext key.
func (h *APIKeyHandler) IssueUserKeyHandler(c *gin.Context) {
	h.create(c, &dto.IssueUserAPIKeyRequest{}, h.apiKeyUseCase.CreateUserKey)
}

// CreateSystemKeyHandler issues a SYSTEM key.
// POST /v1/admin/api-keys - Admin only. Returns 201 Created with the plaintext key.
func (h *APIKeyHandler) CreateSystemKeyHandler(c *gin.Context) {
	h.create(c, &dto.CreateAPIKeyRequest{}, h.apiKeyUseCase.CreateSystemKey)
}

// ListHandler lists the caller's own USER keys.
// GET /v1/api-keys - Returns 200 OK.
func (h *APIKeyHandler) ListHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	views, err := h.apiKeyUseCase.ListForOwner(c.Request.Context(), actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAPIKeysToListResponse(views))
}

// ListAllHandler lists keys of every owner and scope.
// GET /v1/admin/api-keys?offset=0&limit=50 - Admin only. Returns 200 OK.
func (h *APIKeyHandler) ListAllHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	views, err := h.apiKeyUseCase.ListAll(c.Request.Context(), actor, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAPIKeysToListResponse(views))
}

// GetHandler returns one key.
// GET /v1/api-keys/:id - Returns 200 OK.
func (h *APIKeyHandler) GetHandler(c *gin.Context) {
	h.mutate(c, h.apiKeyUseCase.Get, http.StatusOK)
}

// RenameHandler changes the name of a key.
// PATCH /v1/api-keys/:id - Returns 200 OK with the renamed key.
func (h *APIKeyHandler) RenameHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.RenameAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	view, err := h.apiKeyUseCase.Rename(c.Request.Context(), id, req.Name, actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAPIKeyToResponse(view))
}

// RevokeHandler revokes a key permanently.
// DELETE /v1/api-keys/:id - Returns 200 OK with the revoked key.
func (h *APIKeyHandler) RevokeHandler(c *gin.Context) {
	h.mutate(c, h.apiKeyUseCase.Revoke, http.StatusOK)
}

// RotateHandler issues a successor and starts the predecessor's grace period.
// POST /v1/api-keys/:id/rotate - Returns 201 Created with the successor's plaintext key.
func (h *APIKeyHandler) RotateHandler(c *gin.Context) {
	h.mutate(c, h.apiKeyUseCase.Rotate, http.StatusCreated)
}

func (h *APIKeyHandler) create(c *gin.Context, req createRequest, fn createFunc) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	view, err := fn(c.Request.Context(), req.ToInput(), actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAPIKeyToResponse(view))
}

func (h *APIKeyHandler) mutate(c *gin.Context, fn mutateFunc, statusCode int) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	view, err := fn(c.Request.Context(), id, actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(statusCode, dto.MapAPIKeyToResponse(view))
}

func (h *APIKeyHandler) actor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
	}
	return actor, ok
}

func (h *APIKeyHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, errInvalidAPIKeyID, h.logger)
		return uuid.Nil, false
	}
	return id, true
}
