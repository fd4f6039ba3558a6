package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/apikeys/internal/apikey/domain"
	"github.com/allisson/apikeys/internal/apikey/http/dto"
	apikeyUseCase "github.com/allisson/apikeys/internal/apikey/usecase"
	apperrors "github.com/allisson/apikeys/internal/errors"
	"github.com/allisson/apikeys/internal/httputil"
)

// AuditEventHandler serves the audit trail of key lifecycle events.
type AuditEventHandler struct {
	apiKeyUseCase apikeyUseCase.APIKeyUseCase
	logger        *slog.Logger
}

// NewAuditEventHandler creates a new audit event handler.
func NewAuditEventHandler(apiKeyUseCase apikeyUseCase.APIKeyUseCase, logger *slog.Logger) *AuditEventHandler {
	return &AuditEventHandler{
		apiKeyUseCase: apiKeyUseCase,
		logger:        logger,
	}
}

// ListHandler lists audit events newest first.
// GET /v1/admin/api-key-audit-events?owner_email=&start_time=&end_time=&offset=&limit= - Admin only.
// Times are RFC3339.
func (h *AuditEventHandler) ListHandler(c *gin.Context) {
	actor, ok := GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	start, end, err := httputil.ParseTimeRange(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := domain.AuditEventFilter{
		StartTime: start,
		EndTime:   end,
		Offset:    offset,
		Limit:     limit,
	}
	if owner := strings.ToLower(strings.TrimSpace(c.Query("owner_email"))); owner != "" {
		filter.OwnerEmail = &owner
	}

	events, err := h.apiKeyUseCase.ListAuditEvents(c.Request.Context(), filter, actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEventsToListResponse(events))
}
