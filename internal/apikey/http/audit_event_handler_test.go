package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/apikeys/internal/apikey/domain"
	"github.com/allisson/apikeys/internal/apikey/http/dto"
	"github.com/allisson/apikeys/internal/apikey/usecase/mocks"
)

func TestAuditEventHandler_ListHandler(t *testing.T) {
	t.Run("Success_Filters", func(t *testing.T) {
		useCase := &mocks.MockAPIKeyUseCase{}
		handler := NewAuditEventHandler(useCase, discardLogger())
		start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		event := &domain.AuditEvent{
			ID:         uuid.Must(uuid.NewV7()),
			APIKeyID:   uuid.Must(uuid.NewV7()),
			Action:     domain.AuditActionRevoke,
			ActorEmail: "admin@example.com",
			OwnerEmail: strPtr("alice@example.com"),
			Details:    map[string]any{"keyName": "ci"},
			CreatedAt:  testNow,
		}
		useCase.On("ListAuditEvents", mock.Anything, domain.AuditEventFilter{
			OwnerEmail: strPtr("alice@example.com"),
			StartTime:  &start,
			EndTime:    &end,
			Offset:     0,
			Limit:      50,
		}, admin).Return([]*domain.AuditEvent{event}, nil).Once()

		c, w := createTestContext(t, http.MethodGet,
			"/v1/admin/api-key-audit-events?owner_email=Alice@Example.com"+
				"&start_time=2026-02-01T00:00:00Z&end_time=2026-03-01T00:00:00Z",
			nil, &admin)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[dto.ListAuditEventsResponse](t, w)
		if assert.Len(t, response.Data, 1) {
			assert.Equal(t, "REVOKE", response.Data[0].Action)
			assert.Equal(t, "ci", response.Data[0].Details["keyName"])
		}
		useCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidTimeRange", func(t *testing.T) {
		useCase := &mocks.MockAPIKeyUseCase{}
		handler := NewAuditEventHandler(useCase, discardLogger())

		c, w := createTestContext(t, http.MethodGet,
			"/v1/admin/api-key-audit-events?start_time=2026-03-01T00:00:00Z&end_time=2026-02-01T00:00:00Z",
			nil, &admin)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_NotAdmin", func(t *testing.T) {
		useCase := &mocks.MockAPIKeyUseCase{}
		handler := NewAuditEventHandler(useCase, discardLogger())
		useCase.On("ListAuditEvents", mock.Anything, mock.Anything, alice).
			Return(nil, domain.ErrAdminRequired).Once()

		c, w := createTestContext(t, http.MethodGet, "/v1/admin/api-key-audit-events", nil, &alice)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
