package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

var (
	testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	alice   = domain.Actor{Email: "alice@example.com"}
	admin   = domain.Actor{Email: "admin@example.com", IsAdmin: true}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

// createTestContext builds a gin context for method and path carrying body as JSON
// and actor as the authenticated principal. A nil actor leaves the request anonymous.
func createTestContext(
	t *testing.T,
	method, path string,
	body any,
	actor *domain.Actor,
) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if actor != nil {
		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), *actor))
	}
	return c, w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func newView(name string, plainSecret string) *domain.CredentialView {
	owner := alice.Email
	key := &domain.APIKey{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           name,
		SecretPrefix:   "idp_user_AbCdEfGhIj",
		Scope:          domain.ScopeUser,
		OwnerEmail:     &owner,
		CreatedByEmail: owner,
		CreatedAt:      testNow,
		ExpiresAt:      testNow.AddDate(0, 0, 90),
		IsActive:       true,
	}
	return domain.NewCredentialView(key, testNow, plainSecret)
}
