package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/allisson/apikeys/internal/apikey/domain"
)

func newRateLimitedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-Key"); id != "" {
			key := &domain.APIKey{ID: uuid.MustParse(id)}
			c.Request = c.Request.WithContext(WithAPIKey(c.Request.Context(), key))
		}
		c.Next()
	})
	router.Use(RateLimitMiddleware(ctx, rps, burst, discardLogger()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return router
}

func doRateLimitedRequest(router *gin.Engine, keyID uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if keyID != uuid.Nil {
		req.Header.Set("X-Test-Key", keyID.String())
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("Success_WithinBurst", func(t *testing.T) {
		router := newRateLimitedRouter(t, 1, 3)
		id := uuid.Must(uuid.NewV7())

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusNoContent, doRateLimitedRequest(router, id).Code)
		}
	})

	t.Run("Error_BurstExceeded", func(t *testing.T) {
		router := newRateLimitedRouter(t, 0.5, 1)
		id := uuid.Must(uuid.NewV7())

		assert.Equal(t, http.StatusNoContent, doRateLimitedRequest(router, id).Code)
		w := doRateLimitedRequest(router, id)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "2", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	})

	t.Run("Success_IndependentPerKey", func(t *testing.T) {
		router := newRateLimitedRouter(t, 0.5, 1)

		assert.Equal(t, http.StatusNoContent, doRateLimitedRequest(router, uuid.Must(uuid.NewV7())).Code)
		assert.Equal(t, http.StatusNoContent, doRateLimitedRequest(router, uuid.Must(uuid.NewV7())).Code)
	})

	t.Run("Error_NoAPIKeyInContext", func(t *testing.T) {
		router := newRateLimitedRouter(t, 1, 1)

		assert.Equal(t, http.StatusUnauthorized, doRateLimitedRequest(router, uuid.Nil).Code)
	})
}

func TestRateLimiterStore_RemoveIdle(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	stale := uuid.Must(uuid.NewV7())
	fresh := uuid.Must(uuid.NewV7())

	store.getLimiter(stale)
	store.getLimiter(fresh)
	val, _ := store.limiters.Load(stale)
	val.(*rateLimiterEntry).lastAccess = time.Now().Add(-2 * time.Hour)

	store.removeIdle(time.Now().Add(-limiterIdleTimeout))

	_, staleFound := store.limiters.Load(stale)
	_, freshFound := store.limiters.Load(fresh)
	assert.False(t, staleFound)
	assert.True(t, freshFound)
}
