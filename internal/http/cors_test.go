package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCORSRouter(t *testing.T, middleware gin.HandlerFunc) *gin.Engine {
	t.Helper()

	router := gin.New()
	if middleware != nil {
		router.Use(middleware)
	}
	router.GET("/v1/api-keys", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})
	router.POST("/v1/api-keys", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})
	return router
}

func TestCreateCORSMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		origins string
		wantNil bool
	}{
		{name: "disabled", enabled: false, origins: "https://example.com", wantNil: true},
		{name: "enabled without origins", enabled: true, origins: "", wantNil: true},
		{name: "enabled with only invalid origins", enabled: true, origins: "example.com, ftp://x", wantNil: true},
		{name: "enabled with origins", enabled: true, origins: "https://app.example.com,https://admin.example.com"},
		{name: "enabled with wildcard", enabled: true, origins: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := createCORSMiddleware(tt.enabled, tt.origins, discardLogger())
			if tt.wantNil {
				assert.Nil(t, middleware)
			} else {
				assert.NotNil(t, middleware)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	t.Run("TrimsAndDropsInvalid", func(t *testing.T) {
		origins, allowAll := parseOrigins(
			" https://app.example.com/ , ,admin.example.com, http://localhost:3000 ",
			discardLogger(),
		)

		assert.False(t, allowAll)
		assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, origins)
	})

	t.Run("WildcardWins", func(t *testing.T) {
		origins, allowAll := parseOrigins("https://app.example.com,*", discardLogger())

		assert.True(t, allowAll)
		assert.Nil(t, origins)
	})

	t.Run("Empty", func(t *testing.T) {
		origins, allowAll := parseOrigins("", discardLogger())

		assert.False(t, allowAll)
		assert.Empty(t, origins)
	})
}

func TestCORSMiddleware_Requests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("AllowedOriginGetsHeaders", func(t *testing.T) {
		router := newCORSRouter(t, createCORSMiddleware(true, "https://app.example.com", discardLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/api-keys", nil)
		req.Header.Set("Origin", "https://app.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("UnknownOriginRejected", func(t *testing.T) {
		router := newCORSRouter(t, createCORSMiddleware(true, "https://app.example.com", discardLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/api-keys", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("WildcardAllowsAnyOrigin", func(t *testing.T) {
		router := newCORSRouter(t, createCORSMiddleware(true, "*", discardLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/api-keys", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("DisabledAddsNothing", func(t *testing.T) {
		middleware := createCORSMiddleware(false, "https://app.example.com", discardLogger())
		require.Nil(t, middleware)
		router := newCORSRouter(t, middleware)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/api-keys", nil)
		req.Header.Set("Origin", "https://app.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("PreflightAllowsAuthorizationHeader", func(t *testing.T) {
		router := newCORSRouter(t, createCORSMiddleware(true, "https://app.example.com", discardLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/v1/api-keys", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})
}
