package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyMiddleware(t *testing.T) {
	validCompanyID := "11111111-1111-1111-1111-111111111111"

	newRouter := func(cfg CompanyMiddlewareConfig) *gin.Engine {
		router := gin.New()
		router.Use(CompanyMiddlewareWithConfig(cfg))
		router.GET("/api/v1/warehouses", func(c *gin.Context) {
			c.String(http.StatusOK, GetCompanyID(c))
		})
		router.GET("/health", func(c *gin.Context) {
			c.String(http.StatusOK, "healthy")
		})
		return router
	}

	t.Run("accepts valid company header", func(t *testing.T) {
		router := newRouter(DefaultCompanyConfig())

		req := httptest.NewRequest("GET", "/api/v1/warehouses", nil)
		req.Header.Set(CompanyHeaderKey, validCompanyID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, validCompanyID, w.Body.String())
	})

	t.Run("rejects missing header when required", func(t *testing.T) {
		router := newRouter(DefaultCompanyConfig())

		req := httptest.NewRequest("GET", "/api/v1/warehouses", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("rejects malformed company ID", func(t *testing.T) {
		router := newRouter(DefaultCompanyConfig())

		req := httptest.NewRequest("GET", "/api/v1/warehouses", nil)
		req.Header.Set(CompanyHeaderKey, "not-a-uuid")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid company ID format")
	})

	t.Run("skips configured paths", func(t *testing.T) {
		router := newRouter(DefaultCompanyConfig())

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", w.Body.String())
	})

	t.Run("optional middleware allows missing header", func(t *testing.T) {
		router := gin.New()
		router.Use(OptionalCompanyMiddleware())
		router.GET("/api/v1/warehouses", func(c *gin.Context) {
			c.String(http.StatusOK, GetCompanyID(c))
		})

		req := httptest.NewRequest("GET", "/api/v1/warehouses", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestGetCompanyUUID(t *testing.T) {
	t.Run("parses stored company ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set(CompanyIDKey, "11111111-1111-1111-1111-111111111111")

		id, err := GetCompanyUUID(c)
		require.NoError(t, err)
		assert.Equal(t, "11111111-1111-1111-1111-111111111111", id.String())
	})

	t.Run("returns nil UUID when unset", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		id, err := GetCompanyUUID(c)
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, id)
	})
}
