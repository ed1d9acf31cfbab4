package middleware

import (
	"net/http"
	"strings"

	"github.com/contaro/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keys used to store company information in gin.Context
const (
	CompanyIDKey     = "company_id"
	CompanyHeaderKey = "X-Company-ID"
	ActorHeaderKey   = "X-Actor-ID"
)

// CompanyMiddlewareConfig holds configuration for company middleware
type CompanyMiddlewareConfig struct {
	// SkipPaths are paths that don't require company context (e.g., health check)
	SkipPaths []string
	// Required determines if company context is mandatory
	Required bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultCompanyConfig returns default company middleware configuration
func DefaultCompanyConfig() CompanyMiddlewareConfig {
	return CompanyMiddlewareConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/system"},
		Required:  true,
		Logger:    nil,
	}
}

// CompanyMiddleware extracts the company context from the X-Company-ID header
func CompanyMiddleware() gin.HandlerFunc {
	return CompanyMiddlewareWithConfig(DefaultCompanyConfig())
}

// CompanyMiddlewareWithConfig returns company middleware with custom configuration
func CompanyMiddlewareWithConfig(cfg CompanyMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		companyID := c.GetHeader(CompanyHeaderKey)

		if companyID != "" {
			if _, err := uuid.Parse(companyID); err != nil {
				respondUnauthorized(c, "Invalid company ID format")
				return
			}
		}

		if companyID == "" && cfg.Required {
			respondUnauthorized(c, "Company identification required")
			return
		}

		if companyID != "" {
			c.Set(CompanyIDKey, companyID)

			// Propagate to the request context so the service layer logs carry it
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithCompanyID(ctx, log, companyID)
			c.Request = c.Request.WithContext(ctx)

			if cfg.Logger != nil {
				cfg.Logger.Debug("Company identified", zap.String("company_id", companyID))
			}
		}

		c.Next()
	}
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetCompanyID retrieves the company ID from gin.Context
func GetCompanyID(c *gin.Context) string {
	if companyID, exists := c.Get(CompanyIDKey); exists {
		if cid, ok := companyID.(string); ok {
			return cid
		}
	}
	return ""
}

// GetCompanyUUID retrieves the company ID as UUID from gin.Context
func GetCompanyUUID(c *gin.Context) (uuid.UUID, error) {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(companyID)
}

// OptionalCompanyMiddleware creates middleware that doesn't require a company
func OptionalCompanyMiddleware() gin.HandlerFunc {
	cfg := DefaultCompanyConfig()
	cfg.Required = false
	return CompanyMiddlewareWithConfig(cfg)
}
