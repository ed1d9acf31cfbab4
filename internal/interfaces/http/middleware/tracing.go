// Package middleware provides HTTP middleware for the inventory backend.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps request IDs copied into trace attributes, since the
// header is caller-controlled.
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "contaro-backend",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin so every request gets a span named
// "METHOD route_pattern", then tags the span with request_id, company_id and
// actor_id. Header-sourced values are validated before landing in the trace:
// company and actor must parse as UUIDs, the request ID is length-capped.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	otelMiddleware := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		otelMiddleware(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if requestID := traceRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if companyID := traceCompanyID(c); companyID != "" {
			span.SetAttributes(attribute.String("company_id", companyID))
		}
		if actorID := traceUUIDHeader(c, ActorHeaderKey); actorID != "" {
			span.SetAttributes(attribute.String("actor_id", actorID))
		}
	}
}

func traceRequestID(c *gin.Context) string {
	// Prefer the value the RequestID middleware stored.
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

func traceCompanyID(c *gin.Context) string {
	// The company middleware already validated what it stored.
	if companyID, exists := c.Get(CompanyIDKey); exists {
		if id, ok := companyID.(string); ok && id != "" {
			return id
		}
	}
	return traceUUIDHeader(c, CompanyHeaderKey)
}

// traceUUIDHeader returns the header value only when it parses as a UUID,
// keeping attacker-shaped strings out of trace attributes.
func traceUUIDHeader(c *gin.Context, header string) string {
	value := c.GetHeader(header)
	if value == "" {
		return ""
	}
	if _, err := uuid.Parse(value); err != nil {
		return ""
	}
	return value
}

// SpanErrorMarker marks the request span as errored for 4xx/5xx responses.
// Place it after the Tracing middleware in the chain.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}

		message := http.StatusText(status)
		if message == "" {
			message = "Client Error"
		}
		span.SetStatus(codes.Error, message)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
