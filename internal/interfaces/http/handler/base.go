package handler

import (
	"errors"
	"net/http"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/interfaces/http/dto"
	"github.com/contaro/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// developmentCompanyID is used when no X-Company-ID header is present, so the
// API stays usable from curl during local development.
const developmentCompanyID = "00000000-0000-0000-0000-000000000001"

// BaseHandler provides the response and error translation helpers shared by
// all HTTP handlers. Embed it and use the helpers instead of writing to the
// gin context directly, so every endpoint speaks the same envelope.
type BaseHandler struct{}

// Success writes a 200 response with the standard envelope.
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 response carrying pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created writes a 201 response with the standard envelope.
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BadRequest writes a 400 response for malformed input.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, getRequestID(c)))
}

// HandleDomainError translates a domain error into the matching HTTP status
// and API error code. Errors that do not unwrap to a DomainError become a 500
// without leaking internals to the client.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		c.JSON(status, dto.NewErrorResponseWithRequestID(code, domainErr.Message, getRequestID(c)))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An unexpected error occurred", getRequestID(c)))
}

// HandleError is HandleDomainError with a nil guard, for call sites where the
// error may already have been cleared.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	h.HandleDomainError(c, err)
}

// companyScope resolves the acting company and answers the request with a
// 400 itself when the header is malformed. Callers just return on !ok.
func (h *BaseHandler) companyScope(c *gin.Context) (uuid.UUID, bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return uuid.Nil, false
	}
	return companyID, true
}

// pathID parses a UUID path parameter, answering with a 400 naming the field
// when it does not parse.
func (h *BaseHandler) pathID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+what+" format")
		return uuid.Nil, false
	}
	return id, true
}

// getRequestID returns the request ID set by the middleware, falling back to
// the inbound header when the middleware did not run.
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getCompanyID resolves the acting company from the X-Company-ID header.
// A missing header falls back to the development company so local requests
// need no setup; a malformed header is always an error.
func getCompanyID(c *gin.Context) (uuid.UUID, error) {
	header := c.GetHeader(middleware.CompanyHeaderKey)
	if header == "" {
		return uuid.MustParse(developmentCompanyID), nil
	}

	id, err := uuid.Parse(header)
	if err != nil {
		return uuid.Nil, shared.NewValidationError("Invalid company ID format")
	}
	return id, nil
}

// getActorID resolves the acting user from the X-Actor-ID header. Unlike the
// company, there is no development fallback: operations that record an actor
// must name a real one.
func getActorID(c *gin.Context) (uuid.UUID, error) {
	header := c.GetHeader(middleware.ActorHeaderKey)
	if header == "" {
		return uuid.Nil, shared.NewValidationError("Actor identification required")
	}

	id, err := uuid.Parse(header)
	if err != nil {
		return uuid.Nil, shared.NewValidationError("Invalid actor ID format")
	}
	return id, nil
}
