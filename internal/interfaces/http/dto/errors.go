package dto

import "net/http"

// API error codes returned in the error envelope. They are stable strings
// clients can switch on; the HTTP status is derived from them, never the
// other way around.
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeUnauthorized        = "ERR_UNAUTHORIZED"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"
	ErrCodeRateLimited         = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus decides the response status for each API error code.
// Stock shortfalls and invalid document-state transitions are well-formed
// requests the business rules refuse, hence 422 rather than 400.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
}

// GetHTTPStatus returns the status for an API error code, defaulting to 500
// for codes the table does not know.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates the domain error families into API error
// codes. The domain layer knows nothing about HTTP; this table is the only
// place the two vocabularies meet.
var DomainErrorCodeMapping = map[string]string{
	"VALIDATION_ERROR":       ErrCodeValidation,
	"REFERENCE_ERROR":        ErrCodeNotFound,
	"CAPACITY_ERROR":         ErrCodeInsufficientStock,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"STATE_TRANSITION_ERROR": ErrCodeInvalidState,
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_STATE":          ErrCodeInvalidState,
}

// NormalizeErrorCode maps a domain error code to its API form, passing
// through codes that are already API codes.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
