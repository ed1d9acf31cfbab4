package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error code families. Every failure surfaced by the posting workflows maps to
// exactly one of these; the HTTP layer translates them to status codes.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeReference       = "REFERENCE_ERROR"
	CodeCapacity        = "CAPACITY_ERROR"
	CodeConcurrency     = "CONCURRENCY_CONFLICT"
	CodeStateTransition = "STATE_TRANSITION_ERROR"
)

// NewValidationError reports missing or invalid input. Never retried.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewReferenceError reports a warehouse, product or supplier that does not exist.
func NewReferenceError(message string) *DomainError {
	return NewDomainError(CodeReference, message)
}

// NewCapacityError reports a mutation that would drive a non-negative-stock
// warehouse's quantity below zero.
func NewCapacityError(message string) *DomainError {
	return NewDomainError(CodeCapacity, message)
}

// NewStateTransitionError reports an invalid document status change.
func NewStateTransitionError(message string) *DomainError {
	return NewDomainError(CodeStateTransition, message)
}

// HasCode reports whether err is a DomainError carrying the given code.
func HasCode(err error, code string) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrency, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError(CodeCapacity, "Insufficient stock available")
)
