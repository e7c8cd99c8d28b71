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

// Common domain errors
var (
	ErrNotConfigured = NewDomainError("NOT_CONFIGURED", "No workbook is connected")
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrParse         = NewDomainError("PARSE_ERROR", "Stored document is malformed")
	ErrValidation    = NewDomainError("VALIDATION_ERROR", "Invalid value provided")
	ErrAccessDenied  = NewDomainError("ACCESS_DENIED", "Access to the backing store was denied")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
)
