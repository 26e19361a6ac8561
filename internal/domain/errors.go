package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeProvider      = "PROVIDER_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Knowledge base validation errors. The messages are user-facing and match
// the assistant's locale.
var (
	ErrCorpusNotJSON           = NewDomainError(ErrCodeValidation, "El archivo no tiene un formato JSON válido.")
	ErrCorpusNotArray          = NewDomainError(ErrCodeValidation, "El archivo proporcionado no es un JSON de embeddings válido (se esperaba un array).")
	ErrCorpusInvalidFragment   = NewDomainError(ErrCodeValidation, "El archivo proporcionado no es un JSON de embeddings válido.")
	ErrCorpusDimensionMismatch = NewDomainError(ErrCodeValidation, "los embeddings del archivo no comparten la misma dimensión")
	ErrQueryDimensionMismatch  = NewDomainError(ErrCodeValidation, "query embedding dimension does not match the loaded corpus")
)

// Contact flow errors
var (
	ErrContactNotFound      = NewDomainError(ErrCodeNotFound, "contact request not found")
	ErrContactAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "a contact request already exists for this session")
)

// Authorization errors
var (
	ErrAPIKeyNotFound = NewDomainError(ErrCodeNotFound, "api key not found")
	ErrAPIKeyRevoked  = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey  = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)
