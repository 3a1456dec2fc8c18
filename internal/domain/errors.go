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
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeEmbeddingProvider = "EMBEDDING_PROVIDER_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeStorage           = "STORAGE_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingEntityID     = NewDomainError(ErrCodeValidation, "entityId is required")
	ErrMissingSourceID     = NewDomainError(ErrCodeValidation, "sourceId is required")
	ErrMissingFile         = NewDomainError(ErrCodeValidation, "file is required")
	ErrInvalidSourceStatus = NewDomainError(ErrCodeValidation, "invalid source status")
)

// Not found errors
var (
	ErrEntityNotFound = NewDomainError(ErrCodeNotFound, "entity not found in embeddings index")
	ErrSourceNotFound = NewDomainError(ErrCodeNotFound, "knowledge source not found")
)

// Extraction errors
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeUnsupportedFormat, "unsupported document format")
)

// Embedding provider errors
var (
	ErrEmbeddingProvider = NewDomainError(ErrCodeEmbeddingProvider, "embedding provider request failed")
	ErrRateLimited       = NewDomainError(ErrCodeRateLimited, "embedding provider throttled the request")
)

// Storage errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodeStorage, "storage operation failed")
)
