package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
	CodeValidation ErrorCode = "VALIDATION_ERROR"

	// Quiz generation errors
	CodeUnsupportedFile  ErrorCode = "UNSUPPORTED_FILE"
	CodeUpstream         ErrorCode = "UPSTREAM_ERROR"
	CodeGeneration       ErrorCode = "GENERATION_ERROR"
	CodeNoValidQuestions ErrorCode = "NO_VALID_QUESTIONS"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
	// Status is set only when the error mirrors a response from another
	// service and must be passed through unchanged.
	Status int `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any *DomainError with the same code, so callers can write
// errors.Is(err, domain.ErrNoValidQuestions).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation       = &DomainError{Code: CodeValidation}
	ErrUnsupportedFile  = &DomainError{Code: CodeUnsupportedFile}
	ErrUpstream         = &DomainError{Code: CodeUpstream}
	ErrGeneration       = &DomainError{Code: CodeGeneration}
	ErrNoValidQuestions = &DomainError{Code: CodeNoValidQuestions}
)

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewUnsupportedFileError(message string, err error) *DomainError {
	return NewError(CodeUnsupportedFile, message, err)
}

// NewUpstreamError keeps the model endpoint's status and body so they can be
// relayed to the caller verbatim.
func NewUpstreamError(status int, body string) *DomainError {
	if body == "" {
		body = fmt.Sprintf("upstream returned status %d", status)
	}
	return &DomainError{
		Code:    CodeUpstream,
		Message: body,
		Status:  status,
	}
}

func NewGenerationError(err error) *DomainError {
	return NewError(CodeGeneration, "Failed to parse quiz from model output", err)
}

func NewNoValidQuestionsError() *DomainError {
	return NewError(CodeNoValidQuestions, "Failed to generate valid questions. Try again.", nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}
