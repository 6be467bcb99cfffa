package errors

import (
	"fmt"
	"net/http"

	apperrors "voice-relay/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindBadRequest ErrorKind = "bad_request"
	KindNotFound   ErrorKind = "not_found"
	KindUpstream   ErrorKind = "upstream"
	KindInternal   ErrorKind = "internal"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the status code for the error kind. Upstream failures of the
// transcription, translation or speech services surface as 502.
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id)}
}

// FromError classifies an application error. Messages of unclassified errors are not
// exposed to the client.
func FromError(err error) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return &APIError{Kind: KindValidation, Message: err.Error()}
	case apperrors.KindService:
		return &APIError{Kind: KindUpstream, Message: err.Error()}
	case apperrors.KindNotFound:
		return &APIError{Kind: KindNotFound, Message: err.Error()}
	}
	return &APIError{Kind: KindInternal, Message: "Internal server error"}
}
