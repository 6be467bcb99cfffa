package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error for the orchestrator and HTTP boundaries.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation marks input that was rejected before any remote call.
	KindValidation
	// KindService marks a failed call to an external service.
	KindService
	// KindNotFound marks a lookup of a record or object that does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindService:
		return "ServiceError"
	case KindNotFound:
		return "NotFoundError"
	default:
		return "UnknownError"
	}
}

// Common error types
var (
	// Configuration errors
	ErrMissingAPIKey = New("API key is required")
	ErrInvalidAPIKey = New("invalid API key format")
	ErrInvalidConfig = New("invalid configuration")

	// Input errors
	ErrMissingJobID       = Validation("job id is required")
	ErrNoTranslatedTexts  = Validation("no translated texts provided")
	ErrNoTargetLanguages  = Validation("no target languages provided")
	ErrUnsupportedJobKind = Validation("unsupported job kind")
	ErrNoRecordsInEvent   = Validation("event contains no object-created records")

	// Storage errors
	ErrObjectNotFound = &Error{kind: KindNotFound, message: "object not found"}
	ErrInvalidURI     = New("invalid object URI")
)

// Error represents a standardized error
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Validation creates a ValidationError.
func Validation(message string) *Error {
	return &Error{kind: KindValidation, message: message}
}

// Validationf creates a formatted ValidationError.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{kind: KindValidation, message: fmt.Sprintf(format, args...)}
}

// Service wraps the error returned by an external service call. The operation names the
// call that failed, e.g. "transcribe.StartTranscriptionJob".
func Service(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    KindService,
		message: operation + " failed",
		cause:   err,
	}
}

// Wrap wraps an error with additional context. The kind of the wrapped error is kept.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    KindOf(err),
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    KindOf(err),
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the classification of the error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return KindUnknown
		}
		if e.kind != KindUnknown {
			return e.kind
		}
		err = e.cause
	}
	return KindUnknown
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Validationf("%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Validationf("%s is invalid: %s", field, reason)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier string) error {
	return &Error{kind: KindNotFound, message: fmt.Sprintf("%s not found: %s", itemType, identifier)}
}

// IsNotFound checks if an error reports a missing record or object
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return KindOf(err) == KindValidation
}

// IsServiceError checks if an error came from an external service call
func IsServiceError(err error) bool {
	return KindOf(err) == KindService
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
