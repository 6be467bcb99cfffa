package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"voice-relay/internal/api/errors"
)

// Validator is implemented by requests with rules beyond struct tags.
type Validator interface {
	Validate() error
}

// BindJSON decodes the body into req and checks its binding tags, then its Validate method.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return bindingError(err, "request", "invalid JSON body")
	}
	return validate(req)
}

// BindQuery is BindJSON for query parameters.
func BindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return bindingError(err, "query", "invalid query parameters")
	}
	return validate(req)
}

func validate(req interface{}) error {
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func bindingError(err error, field, fallback string) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewValidationError("Validation failed", map[string]string{field: fallback})
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			details[name] = "is required"
		case "min":
			details[name] = "is too small"
		case "max":
			details[name] = "is too large"
		case "oneof":
			details[name] = "must be one of " + fe.Param()
		default:
			details[name] = "is invalid"
		}
	}
	return errors.NewValidationError("Validation failed", details)
}
