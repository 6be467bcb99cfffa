package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"voice-relay/internal/api/errors"
)

// ErrorHandler turns panics into an internal error response.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic while handling request",
			zap.Any("recovered", recovered),
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		apiErr := &errors.APIError{
			Kind:      errors.KindInternal,
			Message:   "Internal server error",
			RequestID: GetRequestID(c),
		}
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes err as an APIError response and aborts the chain. The original error
// is attached to the context so Logging records it.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	apiErr := errors.FromError(err)
	resp := *apiErr
	resp.RequestID = GetRequestID(c)
	c.AbortWithStatusJSON(resp.HTTPStatus(), &resp)
}
