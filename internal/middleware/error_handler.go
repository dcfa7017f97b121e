package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/selectorcache/internal/domain/dto"
	"github.com/guttosm/selectorcache/internal/selector"
)

// ErrorHandler renders the last error attached to the gin context when the handler
// did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		status := StatusFor(err.Err)

		Log(c).Error().
			Err(err.Err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request error")

		if !c.Writer.Written() {
			c.JSON(status, dto.NewError(dto.ErrCodeFromStatus(status), err.Error()).
				WithRequestID(GetRequestID(c)))
		}
	}
}

// StatusFor maps selector errors to HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, selector.ErrInvalidParameter), errors.Is(err, selector.ErrUnkeyableParameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
