package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/selectorcache/internal/domain/dto"
)

// Recovery recovers from panics and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Log(c).Error().
					Interface("panic", err).
					Str("path", c.Request.URL.Path).
					Msg("PANIC recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewError(dto.ErrCodeInternal, "An unexpected error occurred").
						WithRequestID(GetRequestID(c)))
			}
		}()
		c.Next()
	}
}
