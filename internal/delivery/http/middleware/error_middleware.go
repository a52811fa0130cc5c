package middleware

import (
	"net/http"

	"cv-screening-backend/internal/delivery/http/response"
	"cv-screening-backend/pkg/apperror"
	"cv-screening-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperror.FromDomain(c.Errors.Last().Err)
		// Never expose internal error details to clients.
		if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
			logger.Log.Error("Internal server error",
				"error", appErr.Err,
				"path", c.FullPath(),
				"request_id", getRequestID(c),
			)
			response.Error(c, appErr.Code, "An unexpected error occurred. Please try again later.", nil)
			return
		}
		response.Error(c, appErr.Code, appErr.Message, nil)
	}
}
