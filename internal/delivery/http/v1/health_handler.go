package v1

import (
	"net/http"

	"cv-screening-backend/internal/delivery/http/response"
	"cv-screening-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response{data=usecase.HealthReport}
// @Failure      503  {object}  response.Response{data=usecase.HealthReport}
// @Router       /health [get]
func healthHandler(healthUC usecase.HealthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := healthUC.Check(c.Request.Context())
		if report.Status == "down" {
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Success: false,
				Message: "System unavailable",
				Data:    report,
			})
			return
		}
		response.Success(c, http.StatusOK, "System operational", report)
	}
}
