package response

import (
	"cv-screening-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       any                `json:"data,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Error      any                `json:"error,omitempty"`
	RequestID  string             `json:"request_id,omitempty"`
}

func requestID(c *gin.Context) string {
	return c.GetString(string(domain.KeyRequestID))
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Paginated sends one page of a listing with its pagination block next to data.
func Paginated(c *gin.Context, message string, page *domain.CVPage) {
	c.JSON(200, Response{
		Success:    true,
		Message:    message,
		Data:       page.Data,
		Pagination: &page.Pagination,
		RequestID:  requestID(c),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err any) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: requestID(c),
	})
}
