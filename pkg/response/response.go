package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

// Failure is the error body shared by every endpoint.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// JSON sends a success payload. Payload structs carry their own success flag so
// the wire contract stays flat ({"success": true, ...}).
func JSON(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, payload)
}

// Accepted responds with HTTP 200 for asynchronous submissions; clients poll for the result.
func Accepted(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Failure{Success: false, Message: appErr.Message, Code: appErr.Code})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
