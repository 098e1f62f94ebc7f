// Package response writes the JSON envelope shared by every handler:
// {"success": true, "data": ...} on success and
// {"success": false, "error": {"code", "message", ...}} on failure.
package response

import "github.com/gin-gonic/gin"

type successEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success writes data under the success envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, successEnvelope{Success: true, Data: data})
}

// Error writes a coded error. Codes are stable strings clients switch
// on; messages are for humans.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, errorEnvelope{Success: false, Error: errorBody{Code: code, Message: message}})
}

// ErrorWithDetails adds a free-form details payload, typically field
// level validation errors.
func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, errorEnvelope{Success: false, Error: errorBody{Code: code, Message: message, Details: details}})
}
