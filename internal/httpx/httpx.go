// Package httpx holds the JSON error envelope shared by every handler.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody builds {"statusCode", "message", "error"} for status.
func ErrorBody(status int, message string) gin.H {
	if message == "" {
		message = http.StatusText(status)
	}
	return gin.H{
		"statusCode": status,
		"message":    message,
		"error":      http.StatusText(status),
	}
}

// Error writes the error envelope without aborting the handler chain.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody(status, message))
}

// Abort writes the error envelope and stops the remaining handlers.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody(status, message))
}

// BadRequest reports a binding or validation failure.
func BadRequest(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, err.Error())
}
