// Package refbackend implements the household REST backend the companion talks to.
// It is shipped for local development and end-to-end tests.
package refbackend

import (
	"github.com/gin-gonic/gin"
)

// Envelope wraps every backend response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: message,
	})
}
