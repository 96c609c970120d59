package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody - every failed request answers with this shape
type ErrorBody struct {
	Error string `json:"error"`
}

// Success responses
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func Created(c *gin.Context, data interface{}) {
	Success(c, http.StatusCreated, data)
}

func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data)
}

// Error responses
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{Error: message})
}

// AbortWithError writes the error body and stops the middleware chain.
func AbortWithError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: message})
}

// Common error responses
func Unauthorized(c *gin.Context, message string) {
	AbortWithError(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	AbortWithError(c, http.StatusForbidden, message)
}

func TooManyRequests(c *gin.Context, message string) {
	AbortWithError(c, http.StatusTooManyRequests, message)
}
