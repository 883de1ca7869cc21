package handlers

import (
	"net/http"

	"ridepool/internal/http/middleware"
	"ridepool/internal/notify"

	"github.com/gin-gonic/gin"
)

var (
	jwtSecret = []byte("super-secret-key-change-me")
	notifier  notify.Publisher
)

// Configure wires runtime settings the handlers need. Call once at startup.
func Configure(secret string, n notify.Publisher) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	notifier = n
}

// JWTSecret exposes the signing key to the router's auth middleware.
func JWTSecret() []byte {
	return jwtSecret
}

// RespondError sends the standard error payload with request_id included.
// Keeps a stable shape: always "message", plus "error" for the underlying
// cause.
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// RespondValidationErrors sends field-level validation failures as a list.
func RespondValidationErrors(c *gin.Context, errs ...string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"errors":     errs,
		"request_id": middleware.GetRequestID(c),
	})
}

// BindJSONOrError ensures body is present and parsable; binding failures go
// out as validation errors.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondValidationErrors(c, "request body is required")
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondValidationErrors(c, err.Error())
		return false
	}
	return true
}
