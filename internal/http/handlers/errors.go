package handlers

import (
	"net/http"

	"ridepool/internal/domain"

	"github.com/gin-gonic/gin"
)

// RespondDomainError maps domain errors to HTTP responses. Validation
// failures carry field-level messages; everything else is a single message.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		RespondValidationErrors(c, err.Error())
	case domain.IsForbidden(err):
		RespondError(c, http.StatusForbidden, err.Error(), nil)
	case domain.IsNotFound(err):
		RespondError(c, http.StatusNotFound, err.Error(), nil)
	case domain.IsConflict(err):
		RespondError(c, http.StatusConflict, err.Error(), nil)
	default:
		RespondError(c, http.StatusInternalServerError, "something went wrong", err)
	}
}
