package response

import (
	"net/http"

	"carelink.id/clinicapi/pkg/apperror"
	"carelink.id/clinicapi/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Error writes the standardized error response for err.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		logrus.WithError(err).Error("internal error")
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// InvalidInput writes a 400 for a request-binding failure, with
// validation errors expanded into per-field messages.
func InvalidInput(c *gin.Context, err error) {
	Error(c, apperror.New(http.StatusBadRequest, validator.FormatValidationError(err), apperror.ErrInvalidInput))
}

// NotFound writes a 404 with a descriptive message.
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}
