package handler

import (
	"errors"
	"net/http"

	"github.com/ErlanBelekov/account-service/internal/validation"
	"github.com/gin-gonic/gin"
)

// bind decodes and validates the request body into dst. On failure it writes
// the 400 response itself and returns false.
func bind(c *gin.Context, v *validation.Validator, dst any) bool {
	err := v.BindJSON(c, dst)
	if err == nil {
		return true
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidationFailed, "details": verr.Violations})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": errValidationFailed})
	return false
}
