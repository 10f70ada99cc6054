package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"netinv/internal/inventory"
)

// statusFor maps the error taxonomy of the inventory to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, inventory.ErrPartialCascade):
		return http.StatusConflict
	case errors.Is(err, inventory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrConstraintViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inventory.ErrService):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError records err on the context for the audit and logging
// middleware and writes the error body.
func abortWithError(c *gin.Context, err error) {
	c.Error(err)
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	if status == http.StatusInternalServerError {
		body["error"] = "internal error"
	}

	var ve *inventory.ValidationError
	if errors.As(err, &ve) {
		body["field"] = ve.Field
		body["reason"] = ve.Reason
	}
	var ce *inventory.CascadeError
	if errors.As(err, &ce) {
		body["siteId"] = ce.SiteID
		body["failed"] = ce.Failed
		body["rolledBack"] = ce.RolledBack
		if ce.Completed != nil {
			body["completed"] = ce.Completed
		} else {
			body["completed"] = []inventory.KindCount{}
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
