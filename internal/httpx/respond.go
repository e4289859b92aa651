// Package httpx maps usecase errors onto HTTP responses.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chickencore/order-service/internal/apperr"
)

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.InsufficientStock, apperr.SchedulingRejected, apperr.InvalidTransition, apperr.Conflict:
		return http.StatusConflict
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the taxonomy kind and caller-facing reason; internals are
// never leaked to the client.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.JSON(statusOf(kind), gin.H{
		"error": apperr.MessageOf(err),
		"kind":  kind.String(),
	})
}
