package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"authkeeper/internal/common"
)

// writeError maps the core error taxonomy to transport statuses. Each kind
// gets a distinct status; Unauthorized carries a fixed body with no extra
// detail so callers cannot tell bad credentials from reused tokens or
// inactive accounts.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": reason(err, common.ErrValidation)})
	case errors.Is(err, common.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "could not validate credentials"})
	case errors.Is(err, common.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": reason(err, common.ErrForbidden)})
	case errors.Is(err, common.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": reason(err, common.ErrNotFound)})
	case errors.Is(err, common.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"detail": reason(err, common.ErrConflict)})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// reason strips the sentinel prefix from a wrapped error, leaving the
// human-readable part for the response body.
func reason(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
