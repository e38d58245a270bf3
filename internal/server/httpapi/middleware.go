package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"

	"authkeeper/internal/common"
	"authkeeper/internal/server/models"
)

// currentUserKey is the gin context key holding the authenticated user.
const currentUserKey = "current_user"

// authRequired extracts the bearer token and resolves it to a live user via
// the services layer. A missing header, a malformed header, and a rejected
// token all answer with the same 401.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerSchemePrefix) {
			writeError(c, common.ErrUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, common.BearerSchemePrefix)

		user, err := s.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// adminRequired gates admin-only routes. It must run after authRequired.
func (s *Server) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			writeError(c, common.ErrUnauthorized)
			return
		}
		if err := s.users.RequireAdmin(user); err != nil {
			writeError(c, err)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// abortIfNoUser is a guard for handlers that must only run behind
// authRequired; it answers 401 if the middleware chain was misassembled.
func abortIfNoUser(c *gin.Context) *models.User {
	user := currentUser(c)
	if user == nil {
		writeError(c, common.ErrUnauthorized)
	}
	return user
}
