package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"speakersite/internal/apperr"
	"speakersite/internal/models"
)

const (
	userContextKey      = "auth_user"
	authTokenContextKey = "auth_token"
)

// Middleware resolves the session, if any, and stores the user in the context.
// Requests without a valid session continue anonymously.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authToken := s.extractToken(c)
		if authToken == "" {
			c.Next()
			return
		}
		c.Set(authTokenContextKey, authToken)
		user, err := s.UserForToken(c.Request.Context(), authToken)
		if err != nil {
			if !apperr.IsCode(err, apperr.CodeUnauthorized) {
				s.log.WithError(err).Error("resolve session")
				abortWithError(c, err)
				return
			}
			c.Next()
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireUser rejects requests that carry no valid session. It must run after Middleware.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFromContext(c); !ok {
			abortWithError(c, unauthorized("auth.RequireUser", errors.New("no session")))
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests from anonymous or non-admin callers.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			abortWithError(c, unauthorized("auth.RequireAdmin", errors.New("no session")))
			return
		}
		if !user.IsAdmin() {
			abortWithError(c, apperr.E(apperr.CodeForbidden, "auth.RequireAdmin", "admin access required", nil))
			return
		}
		c.Next()
	}
}

// UserFromContext retrieves the authenticated user from the gin context.
func UserFromContext(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok && user != nil
}

// UserIDFromContext returns the authenticated user id, or nil for anonymous callers.
func UserIDFromContext(c *gin.Context) *int64 {
	user, ok := UserFromContext(c)
	if !ok {
		return nil
	}
	id := user.ID
	return &id
}

// AuthTokenFromContext retrieves the token presented with the request, valid or not.
func AuthTokenFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(authTokenContextKey)
	if !ok {
		return "", false
	}
	token, ok := val.(string)
	return token, ok
}

func (s *Service) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader(s.headerName)
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if token, err := c.Cookie(s.cookieName); err == nil && token != "" {
		return token
	}
	return ""
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{
		"code":    apperr.CodeOf(err),
		"message": apperr.Message(err),
	})
}
