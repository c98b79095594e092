package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hajimeclub/portal/internal/entities"
)

// Context keys for the resolved identity.
const (
	ContextKeyUser  = "auth_user"
	ContextKeyToken = "auth_token"
)

// Middleware resolves the session identity for each request and provides the
// role gates handlers mount per route.
type Middleware struct {
	sessions *Manager
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(sessions *Manager) *Middleware {
	return &Middleware{sessions: sessions}
}

// Handler resolves the session cookie into an identity and stores it in the
// Gin context. Requests without a valid session proceed anonymously and the
// per-route gates decide what that means; only a session store failure aborts
// the request.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := m.sessions.TokenFromRequest(c.Request)
		if !ok {
			c.Next()
			return
		}

		user, err := m.sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			// Store failure. Answering 401 here would tell a client holding a
			// valid session to re-authenticate for an outage that is not their
			// fault; surface it as an internal error instead.
			log.Printf("session resolution failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
			})
			return
		}
		if user == nil {
			c.Next()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

// RequireAuth aborts with 401 unless the request resolved to an identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  ErrUnauthenticated.Error(),
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 401 for anonymous requests and 403 for
// authenticated non-admins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  ErrUnauthenticated.Error(),
			})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin access required",
				"code":  ErrForbidden.Error(),
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *entities.User {
	if v, exists := c.Get(ContextKeyUser); exists {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// CurrentToken returns the raw session token of the authenticated request.
func CurrentToken(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyToken); exists {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}
