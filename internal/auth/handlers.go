package auth

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Auditor records authentication events. Implementations must be
// best-effort: recording never fails the request.
type Auditor interface {
	RecordAuth(userID uint, action, description, ip string, success bool)
}

// Controller exposes the authentication endpoints.
type Controller struct {
	service  *Service
	sessions *Manager
	auditor  Auditor
}

// NewController creates the authentication controller. auditor may be nil.
func NewController(service *Service, sessions *Manager, auditor Auditor) *Controller {
	return &Controller{
		service:  service,
		sessions: sessions,
		auditor:  auditor,
	}
}

// RegisterRoutes mounts the auth endpoints on the router.
func (ac *Controller) RegisterRoutes(router gin.IRouter) {
	router.POST("/api/register", ac.Register)
	router.POST("/api/login", ac.Login)
	router.POST("/api/logout", ac.Logout)
	router.GET("/api/user", RequireAuth(), ac.CurrentUser)
	router.POST("/api/change-password", RequireAuth(), ac.ChangePassword)
}

type registerRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	Phone         string `json:"phone"`
	AcceptedTerms bool   `json:"accepted_terms"`
}

// Register handles POST /api/register.
func (ac *Controller) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, session, err := ac.service.Register(c.Request.Context(), RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		AcceptedTerms: req.AcceptedTerms,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "email already registered",
				"code":  ErrDuplicateEmail.Error(),
			})
		case errors.Is(err, ErrTermsNotAccepted):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "terms of service must be accepted",
				"code":  ErrTermsNotAccepted.Error(),
			})
		default:
			ac.internalError(c, "register", err)
		}
		return
	}

	ac.record(user.ID, "register", fmt.Sprintf("registered %s", user.Email), c.ClientIP(), true)

	ac.sessions.WriteCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/login.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, session, err := ac.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			ac.record(0, "login", fmt.Sprintf("failed login for %s", req.Email), c.ClientIP(), false)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid email or password",
				"code":  ErrInvalidCredentials.Error(),
			})
			return
		}
		ac.internalError(c, "login", err)
		return
	}

	ac.record(user.ID, "login", fmt.Sprintf("logged in as %s", user.Email), c.ClientIP(), true)

	ac.sessions.WriteCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/logout. Idempotent: succeeds with or without a
// live session.
func (ac *Controller) Logout(c *gin.Context) {
	if token, ok := ac.sessions.TokenFromRequest(c.Request); ok {
		if err := ac.service.Logout(c.Request.Context(), token); err != nil {
			ac.internalError(c, "logout", err)
			return
		}
	}
	ac.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// CurrentUser handles GET /api/user.
func (ac *Controller) CurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentUser(c))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword handles POST /api/change-password. The session performing
// the change stays valid.
func (ac *Controller) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user := CurrentUser(c)
	err := ac.service.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCurrentPassword):
			ac.record(user.ID, "change_password", "wrong current password", c.ClientIP(), false)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "current password is incorrect",
				"code":  ErrInvalidCurrentPassword.Error(),
			})
		case errors.Is(err, ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  ErrUnauthenticated.Error(),
			})
		default:
			ac.internalError(c, "change-password", err)
		}
		return
	}

	ac.record(user.ID, "change_password", "password changed", c.ClientIP(), true)
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// internalError logs full detail server-side and returns a generic message.
// Malformed stored credentials land here too: they signal a data-integrity
// bug and must never surface as "wrong password".
func (ac *Controller) internalError(c *gin.Context, op string, err error) {
	log.Printf("Internal error (%s): %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func (ac *Controller) record(userID uint, action, description, ip string, success bool) {
	if ac.auditor != nil {
		ac.auditor.RecordAuth(userID, action, description, ip, success)
	}
}
