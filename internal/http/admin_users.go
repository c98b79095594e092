package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hajimeclub/portal/internal/audit"
	"github.com/hajimeclub/portal/internal/auth"
	"github.com/hajimeclub/portal/internal/database/users"
	"github.com/hajimeclub/portal/internal/entities"
)

// AdminUsersController handles the admin member-management endpoints:
// listing members, marking a student as verified, and removing accounts.
type AdminUsersController struct {
	repo     *users.Repository
	recorder *audit.Recorder
}

// NewAdminUsersController creates the controller. recorder may be nil.
func NewAdminUsersController(repo *users.Repository, recorder *audit.Recorder) *AdminUsersController {
	return &AdminUsersController{repo: repo, recorder: recorder}
}

func (ctrl *AdminUsersController) RegisterRoutes(router gin.IRouter) {
	admin := router.Group("/api/admin", auth.RequireAdmin())
	admin.GET("/users", ctrl.List)
	admin.POST("/users/:id/verify", ctrl.Verify)
	admin.DELETE("/users/:id", ctrl.Delete)
}

func (ctrl *AdminUsersController) List(c *gin.Context) {
	members, err := ctrl.repo.List()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	// Password hashes are excluded by the entity's JSON tags.
	c.JSON(http.StatusOK, members)
}

func (ctrl *AdminUsersController) Verify(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := ctrl.repo.GetByID(id)
	if err != nil {
		respondInternalError(c, err, "verify user")
		return
	}
	if member == nil {
		respondNotFound(c, "user")
		return
	}
	if member.Role != entities.UserRoleStudent {
		respondBadRequest(c, "only students can be verified")
		return
	}

	if err := ctrl.repo.SetVerified(id, true); err != nil {
		respondInternalError(c, err, "verify user")
		return
	}

	ctrl.record(c, "user_verify", fmt.Sprintf("verified member %d", id))
	c.JSON(http.StatusOK, gin.H{"message": "user verified"})
}

func (ctrl *AdminUsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Admins cannot delete their own account out from under their session.
	if auth.CurrentUser(c).ID == id {
		respondBadRequest(c, "cannot delete your own account")
		return
	}

	member, err := ctrl.repo.GetByID(id)
	if err != nil {
		respondInternalError(c, err, "delete user")
		return
	}
	if member == nil {
		respondNotFound(c, "user")
		return
	}

	if err := ctrl.repo.Delete(id); err != nil {
		respondInternalError(c, err, "delete user")
		return
	}

	ctrl.record(c, "user_delete", fmt.Sprintf("deleted member %d (%s)", id, member.Email))
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (ctrl *AdminUsersController) record(c *gin.Context, action, description string) {
	if ctrl.recorder != nil {
		ctrl.recorder.RecordAdmin(auth.CurrentUser(c).ID, action, description, c.ClientIP(), true)
	}
}
