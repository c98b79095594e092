package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hajimeclub/portal/internal/auth"
	auditdb "github.com/hajimeclub/portal/internal/database/audit"
)

// AdminAuditController exposes the audit trail to admins, paginated and
// optionally filtered by user.
type AdminAuditController struct {
	repo *auditdb.Repository
}

func NewAdminAuditController(repo *auditdb.Repository) *AdminAuditController {
	return &AdminAuditController{repo: repo}
}

func (ctrl *AdminAuditController) RegisterRoutes(router gin.IRouter) {
	router.GET("/api/admin/audit", auth.RequireAdmin(), ctrl.List)
}

func (ctrl *AdminAuditController) List(c *gin.Context) {
	var userID uint
	if v := c.Query("user_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid user_id")
			return
		}
		userID = uint(parsed)
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, total, err := ctrl.repo.GetEvents(userID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  total,
	})
}
