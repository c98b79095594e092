package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hajimeclub/portal/internal/auth"
	"github.com/hajimeclub/portal/internal/database/announcements"
	"github.com/hajimeclub/portal/internal/entities"
)

// AnnouncementsController handles club notice endpoints. Reading requires a
// session; posting and deleting are admin-only.
type AnnouncementsController struct {
	repo *announcements.Repository
}

func NewAnnouncementsController(repo *announcements.Repository) *AnnouncementsController {
	return &AnnouncementsController{repo: repo}
}

func (ctrl *AnnouncementsController) RegisterRoutes(router gin.IRouter) {
	router.GET("/api/announcements", auth.RequireAuth(), ctrl.List)
	router.POST("/api/announcements", auth.RequireAdmin(), ctrl.Create)
	router.DELETE("/api/announcements/:id", auth.RequireAdmin(), ctrl.Delete)
}

func (ctrl *AnnouncementsController) List(c *gin.Context) {
	items, err := ctrl.repo.List()
	if err != nil {
		respondInternalError(c, err, "list announcements")
		return
	}
	c.JSON(http.StatusOK, items)
}

type createAnnouncementRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

func (ctrl *AnnouncementsController) Create(c *gin.Context) {
	var req createAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and body are required")
		return
	}

	// Author comes from the session, never from the request body.
	announcement := &entities.Announcement{
		Title:    req.Title,
		Body:     req.Body,
		AuthorID: auth.CurrentUser(c).ID,
	}
	if err := ctrl.repo.Create(announcement); err != nil {
		respondInternalError(c, err, "create announcement")
		return
	}

	c.JSON(http.StatusCreated, announcement)
}

func (ctrl *AnnouncementsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "announcement")
			return
		}
		respondInternalError(c, err, "delete announcement")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "announcement deleted"})
}
