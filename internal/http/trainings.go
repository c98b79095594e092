package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hajimeclub/portal/internal/auth"
	"github.com/hajimeclub/portal/internal/database/trainings"
	"github.com/hajimeclub/portal/internal/entities"
)

// TrainingsController handles the class schedule endpoints.
type TrainingsController struct {
	repo *trainings.Repository
}

func NewTrainingsController(repo *trainings.Repository) *TrainingsController {
	return &TrainingsController{repo: repo}
}

func (ctrl *TrainingsController) RegisterRoutes(router gin.IRouter) {
	router.GET("/api/sessions", auth.RequireAuth(), ctrl.List)
	router.POST("/api/sessions", auth.RequireAdmin(), ctrl.Create)
	router.DELETE("/api/sessions/:id", auth.RequireAdmin(), ctrl.Delete)
}

func (ctrl *TrainingsController) List(c *gin.Context) {
	sessions, err := ctrl.repo.List()
	if err != nil {
		respondInternalError(c, err, "list training sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

type createTrainingRequest struct {
	Title       string    `json:"title" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	StartTime   string    `json:"start_time" binding:"required"`
	EndTime     string    `json:"end_time" binding:"required"`
	Instructor  string    `json:"instructor" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,min=1"`
	Description string    `json:"description"`
}

func (ctrl *TrainingsController) Create(c *gin.Context) {
	var req createTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid training session payload")
		return
	}

	session := &entities.TrainingSession{
		Title:       req.Title,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Instructor:  req.Instructor,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	if err := ctrl.repo.Create(session); err != nil {
		respondInternalError(c, err, "create training session")
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (ctrl *TrainingsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "training session")
			return
		}
		respondInternalError(c, err, "delete training session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "training session deleted"})
}
