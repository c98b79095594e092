package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthController provides the liveness endpoint.
type HealthController struct {
	version string
}

func NewHealthController(version string) *HealthController {
	return &HealthController{version: version}
}

func (hc *HealthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", hc.Health)
}

func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": hc.version,
	})
}
