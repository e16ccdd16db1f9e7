package handlers

import (
	"net/http"

	"chairtime/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and the latest collaborator health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"services": utils.GetHealthStatus(),
	})
}
