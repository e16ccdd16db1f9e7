package routes

import (
	"time"

	"chairtime/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterWebhookRoutes registers the Instagram webhook endpoints.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/webhook", hb.VerifyWebhookHandler)
	r.POST("/webhook", hb.ReceiveWebhookHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes wires the full route table with the assembled handler bundle.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterWebhookRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
