package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates the handlers wired into the route table.
type HandlerBundle struct {
	VerifyWebhookHandler  gin.HandlerFunc
	ReceiveWebhookHandler gin.HandlerFunc
	HealthHandler         gin.HandlerFunc
}
