package handlers

import (
	"net/http"

	"chairtime/models"
	"chairtime/services/messenger"
	"chairtime/services/response"
	"chairtime/services/router"
	"chairtime/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives Instagram webhook deliveries.
type WebhookHandler struct {
	Router      router.Router
	Messenger   messenger.Service
	Responses   *response.Generator
	VerifyToken string
}

func NewWebhookHandler(r router.Router, m messenger.Service, responses *response.Generator, verifyToken string) *WebhookHandler {
	return &WebhookHandler{Router: r, Messenger: m, Responses: responses, VerifyToken: verifyToken}
}

// VerifyWebhookHandler answers the Meta webhook verification handshake:
// echo hub.challenge when the verify token matches, 403 otherwise.
func (h *WebhookHandler) VerifyWebhookHandler(c *gin.Context) {
	logger := utils.GetLogger()

	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.VerifyToken {
		logger.Info("Webhook verified successfully")
		c.String(http.StatusOK, challenge)
		return
	}

	logger.Warn("Webhook verification failed", zap.String("mode", mode))
	c.JSON(http.StatusForbidden, gin.H{"error": "Verification failed"})
}

// ReceiveWebhookHandler processes inbound message events. It always answers
// 200 so Meta does not endlessly retry deliveries that failed downstream.
func (h *WebhookHandler) ReceiveWebhookHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var event models.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		logger.Error("Invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "invalid payload"})
		return
	}

	if event.Object != "instagram" {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	for _, entry := range event.Entry {
		for _, messaging := range entry.Messaging {
			h.processMessage(c, messaging)
		}
		for _, change := range entry.Changes {
			if change.Field == "comments" {
				// Comments are logged only; the bot converses over DMs.
				logger.Info("Comment received",
					zap.String("commentId", change.Value.ID),
					zap.String("from", change.Value.From.ID),
				)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// processMessage routes one message and sends the reply. Failures downgrade
// to an apologetic DM; they never propagate to the webhook response.
func (h *WebhookHandler) processMessage(c *gin.Context, messaging models.MessagingEvent) {
	logger := utils.GetLogger()

	senderID := messaging.Sender.ID
	if messaging.Message == nil || messaging.Message.Text == "" {
		return
	}
	// Skip echoes of our own outbound messages.
	if messaging.Message.IsEcho || senderID == messaging.Recipient.ID {
		return
	}

	logger.Info("Processing message", zap.String("senderId", senderID))

	ctx := c.Request.Context()
	reply, err := h.Router.HandleMessage(ctx, senderID, messaging.Message.Text)
	if err != nil {
		logger.Error("Failed to handle message", zap.String("senderId", senderID), zap.Error(err))
		reply = h.Responses.GenericError()
	}

	if reply == "" {
		return
	}
	if err := h.Messenger.SendMessage(ctx, senderID, reply); err != nil {
		logger.Error("Failed to send reply", zap.String("senderId", senderID), zap.Error(err))
	}
}
