package handler

import (
	"context"
	"net/http"

	"github.com/Baaaki/message-board/internal/models"
	"github.com/Baaaki/message-board/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MessageLedger is the message operations the handler needs.
type MessageLedger interface {
	ListMessagesForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Message, error)
	GetMessageForAccount(ctx context.Context, accountID, messageID uuid.UUID) (*models.Message, error)
	CreateMessageForAccount(ctx context.Context, accountID uuid.UUID, in service.MessageInput) (*models.Message, error)
	DeleteMessageForAccount(ctx context.Context, accountID, messageID uuid.UUID) error
}

type MessageHandler struct {
	messages MessageLedger
}

func NewMessageHandler(messages MessageLedger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
	}
}

type CreateMessageRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// GET /api/accounts/:account_id/messages
func (h *MessageHandler) List(c *gin.Context) {
	accountID, ok := pathUUID(c, "account_id")
	if !ok {
		return
	}

	messages, err := h.messages.ListMessagesForAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(messages, toMessageResponse))
}

// GET /api/accounts/:account_id/messages/:message_id
func (h *MessageHandler) Get(c *gin.Context) {
	accountID, ok := pathUUID(c, "account_id")
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}

	message, err := h.messages.GetMessageForAccount(c.Request.Context(), accountID, messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMessageResponse(*message, 0))
}

// POST /api/accounts/:account_id/messages
func (h *MessageHandler) Create(c *gin.Context) {
	accountID, ok := pathUUID(c, "account_id")
	if !ok {
		return
	}

	var req CreateMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.messages.CreateMessageForAccount(c.Request.Context(), accountID, service.MessageInput{
		Content: req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(*message, 0))
}

// DELETE /api/accounts/:account_id/messages/:message_id
func (h *MessageHandler) Delete(c *gin.Context) {
	accountID, ok := pathUUID(c, "account_id")
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}

	if err := h.messages.DeleteMessageForAccount(c.Request.Context(), accountID, messageID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully."})
}
