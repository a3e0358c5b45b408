package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/porchlight-app/porchlight-backend/internal/httpx"
	"github.com/porchlight-app/porchlight-backend/internal/models"
	"github.com/porchlight-app/porchlight-backend/internal/service"
	"github.com/porchlight-app/porchlight-backend/internal/validation"
)

// MessageHandler is the synchronous counterpart of the websocket sendMessage
// path; both run the same service call and the same fan-out.
type MessageHandler struct {
	chatService *service.ChatService
	notifier    *service.Notifier
}

func NewMessageHandler(chatService *service.ChatService, notifier *service.Notifier) *MessageHandler {
	return &MessageHandler{
		chatService: chatService,
		notifier:    notifier,
	}
}

func conversationIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid conversation id")
	}
	return uint(id), nil
}

type sendMessageInput struct {
	Body        string             `json:"body"`
	MessageType models.MessageType `json:"message_type"`
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := conversationIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	var input sendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	body := validation.TrimAndLimit(input.Body, validation.MaxMessageLength())
	message, conversation, err := h.chatService.SendMessage(userID, conversationID, body, input.MessageType)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return httpx.BadRequest(c, "invalid_message", err.Error())
		}
		return httpx.Internal(c, "send_message_failed")
	}

	h.notifier.MessageCreated(message, conversation)

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	conversationID, err := conversationIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	messages, err := h.chatService.History(conversationID, userID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return httpx.Forbidden(c, "not_participant", "Not a participant of this conversation")
		}
		return httpx.Internal(c, "fetch_messages_failed")
	}

	responses := make([]models.MessageResponse, len(messages))
	for i := range messages {
		responses[i] = messages[i].ToResponse()
	}

	return c.JSON(fiber.Map{
		"messages": responses,
		"count":    len(responses),
	})
}
