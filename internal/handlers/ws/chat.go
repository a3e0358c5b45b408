package ws

import (
	"errors"

	"github.com/porchlight-app/porchlight-backend/internal/models"
	"github.com/porchlight-app/porchlight-backend/internal/service"
	"github.com/porchlight-app/porchlight-backend/internal/validation"
)

// MessageChat is an inbound sendMessage event. A failed persist is surfaced to
// the sender and nothing is published; a successful persist always fans out.
type MessageChat struct {
	ConversationID uint               `json:"conversation_id"`
	Body           string             `json:"body"`
	MessageType    models.MessageType `json:"message_type"`
}

func (msg *MessageChat) GetType() string {
	return "sendMessage"
}

func (msg *MessageChat) Process(ctx *MessageContext) error {
	body := validation.TrimAndLimit(msg.Body, validation.MaxMessageLength())

	message, conversation, err := ctx.Chat.SendMessage(ctx.UserID, msg.ConversationID, body, msg.MessageType)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return SendError(ctx.Client, "invalid_message", "Message rejected", err.Error())
		}
		return SendError(ctx.Client, "send_failed", "Message could not be stored", "")
	}

	ctx.Notifier.MessageCreated(message, conversation)
	return nil
}
