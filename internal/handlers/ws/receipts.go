package ws

import (
	"log"

	"github.com/porchlight-app/porchlight-backend/internal/models"
)

// Receipt acknowledgements are advisory: any failure is logged and swallowed
// so a stale or duplicated ack from a reconnecting client never produces an
// error frame.

// MessageDelivered acknowledges delivery of a live message.
type MessageDelivered struct {
	MessageID uint `json:"message_id"`
}

func (msg *MessageDelivered) GetType() string {
	return "messageDelivered"
}

func (msg *MessageDelivered) Process(ctx *MessageContext) error {
	message, err := ctx.Chat.MarkDelivered(msg.MessageID, ctx.UserID)
	if err != nil {
		log.Printf("Delivery ack dropped (message %d, user %d): %v", msg.MessageID, ctx.UserID, err)
		return nil
	}
	ctx.Notifier.ReceiptApplied(models.ReceiptDelivered, message, ctx.UserID)
	return nil
}

// MessageSeen acknowledges that a message was rendered in an active view.
type MessageSeen struct {
	MessageID uint `json:"message_id"`
}

func (msg *MessageSeen) GetType() string {
	return "messageSeen"
}

func (msg *MessageSeen) Process(ctx *MessageContext) error {
	message, err := ctx.Chat.MarkSeen(msg.MessageID, ctx.UserID)
	if err != nil {
		log.Printf("Seen ack dropped (message %d, user %d): %v", msg.MessageID, ctx.UserID, err)
		return nil
	}
	ctx.Notifier.ReceiptApplied(models.ReceiptSeen, message, ctx.UserID)
	return nil
}
