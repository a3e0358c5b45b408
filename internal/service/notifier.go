package service

import (
	"log"

	"github.com/porchlight-app/porchlight-backend/internal/models"
)

// SummaryInvalidator drops a user's cached conversation-summary list.
type SummaryInvalidator interface {
	Invalidate(userID uint) error
}

// Notifier turns persisted chat activity into channel publications. It never
// returns errors: everything downstream of a durable write is best-effort and
// a subscriber that misses an event re-fetches on its next connect.
type Notifier struct {
	hub          Publisher
	summaryCache SummaryInvalidator
}

func NewNotifier(hub Publisher, summaryCache SummaryInvalidator) *Notifier {
	return &Notifier{hub: hub, summaryCache: summaryCache}
}

type receiptEvent struct {
	MessageID      uint `json:"message_id"`
	ConversationID uint `json:"conversation_id"`
	UserID         uint `json:"user_id"`
}

// fanOutSummary publishes the conversation's current summary to every
// participant's user channel, dropping each participant's cached list first.
func (n *Notifier) fanOutSummary(conversation *models.Conversation) {
	payload, err := NewEvent(EventConversationUpdated, conversation.ToSummary())
	if err != nil {
		log.Printf("Error encoding summary event for conversation %d: %v", conversation.ID, err)
		return
	}
	for _, userID := range conversation.ParticipantIDs() {
		if n.summaryCache != nil {
			if err := n.summaryCache.Invalidate(userID); err != nil {
				log.Printf("Summary cache invalidation failed for user %d: %v", userID, err)
			}
		}
		n.hub.Publish(UserChannel(userID), payload)
	}
}

// MessageCreated fans a new message out twice: the full message to the
// conversation channel for anyone viewing it, and a refreshed summary to every
// participant's user channel (sender included) for list views. The two
// publications are independent; neither waits on the other.
func (n *Notifier) MessageCreated(message *models.Message, conversation *models.Conversation) {
	if payload, err := NewEvent(EventReceiveMessage, message.ToResponse()); err != nil {
		log.Printf("Error encoding message %d event: %v", message.ID, err)
	} else {
		n.hub.Publish(ConversationChannel(conversation.ID), payload)
	}

	n.fanOutSummary(conversation)
}

// ConversationCreated announces a new conversation to every participant, not
// just the creator, so open list views pick it up without polling.
func (n *Notifier) ConversationCreated(conversation *models.Conversation) {
	n.fanOutSummary(conversation)
}

// ReceiptApplied republishes an updated receipt to the message's conversation
// channel so the sender's live view reflects it without re-fetching.
func (n *Notifier) ReceiptApplied(kind models.ReceiptKind, message *models.Message, userID uint) {
	eventType := EventMessageDelivered
	if kind == models.ReceiptSeen {
		eventType = EventMessageSeen
	}

	payload, err := NewEvent(eventType, receiptEvent{
		MessageID:      message.ID,
		ConversationID: message.ConversationID,
		UserID:         userID,
	})
	if err != nil {
		log.Printf("Error encoding %s event for message %d: %v", eventType, message.ID, err)
		return
	}
	n.hub.Publish(ConversationChannel(message.ConversationID), payload)
}
