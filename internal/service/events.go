package service

import (
	"encoding/json"
	"fmt"
)

// Server-to-client event types carried over the websocket transport.
const (
	EventReceiveMessage      = "receiveMessage"
	EventConversationUpdated = "conversationUpdated"
	EventMessageDelivered    = "messageDelivered"
	EventMessageSeen         = "messageSeen"
)

// UserChannel names the per-user channel a client joins on connect.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// ConversationChannel names the per-conversation channel a client joins while
// viewing that conversation.
func ConversationChannel(conversationID uint) string {
	return fmt.Sprintf("conversation:%d", conversationID)
}

// Event is the wire envelope for everything the server pushes to subscribers.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewEvent(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Payload: payload})
}

// Publisher is the fan-out surface the websocket hub exposes to services.
// Delivery is at-most-once and best-effort: a channel with no subscribers
// swallows the event.
type Publisher interface {
	Publish(channelID string, payload []byte)
}
