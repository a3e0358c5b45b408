package ws

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/porchlight-app/porchlight-backend/internal/service"
)

// MessageContext provides all dependencies needed for message processing
type MessageContext struct {
	UserID        uint
	Client        *Client
	Hub           *Hub
	Chat          *service.ChatService
	Conversations *service.ConversationService
	Notifier      *service.Notifier
}

// Message interface for all inbound WebSocket message types
type Message interface {
	GetType() string
	Process(ctx *MessageContext) error
}

// SerializedMessage is the wire format wrapper
type SerializedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorResponse is sent when message processing fails
type ErrorResponse struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func CreateMessage(msgType string, registry map[string]reflect.Type) (Message, error) {
	t, ok := registry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}
	return reflect.New(t).Interface().(Message), nil
}

// SendError pushes an error envelope to a single client. Errors are never
// broadcast; only the originating connection sees them.
func SendError(client *Client, code, message, details string) error {
	payload, err := json.Marshal(ErrorResponse{
		Type:    "error",
		Error:   message,
		Code:    code,
		Details: details,
	})
	if err != nil {
		return err
	}
	return client.Send(payload)
}
