package ws

import (
	"errors"
	"log"

	"github.com/porchlight-app/porchlight-backend/internal/service"
)

// MessageJoinUser subscribes the connection to the caller's user channel and
// replays the current conversation summaries to it — to this connection only,
// never broadcast.
type MessageJoinUser struct {
	UserID uint `json:"user_id"`
}

func (msg *MessageJoinUser) GetType() string {
	return "joinUserRoom"
}

func (msg *MessageJoinUser) Process(ctx *MessageContext) error {
	// The channel is always the authenticated user's own; the payload id is
	// accepted only when it matches.
	if msg.UserID != 0 && msg.UserID != ctx.UserID {
		return SendError(ctx.Client, "user_mismatch", "Cannot join another user's room", "")
	}

	ctx.Hub.Subscribe(ctx.Client, service.UserChannel(ctx.UserID))

	summaries, err := ctx.Conversations.Summaries(ctx.UserID)
	if err != nil {
		// The subscription stands; the client falls back to the REST list.
		log.Printf("Backlog push failed for user %d: %v", ctx.UserID, err)
		return nil
	}
	for _, summary := range summaries {
		payload, err := service.NewEvent(service.EventConversationUpdated, summary)
		if err != nil {
			log.Printf("Error encoding backlog summary for conversation %d: %v", summary.ID, err)
			continue
		}
		if err := ctx.Client.Send(payload); err != nil {
			return err
		}
	}
	return nil
}

// MessageJoinConversation subscribes the connection to a conversation channel.
// Only participants may join.
type MessageJoinConversation struct {
	ConversationID uint `json:"conversation_id"`
}

func (msg *MessageJoinConversation) GetType() string {
	return "joinConversation"
}

func (msg *MessageJoinConversation) Process(ctx *MessageContext) error {
	if msg.ConversationID == 0 {
		return SendError(ctx.Client, "missing_conversation", "conversation_id is required", "")
	}

	ok, err := ctx.Conversations.IsParticipant(msg.ConversationID, ctx.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return SendError(ctx.Client, "unknown_conversation", "Conversation does not exist", "")
		}
		return err
	}
	if !ok {
		return SendError(ctx.Client, "not_participant", "Not a participant of this conversation", "")
	}

	ctx.Hub.Subscribe(ctx.Client, service.ConversationChannel(msg.ConversationID))
	return nil
}
