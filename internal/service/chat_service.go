package service

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/porchlight-app/porchlight-backend/internal/models"
	"github.com/porchlight-app/porchlight-backend/internal/repository"
	"gorm.io/gorm"
)

// ChatService owns message creation and per-recipient receipt tracking.
type ChatService struct {
	messageRepo      repository.MessageRepositoryInterface
	conversationRepo repository.ConversationRepositoryInterface
}

func NewChatService(messageRepo repository.MessageRepositoryInterface, conversationRepo repository.ConversationRepositoryInterface) *ChatService {
	return &ChatService{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
	}
}

// SendMessage validates, persists and returns the new message together with
// its conversation (participants loaded, summary fields refreshed) so the
// caller can fan out without a second read. A store failure here is fatal to
// the send and must reach the sender; only the summary touch is best-effort.
func (s *ChatService) SendMessage(senderID, conversationID uint, body string, messageType models.MessageType) (*models.Message, *models.Conversation, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil, validationErr("message body is empty")
	}
	if messageType == "" {
		messageType = models.TextMessage
	}

	conversation, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, validationErr("conversation %d does not exist", conversationID)
		}
		return nil, nil, storeErr(err)
	}
	if !conversation.HasParticipant(senderID) {
		return nil, nil, validationErr("sender is not a participant of conversation %d", conversationID)
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		MessageType:    messageType,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, nil, storeErr(err)
	}

	// Summary refresh is off the critical path: a failure leaves the
	// conversation list stale until the next write, nothing more.
	if err := s.conversationRepo.Touch(conversationID, message.Body, message.CreatedAt); err != nil {
		log.Printf("Touch failed for conversation %d: %v", conversationID, err)
	}
	conversation.LastMessage = message.Body
	conversation.UpdatedAt = message.CreatedAt

	return message, conversation, nil
}

// History returns a conversation's messages oldest first. The caller must be a
// participant.
func (s *ChatService) History(conversationID, userID uint) ([]models.Message, error) {
	ok, err := s.conversationRepo.IsParticipant(conversationID, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ok {
		return nil, validationErr("not a participant of conversation %d", conversationID)
	}
	messages, err := s.messageRepo.ListByConversation(conversationID)
	if err != nil {
		return nil, storeErr(err)
	}
	return messages, nil
}

// MarkDelivered records a delivery acknowledgement. Idempotent: repeated acks
// for the same (message, user) pair change nothing.
func (s *ChatService) MarkDelivered(messageID, userID uint) (*models.Message, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, storeErr(err)
	}
	if err := s.messageRepo.MarkDelivered(messageID, userID); err != nil {
		return nil, storeErr(err)
	}
	return message, nil
}

// MarkSeen records a seen acknowledgement. Seen implies delivered, so the
// delivered receipt is written first; both writes are idempotent.
func (s *ChatService) MarkSeen(messageID, userID uint) (*models.Message, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, storeErr(err)
	}
	if err := s.messageRepo.MarkDelivered(messageID, userID); err != nil {
		return nil, storeErr(err)
	}
	if err := s.messageRepo.MarkSeen(messageID, userID); err != nil {
		return nil, storeErr(err)
	}
	return message, nil
}
