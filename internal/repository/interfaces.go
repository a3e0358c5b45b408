package repository

import (
	"time"

	"github.com/porchlight-app/porchlight-backend/internal/models"
)

// ConversationRepositoryInterface defines the contract for conversation storage
type ConversationRepositoryInterface interface {
	Create(conversation *models.Conversation) error
	FindByID(id uint) (*models.Conversation, error)
	FindDirect(userA, userB uint) (*models.Conversation, error)
	FindOrCreateDirect(userA, userB uint) (*models.Conversation, error)
	Touch(conversationID uint, lastMessage string, at time.Time) error
	ListForParticipant(userID uint) ([]models.Conversation, error)
	IsParticipant(conversationID, userID uint) (bool, error)
}

// MessageRepositoryInterface defines the contract for message storage
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	ListByConversation(conversationID uint) ([]models.Message, error)
	LatestByConversation(conversationID uint) (*models.Message, error)
	MarkDelivered(messageID, userID uint) error
	MarkSeen(messageID, userID uint) error
}
