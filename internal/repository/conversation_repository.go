package repository

import (
	"errors"
	"time"

	"github.com/porchlight-app/porchlight-backend/internal/models"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

func (r *ConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Preload("Participants").First(&conversation, id).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepository) FindDirect(userA, userB uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Preload("Participants").
		Where("direct_key = ?", models.DirectKey(userA, userB)).
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindOrCreateDirect resolves the single conversation for an unordered user
// pair. Two clients starting the same chat concurrently both race the insert;
// the loser hits the direct_key unique index and re-reads the winner's row.
func (r *ConversationRepository) FindOrCreateDirect(userA, userB uint) (*models.Conversation, error) {
	conversation, err := r.FindDirect(userA, userB)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	key := models.DirectKey(userA, userB)
	conversation = &models.Conversation{
		DirectKey: &key,
		Participants: []models.ConversationParticipant{
			{UserID: userA},
			{UserID: userB},
		},
	}
	if err := r.db.Create(conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.FindDirect(userA, userB)
		}
		return nil, err
	}
	return conversation, nil
}

// Touch refreshes the denormalized summary fields. Callers treat failures as
// staleness, not as message-delivery failures.
func (r *ConversationRepository) Touch(conversationID uint, lastMessage string, at time.Time) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message": lastMessage,
			"updated_at":   at,
		}).Error
}

func (r *ConversationRepository) ListForParticipant(userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.Preload("Participants").
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

func (r *ConversationRepository) IsParticipant(conversationID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}
