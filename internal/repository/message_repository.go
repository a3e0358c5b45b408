package repository

import (
	"time"

	"github.com/porchlight-app/porchlight-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Receipts").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) ListByConversation(conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Receipts").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) LatestByConversation(conversationID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Receipts").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// markReceipt upserts one receipt row. The DO NOTHING conflict clause makes
// repeated or concurrent acknowledgements for the same (message, user, kind)
// harmless, which is what lets reconnecting clients retry acks freely.
func (r *MessageRepository) markReceipt(messageID, userID uint, kind models.ReceiptKind) error {
	var count int64
	if err := r.db.Model(&models.Message{}).Where("id = ?", messageID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	receipt := models.MessageReceipt{
		MessageID: messageID,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipt).Error
}

func (r *MessageRepository) MarkDelivered(messageID, userID uint) error {
	return r.markReceipt(messageID, userID, models.ReceiptDelivered)
}

func (r *MessageRepository) MarkSeen(messageID, userID uint) error {
	return r.markReceipt(messageID, userID, models.ReceiptSeen)
}
