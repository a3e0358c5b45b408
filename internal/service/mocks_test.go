package service

import (
	"sort"
	"time"

	"github.com/porchlight-app/porchlight-backend/internal/models"
	"gorm.io/gorm"
)

// MockMessageRepository is an in-memory MessageRepositoryInterface for testing
type MockMessageRepository struct {
	messages  map[uint]*models.Message
	nextID    uint
	createErr error
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.Message),
		nextID:   1,
	}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	m.messages[message.ID] = message
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) ListByConversation(conversationID uint) ([]models.Message, error) {
	var result []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			result = append(result, *msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockMessageRepository) LatestByConversation(conversationID uint) (*models.Message, error) {
	var latest *models.Message
	for _, msg := range m.messages {
		if msg.ConversationID != conversationID {
			continue
		}
		if latest == nil || msg.CreatedAt.After(latest.CreatedAt) ||
			(msg.CreatedAt.Equal(latest.CreatedAt) && msg.ID > latest.ID) {
			latest = msg
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

// markReceipt mirrors the ON CONFLICT DO NOTHING upsert: a duplicate receipt
// is silently ignored.
func (m *MockMessageRepository) markReceipt(messageID, userID uint, kind models.ReceiptKind) error {
	msg, ok := m.messages[messageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, r := range msg.Receipts {
		if r.UserID == userID && r.Kind == kind {
			return nil
		}
	}
	msg.Receipts = append(msg.Receipts, models.MessageReceipt{
		MessageID: messageID,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *MockMessageRepository) MarkDelivered(messageID, userID uint) error {
	return m.markReceipt(messageID, userID, models.ReceiptDelivered)
}

func (m *MockMessageRepository) MarkSeen(messageID, userID uint) error {
	return m.markReceipt(messageID, userID, models.ReceiptSeen)
}

// MockConversationRepository is an in-memory ConversationRepositoryInterface.
// The direct-key map plays the role of the database unique index.
type MockConversationRepository struct {
	conversations map[uint]*models.Conversation
	byDirectKey   map[string]uint
	nextID        uint
	touchErr      error
	touchCount    int
}

func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{
		conversations: make(map[uint]*models.Conversation),
		byDirectKey:   make(map[string]uint),
		nextID:        1,
	}
}

func (m *MockConversationRepository) Create(conversation *models.Conversation) error {
	if conversation.DirectKey != nil {
		if _, exists := m.byDirectKey[*conversation.DirectKey]; exists {
			return gorm.ErrDuplicatedKey
		}
	}
	if conversation.ID == 0 {
		conversation.ID = m.nextID
		m.nextID++
	}
	now := time.Now()
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = now
		conversation.UpdatedAt = now
	}
	for i := range conversation.Participants {
		conversation.Participants[i].ConversationID = conversation.ID
	}
	m.conversations[conversation.ID] = conversation
	if conversation.DirectKey != nil {
		m.byDirectKey[*conversation.DirectKey] = conversation.ID
	}
	return nil
}

func (m *MockConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	if conv, ok := m.conversations[id]; ok {
		return conv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) FindDirect(userA, userB uint) (*models.Conversation, error) {
	if id, ok := m.byDirectKey[models.DirectKey(userA, userB)]; ok {
		return m.conversations[id], nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) FindOrCreateDirect(userA, userB uint) (*models.Conversation, error) {
	if conv, err := m.FindDirect(userA, userB); err == nil {
		return conv, nil
	}
	key := models.DirectKey(userA, userB)
	conv := &models.Conversation{
		DirectKey: &key,
		Participants: []models.ConversationParticipant{
			{UserID: userA},
			{UserID: userB},
		},
	}
	if err := m.Create(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (m *MockConversationRepository) Touch(conversationID uint, lastMessage string, at time.Time) error {
	m.touchCount++
	if m.touchErr != nil {
		return m.touchErr
	}
	conv, ok := m.conversations[conversationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conv.LastMessage = lastMessage
	conv.UpdatedAt = at
	return nil
}

func (m *MockConversationRepository) ListForParticipant(userID uint) ([]models.Conversation, error) {
	var result []models.Conversation
	for _, conv := range m.conversations {
		if conv.HasParticipant(userID) {
			result = append(result, *conv)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (m *MockConversationRepository) IsParticipant(conversationID, userID uint) (bool, error) {
	conv, ok := m.conversations[conversationID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	return conv.HasParticipant(userID), nil
}
