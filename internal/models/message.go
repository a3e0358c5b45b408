package models

import (
	"time"
)

type MessageType string

const (
	TextMessage  MessageType = "text"
	ImageMessage MessageType = "image"
)

type ReceiptKind string

const (
	ReceiptDelivered ReceiptKind = "delivered"
	ReceiptSeen      ReceiptKind = "seen"
)

// Message is append-mostly: body, sender and conversation never change after
// creation, and the only mutation is adding receipt rows.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	ConversationID uint `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint `gorm:"not null;index" json:"sender_id"`

	Body        string      `gorm:"type:text;not null" json:"body"`
	MessageType MessageType `gorm:"type:varchar(20);default:'text'" json:"message_type"`

	Receipts []MessageReceipt `gorm:"foreignKey:MessageID" json:"-"`
}

// MessageReceipt records one recipient's delivery or seen acknowledgement.
// The composite primary key makes a receipt write a natural set-union: an
// insert with ON CONFLICT DO NOTHING is a no-op for a receipt that already
// exists, and rows are never deleted, so both sets only ever grow.
type MessageReceipt struct {
	MessageID uint        `gorm:"primarykey;autoIncrement:false" json:"message_id"`
	UserID    uint        `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	Kind      ReceiptKind `gorm:"primarykey;type:varchar(12)" json:"kind"`
	CreatedAt time.Time   `json:"created_at"`
}

func (m *Message) receiptsOf(kind ReceiptKind) []uint {
	ids := make([]uint, 0, len(m.Receipts))
	for _, r := range m.Receipts {
		if r.Kind == kind {
			ids = append(ids, r.UserID)
		}
	}
	return ids
}

// DeliveredTo returns the ids of users who acknowledged delivery.
func (m *Message) DeliveredTo() []uint {
	return m.receiptsOf(ReceiptDelivered)
}

// SeenBy returns the ids of users who acknowledged seeing the message.
func (m *Message) SeenBy() []uint {
	return m.receiptsOf(ReceiptSeen)
}

type MessageResponse struct {
	ID             uint        `json:"id"`
	ConversationID uint        `json:"conversation_id"`
	SenderID       uint        `json:"sender_id"`
	Body           string      `json:"body"`
	MessageType    MessageType `json:"message_type"`
	DeliveredTo    []uint      `json:"delivered_to"`
	SeenBy         []uint      `json:"seen_by"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		MessageType:    m.MessageType,
		DeliveredTo:    m.DeliveredTo(),
		SeenBy:         m.SeenBy(),
		CreatedAt:      m.CreatedAt,
	}
}
