package models

import (
	"fmt"
	"time"
)

// Conversation is a direct or group message thread. The participant set is
// fixed at creation time; there is no add/remove-participant operation.
type Conversation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	// Display name for groups. Empty means the client derives a name from
	// the participant list.
	Name string `gorm:"type:varchar(120);default:''" json:"name"`

	// DirectKey is "<lowID>:<highID>" for two-party conversations and null
	// for groups. The unique index is what guarantees a single conversation
	// per unordered user pair, even under concurrent creation.
	DirectKey *string `gorm:"type:varchar(64);uniqueIndex" json:"-"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants"`

	// Denormalized list-view field, refreshed on every new message together
	// with UpdatedAt. Read optimization only, never authoritative.
	LastMessage string `gorm:"type:text;default:''" json:"last_message"`
}

type ConversationParticipant struct {
	ConversationID uint `gorm:"primarykey;autoIncrement:false" json:"conversation_id"`
	UserID         uint `gorm:"primarykey;autoIncrement:false;index" json:"user_id"`
}

// DirectKey builds the canonical key for a two-party conversation. The pair is
// unordered, so the smaller id always comes first.
func DirectKey(userA, userB uint) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%d:%d", userA, userB)
}

func (c *Conversation) ParticipantIDs() []uint {
	ids := make([]uint, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

func (c *Conversation) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// ConversationSummary is the lightweight view pushed to user channels and
// returned by the conversation list endpoint.
type ConversationSummary struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Participants []uint    `json:"participants"`
	LastMessage  string    `json:"last_message"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Conversation) ToSummary() ConversationSummary {
	return ConversationSummary{
		ID:           c.ID,
		Name:         c.Name,
		Participants: c.ParticipantIDs(),
		LastMessage:  c.LastMessage,
		UpdatedAt:    c.UpdatedAt,
	}
}
