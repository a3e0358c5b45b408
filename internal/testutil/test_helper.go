package testutil

import (
	"testing"
	"time"

	"github.com/porchlight-app/porchlight-backend/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestConversation builds a direct conversation between two users.
func (h *TestHelper) CreateTestConversation(id, userA, userB uint) *models.Conversation {
	if id == 0 {
		id = 1
	}
	key := models.DirectKey(userA, userB)
	return &models.Conversation{
		ID:        id,
		DirectKey: &key,
		Participants: []models.ConversationParticipant{
			{ConversationID: id, UserID: userA},
			{ConversationID: id, UserID: userB},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CreateTestMessage builds a message with default values.
func (h *TestHelper) CreateTestMessage(id, conversationID, senderID uint, body string) *models.Message {
	if id == 0 {
		id = 1
	}
	if body == "" {
		body = "Test message"
	}
	return &models.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		MessageType:    models.TextMessage,
		CreatedAt:      time.Now(),
	}
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}
