package service

import (
	"errors"
	"log"

	"github.com/porchlight-app/porchlight-backend/internal/models"
	"github.com/porchlight-app/porchlight-backend/internal/repository"
	"github.com/porchlight-app/porchlight-backend/internal/validation"
	"gorm.io/gorm"
)

type ConversationService struct {
	conversationRepo repository.ConversationRepositoryInterface
	messageRepo      repository.MessageRepositoryInterface
}

func NewConversationService(conversationRepo repository.ConversationRepositoryInterface, messageRepo repository.MessageRepositoryInterface) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

// StartDirect finds or lazily creates the single conversation between two
// users. Safe to call from both ends at once.
func (s *ConversationService) StartDirect(userA, userB uint) (*models.Conversation, error) {
	if userA == 0 || userB == 0 {
		return nil, validationErr("user ids are required")
	}
	if userA == userB {
		return nil, validationErr("cannot start a conversation with yourself")
	}

	conversation, err := s.conversationRepo.FindOrCreateDirect(userA, userB)
	if err != nil {
		return nil, storeErr(err)
	}
	return conversation, nil
}

// CreateGroup creates a named multi-party conversation. The participant set is
// deduplicated and must contain at least two users.
func (s *ConversationService) CreateGroup(name string, participants []uint) (*models.Conversation, error) {
	seen := make(map[uint]struct{}, len(participants))
	members := make([]models.ConversationParticipant, 0, len(participants))
	for _, id := range participants {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, models.ConversationParticipant{UserID: id})
	}
	if len(members) < 2 {
		return nil, validationErr("a conversation needs at least two participants")
	}

	conversation := &models.Conversation{
		// Capped to the name column width; an overlong name degrades to a
		// truncated one rather than a failed insert.
		Name:         validation.TrimAndLimit(name, validation.MaxConversationNameLength()),
		Participants: members,
	}
	if err := s.conversationRepo.Create(conversation); err != nil {
		return nil, storeErr(err)
	}
	return conversation, nil
}

func (s *ConversationService) Get(conversationID uint) (*models.Conversation, error) {
	conversation, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		return nil, storeErr(err)
	}
	return conversation, nil
}

func (s *ConversationService) IsParticipant(conversationID, userID uint) (bool, error) {
	ok, err := s.conversationRepo.IsParticipant(conversationID, userID)
	if err != nil {
		return false, storeErr(err)
	}
	return ok, nil
}

// Summaries returns the caller's conversations newest-activity first. The most
// recent message is resolved from the message store per conversation; when the
// lookup fails the denormalized fields already on the conversation row are
// used instead, so a stale summary beats no summary.
func (s *ConversationService) Summaries(userID uint) ([]models.ConversationSummary, error) {
	conversations, err := s.conversationRepo.ListForParticipant(userID)
	if err != nil {
		return nil, storeErr(err)
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for i := range conversations {
		summary := conversations[i].ToSummary()
		latest, err := s.messageRepo.LatestByConversation(conversations[i].ID)
		switch {
		case err == nil:
			summary.LastMessage = latest.Body
			summary.UpdatedAt = latest.CreatedAt
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No messages yet; the zero-value summary is correct.
		default:
			log.Printf("Summary fallback for conversation %d: %v", conversations[i].ID, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
