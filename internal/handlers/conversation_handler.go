package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/porchlight-app/porchlight-backend/internal/cache"
	"github.com/porchlight-app/porchlight-backend/internal/httpx"
	"github.com/porchlight-app/porchlight-backend/internal/service"
)

type ConversationHandler struct {
	conversationService *service.ConversationService
	summaryCache        *cache.SummaryCache
	notifier            *service.Notifier
}

func NewConversationHandler(conversationService *service.ConversationService, summaryCache *cache.SummaryCache, notifier *service.Notifier) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		summaryCache:        summaryCache,
		notifier:            notifier,
	}
}

func (h *ConversationHandler) GetConversations(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if cached, ok := h.summaryCache.Get(userID); ok {
		return c.JSON(fiber.Map{"conversations": cached, "count": len(cached)})
	}

	summaries, err := h.conversationService.Summaries(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_conversations_failed")
	}
	if len(summaries) > 0 {
		_ = h.summaryCache.Set(userID, summaries)
	}

	return c.JSON(fiber.Map{"conversations": summaries, "count": len(summaries)})
}

type createConversationInput struct {
	// PeerID starts (or resumes) a direct conversation.
	PeerID uint `json:"peer_id"`
	// Name and Participants create a group conversation instead.
	Name         string `json:"name"`
	Participants []uint `json:"participants"`
}

func (h *ConversationHandler) CreateConversation(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input createConversationInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.PeerID != 0 {
		conversation, err := h.conversationService.StartDirect(userID, input.PeerID)
		if err != nil {
			if errors.Is(err, service.ErrValidation) {
				return httpx.BadRequest(c, "invalid_conversation", err.Error())
			}
			return httpx.Internal(c, "create_conversation_failed")
		}
		// Every participant's cached list is stale now, not just the caller's.
		h.notifier.ConversationCreated(conversation)
		return c.Status(fiber.StatusCreated).JSON(conversation.ToSummary())
	}

	conversation, err := h.conversationService.CreateGroup(input.Name, append(input.Participants, userID))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return httpx.BadRequest(c, "invalid_conversation", err.Error())
		}
		return httpx.Internal(c, "create_conversation_failed")
	}
	h.notifier.ConversationCreated(conversation)
	return c.Status(fiber.StatusCreated).JSON(conversation.ToSummary())
}
