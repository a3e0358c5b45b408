package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/porchlight-app/porchlight-backend/internal/cache"
	"github.com/porchlight-app/porchlight-backend/internal/httpx"
)

// PresenceHandler exposes the advisory online-user set. Without Redis the
// answers degrade to "nobody is online" rather than erroring.
type PresenceHandler struct {
	presenceCache *cache.PresenceCache
}

func NewPresenceHandler(presenceCache *cache.PresenceCache) *PresenceHandler {
	return &PresenceHandler{presenceCache: presenceCache}
}

func (h *PresenceHandler) GetOnlineUsers(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	users, err := h.presenceCache.OnlineUsers()
	if err != nil {
		return httpx.Internal(c, "fetch_presence_failed")
	}
	if users == nil {
		users = []uint{}
	}
	return c.JSON(fiber.Map{"online": users, "count": len(users)})
}

func (h *PresenceHandler) GetUserPresence(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return httpx.BadRequest(c, "invalid_user", "Invalid user id")
	}

	return c.JSON(fiber.Map{
		"user_id": uint(id),
		"online":  h.presenceCache.IsOnline(uint(id)),
	})
}
