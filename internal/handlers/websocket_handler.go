package handlers

import (
	"log"
	"os"

	"github.com/gofiber/websocket/v2"
	"github.com/porchlight-app/porchlight-backend/internal/cache"
	"github.com/porchlight-app/porchlight-backend/internal/handlers/ws"
	"github.com/porchlight-app/porchlight-backend/internal/service"
)

// WebSocketHandler is the transport gateway: it accepts upgraded connections,
// registers them with the hub and runs the per-connection read loop that
// dispatches inbound events.
type WebSocketHandler struct {
	chatService         *service.ChatService
	conversationService *service.ConversationService
	notifier            *service.Notifier
	hub                 *ws.Hub
	presenceCache       *cache.PresenceCache
}

func NewWebSocketHandler(chatService *service.ChatService, conversationService *service.ConversationService, notifier *service.Notifier, hub *ws.Hub, presenceCache *cache.PresenceCache) *WebSocketHandler {
	return &WebSocketHandler{
		chatService:         chatService,
		conversationService: conversationService,
		notifier:            notifier,
		hub:                 hub,
		presenceCache:       presenceCache,
	}
}

// GetHub returns the hub instance (useful for publishing from REST handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)
	wsDebug := os.Getenv("WS_DEBUG") == "true"

	// Check if client supports gzip compression (via query param or header)
	supportsGzip := c.Query("gzip") == "1" || c.Headers("X-Supports-Gzip") == "1"

	client := ws.NewClient(userID, c, supportsGzip)
	client.Start()
	h.hub.Register(client)

	if err := h.presenceCache.SetOnline(userID); err != nil {
		log.Printf("Failed to mark user %d online: %v", userID, err)
	}

	defer func() {
		h.hub.Unregister(client)
		// A user on multiple devices stays online until the last one drops.
		if h.hub.UserConnections(userID) == 0 {
			if err := h.presenceCache.SetOffline(userID); err != nil {
				log.Printf("Failed to mark user %d offline: %v", userID, err)
			}
		}
	}()

	ctx := &ws.MessageContext{
		UserID:        userID,
		Client:        client,
		Hub:           h.hub,
		Chat:          h.chatService,
		Conversations: h.conversationService,
		Notifier:      h.notifier,
	}

	// Handle incoming messages
	for {
		messageType, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from user %d: %v", userID, err)
			break
		}

		if wsDebug {
			log.Printf("ws_recv user_id=%d frame_type=%d size=%d", userID, messageType, len(messageBytes))
		}

		// Binary frames are gzip-compressed envelopes
		if messageType == websocket.BinaryMessage {
			decompressed, err := ws.DecompressMessage(messageBytes)
			if err != nil {
				log.Printf("Error decompressing message from user %d: %v", userID, err)
				ws.SendError(client, "decompression_failed", "Failed to decompress message", err.Error())
				continue
			}
			messageBytes = decompressed
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			log.Printf("Error deserializing message from user %d: %v", userID, err)
			ws.SendError(client, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := msg.Process(ctx); err != nil {
			log.Printf("Error processing message %s from user %d: %v", msg.GetType(), userID, err)
			ws.SendError(client, "processing_failed", "Failed to process message", err.Error())
		}
	}
}
