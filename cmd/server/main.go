package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/porchlight-app/porchlight-backend/internal/cache"
	"github.com/porchlight-app/porchlight-backend/internal/handlers"
	"github.com/porchlight-app/porchlight-backend/internal/handlers/ws"
	"github.com/porchlight-app/porchlight-backend/internal/middleware"
	"github.com/porchlight-app/porchlight-backend/internal/repository"
	"github.com/porchlight-app/porchlight-backend/internal/service"
	"github.com/porchlight-app/porchlight-backend/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	app := fiber.New(fiber.Config{
		AppName: "Porchlight Backend",
		// Image attachments up to 8MB + multipart overhead.
		BodyLimit: 10 * 1024 * 1024,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	summaryCache := cache.NewSummaryCache(redisCache)
	presenceCache := cache.NewPresenceCache(redisCache)

	// Initialize repositories
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize services
	conversationService := service.NewConversationService(conversationRepo, messageRepo)
	chatService := service.NewChatService(messageRepo, conversationRepo)

	hub := ws.NewHub()
	notifier := service.NewNotifier(hub, summaryCache)

	// Initialize S3/MinIO storage (best-effort; attachment endpoints return 503 if missing)
	var s3Store *storage.S3Storage
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else if st, err := storage.NewS3Storage(cfg); err != nil {
		log.Printf("WARNING: Failed to initialize S3 storage: %v", err)
	} else {
		s3Store = st
		log.Printf("S3 storage initialized successfully (bucket=%s)", cfg.Bucket)
	}

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(chatService, conversationService, notifier, hub, presenceCache)
	conversationHandler := handlers.NewConversationHandler(conversationService, summaryCache, notifier)
	messageHandler := handlers.NewMessageHandler(chatService, notifier)
	attachmentHandler := handlers.NewAttachmentHandler(s3Store)
	presenceHandler := handlers.NewPresenceHandler(presenceCache)

	// Protected REST surface
	api := app.Group("/api", middleware.OriginAllowed(), middleware.AuthRequired())
	api.Get("/conversations", conversationHandler.GetConversations)
	api.Post("/conversations", conversationHandler.CreateConversation)
	api.Get("/conversations/:id/messages", messageHandler.GetMessages)
	api.Post(
		"/conversations/:id/messages",
		limiter.New(limiter.Config{
			Max:        60,
			Expiration: time.Minute,
		}),
		messageHandler.SendMessage,
	)
	api.Post("/attachments", attachmentHandler.Upload)
	api.Get("/attachments/*", attachmentHandler.Get)
	api.Get("/presence", presenceHandler.GetOnlineUsers)
	api.Get("/presence/:id", presenceHandler.GetUserPresence)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Porchlight is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
