package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/sinaulab/api/internal/client"
	"github.com/sinaulab/api/internal/config"
	"github.com/sinaulab/api/internal/handler"
	"github.com/sinaulab/api/internal/logger"
	"github.com/sinaulab/api/internal/middleware"
	"github.com/sinaulab/api/internal/repository"
	"github.com/sinaulab/api/internal/service"
	"github.com/sinaulab/api/internal/worker"
	ws "github.com/sinaulab/api/internal/websocket"
)

// @title          Sinau API
// @version        1.0
// @description    Backend API for Sinau — shared notes, photos and AI-generated music.
// @host           localhost:8000
// @BasePath       /
// @schemes        http https
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:      cfg.Server.LogLevel,
		OutputPath: cfg.Server.LogFile,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, cache and rate limits disabled", logger.Err(err))
		redisClient = nil
	}

	// Initialize MySQL (optional - falls back to in-memory stores)
	var noteRepo repository.NoteRepository
	var callbackRepo repository.CallbackRecordRepository
	dbConnected := false
	if cfg.MySQL.Host != "" {
		db, err := repository.Connect(&cfg.MySQL)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		noteRepo = repository.NewGormNoteRepository(db)
		callbackRepo = repository.NewGormCallbackRecordRepository(db)
		dbConnected = true
	} else {
		logger.Warn("MYSQL_HOST not set, using in-memory stores")
		noteRepo = repository.NewMemoryNoteRepository()
		callbackRepo = repository.NewMemoryCallbackRecordRepository()
	}

	// Initialize Asynq client
	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize external clients
	sunoClient := client.NewSunoClient(&cfg.Suno, cfg.Server.CallbackURL())

	// Initialize storage client (optional - continues if not configured)
	var storageClient client.StorageClient
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		s3Client, err := client.NewS3Client(&cfg.Storage)
		if err != nil {
			logger.Warn("storage client not initialized", logger.Err(err))
		} else {
			storageClient = s3Client
		}
	} else {
		logger.Info("object storage not configured, using mock URLs")
	}

	// Initialize services
	musicService := service.NewMusicService(sunoClient)
	galleryService := service.NewGalleryService(callbackRepo, redisClient)
	callbackService := service.NewCallbackService(callbackRepo, hub, asynqClient, galleryService)
	noteService := service.NewNoteService(noteRepo, storageClient, hub)

	// Initialize handlers
	musicHandler := handler.NewMusicHandler(musicService, validate)
	callbackHandler := handler.NewCallbackHandler(callbackService)
	galleryHandler := handler.NewGalleryHandler(galleryService)
	noteHandler := handler.NewNoteHandler(noteService)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    50 * 1024 * 1024, // 50MB
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
	}
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"suno":    sunoClient.IsConfigured(),
				"storage": storageClient != nil,
				"db":      dbConnected,
				"redis":   redisClient != nil,
			},
		})
	})

	// Callback endpoint lives outside /api: the external API delivers
	// here and must never be rate limited or rejected.
	app.Post("/sunoCallback", callbackHandler.Receive)

	// API routes
	api := app.Group("/api")

	// Music routes
	music := api.Group("/music")
	music.Post("/generate", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerMin), musicHandler.Generate)
	music.Get("/status/:taskId?", musicHandler.Status)

	// Gallery routes
	api.Get("/gallery", galleryHandler.List)

	// Note routes
	api.Post("/notes", rateLimiter.NoteLimit(cfg.RateLimit.NotesPerMin), noteHandler.Create)
	api.Get("/notes", noteHandler.List)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/feed", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, ws.TopicFeed)
	}))

	// Start Asynq worker server
	if redisClient != nil {
		go startWorkerServer(cfg, storageClient)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server shutdown error", logger.Err(err))
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	logger.Info("server starting", logger.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, storage client.StorageClient) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"archive": 5,
			},
			LogLevel: asynqLogLevel,
		},
	)

	archiveWorker := worker.NewArchiveWorker(storage)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeArchive, archiveWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		logger.Error("asynq worker error", logger.Err(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
