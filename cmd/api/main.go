package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/swiftbeard/ragserver/internal/api/handlers"
	"github.com/swiftbeard/ragserver/internal/cache/redis"
	"github.com/swiftbeard/ragserver/internal/chunker"
	"github.com/swiftbeard/ragserver/internal/documents"
	"github.com/swiftbeard/ragserver/internal/history"
	"github.com/swiftbeard/ragserver/internal/ingestion"
	"github.com/swiftbeard/ragserver/internal/llm"
	"github.com/swiftbeard/ragserver/internal/metrics"
	"github.com/swiftbeard/ragserver/internal/middleware/ratelimit"
	"github.com/swiftbeard/ragserver/internal/middleware/security"
	"github.com/swiftbeard/ragserver/internal/middleware/validation"
	"github.com/swiftbeard/ragserver/internal/parser"
	"github.com/swiftbeard/ragserver/internal/prompt"
	"github.com/swiftbeard/ragserver/internal/query"
	"github.com/swiftbeard/ragserver/internal/storage/sqlite"
	"github.com/swiftbeard/ragserver/internal/vector/milvus"
	"github.com/swiftbeard/ragserver/pkg/config"
	appLogger "github.com/swiftbeard/ragserver/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting RAG Document Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	var embeddingCache milvus.EmbeddingCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		embeddingCache = redisClient
	}

	milvusClient, err := milvus.NewClient(
		cfg.Milvus.Endpoint,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
		llmClient,
		embeddingCache,
	)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	err = milvusClient.CreateCollection(context.Background())
	if err != nil {
		appLogger.Fatal("Failed to create collection", zap.Error(err))
	}

	promptTemplate, err := prompt.Load(cfg.Prompt.TemplatePath)
	if err != nil {
		appLogger.Fatal("Failed to load prompt template", zap.Error(err))
	}

	docParser := parser.New()
	docChunker := chunker.New(cfg.Chunker.MaxChunkChars)

	processor := ingestion.NewProcessor(docParser, docChunker, sqliteClient, milvusClient)
	queryEngine := query.NewEngine(milvusClient, llmClient, sqliteClient, promptTemplate)
	documentService := documents.NewService(sqliteClient)
	historyService := history.NewService(sqliteClient)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(security.Headers())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(limiter.Middleware())
	app.Use(validation.RequestValidator())

	queryHandler := handlers.NewQueryHandler(queryEngine)
	documentHandler := handlers.NewDocumentHandler(processor, documentService)
	historyHandler := handlers.NewHistoryHandler(historyService)

	api := app.Group("/api/v1")

	api.Post("/query", queryHandler.HandleQuery)

	api.Post("/documents", documentHandler.UploadDocument)
	api.Get("/documents", documentHandler.ListDocuments)
	api.Get("/documents/count", documentHandler.CountDocuments)
	api.Get("/documents/:id", documentHandler.GetDocument)
	api.Delete("/documents/:id", documentHandler.DeleteDocument)

	api.Get("/history", historyHandler.ListHistory)
	api.Get("/history/recent", historyHandler.ListRecentHistory)
	api.Get("/history/count", historyHandler.CountHistory)
	api.Get("/history/:id", historyHandler.GetHistory)
	api.Delete("/history/:id", historyHandler.DeleteHistory)
	api.Delete("/history", historyHandler.DeleteAllHistory)

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
