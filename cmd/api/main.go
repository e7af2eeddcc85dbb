// @title QuizGen API
// @version 1.0
// @description Generates multiple choice quizzes from a topic, a document or an image using a hosted language model.
// @contact.name API Support
// @license.name MIT
// @host localhost:8000
// @BasePath /
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizgen/internal/adapter"
	"quizgen/internal/adapter/extractor"
	"quizgen/internal/adapter/llm"
	"quizgen/internal/cache"
	"quizgen/internal/config"
	"quizgen/internal/domain"
	"quizgen/internal/handler"
	"quizgen/internal/logger"
	"quizgen/internal/middleware"
	"quizgen/internal/service"

	_ "quizgen/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Model endpoint
	chatModel, err := llm.NewChatModel(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create chat model", zap.Error(err))
	}
	appLogger.Info("Chat model initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		zap.Duration("timeout", cfg.LLM.Timeout),
	)

	// Text extraction, optionally behind the Redis cache
	var contextExtractor service.ContextExtractor = extractor.NewRegistry()
	var cacheAdapter domain.Cache
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			appLogger.Warn("Extraction cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
			contextExtractor = service.NewCachedExtractor(contextExtractor, cacheAdapter, cfg.Extraction.CacheTTL)
			appLogger.Info("Extraction cache enabled", zap.String("address", cfg.Redis.Address))
		}
	}

	// Initialize services
	assembler := service.NewPromptAssembler(contextExtractor, cfg.Extraction.MaxChars)
	quizService := service.NewQuizService(assembler, chatModel)

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(quizService)
	healthHandler := handler.NewHealthHandler(cacheAdapter)

	app := fiber.New(fiber.Config{
		AppName:      cfg.LLM.Title,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept," + middleware.RequestIDHeader,
		ExposeHeaders: middleware.RequestIDHeader,
		MaxAge:        300,
	}))

	handler.RegisterRoutes(app, quizHandler, healthHandler)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	appLogger.Info("Server exited gracefully")
}
