package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/OptionalMoth/Document-Chatbot/internal/adapter/ai"
	"github.com/OptionalMoth/Document-Chatbot/internal/adapter/extract"
	"github.com/OptionalMoth/Document-Chatbot/internal/adapter/store"
	"github.com/OptionalMoth/Document-Chatbot/internal/chunker"
	"github.com/OptionalMoth/Document-Chatbot/internal/handler"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
	"github.com/OptionalMoth/Document-Chatbot/internal/service"
	"github.com/OptionalMoth/Document-Chatbot/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting Document Chatbot",
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"ollama_embed", cfg.OllamaEmbedURL,
		"chat_enabled", cfg.ChatEnabled,
	)

	// ── Vector store ─────────────────────────────────────────────────────
	vectorStore, cleanup, err := newVectorStore(cfg)
	if err != nil {
		slog.Error("failed to initialize vector store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := vectorStore.EnsureCollection(ctx); err != nil {
		// The store may come up later; ingestion retries collection setup.
		slog.Warn("vector store not ready yet", "error", err)
	}
	cancel()

	// ── Adapters ─────────────────────────────────────────────────────────
	embedder := ai.NewOllamaEmbedder(ai.OllamaEndpointConfig{
		BaseURL: cfg.OllamaEmbedURL,
		Model:   cfg.OllamaEmbedModel,
		Token:   cfg.OllamaEmbedToken,
	}, cfg.EmbeddingDimension)

	var generator port.Generator
	if cfg.ChatEnabled {
		generator = ai.NewOllamaGenerator(ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaChatURL,
			Model:   cfg.OllamaChatModel,
			Token:   cfg.OllamaChatToken,
		})
	}

	extractor := extract.NewPlainText()

	// ── Services ─────────────────────────────────────────────────────────
	chunk := chunker.New(
		chunker.WithMaxSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
	)
	ingestService := service.NewIngestService(chunk, embedder, vectorStore)
	retriever := service.NewRetriever(vectorStore, cfg.TopK, cfg.ScoreThreshold)
	synthesizer := service.NewSynthesizer(generator, cfg.MaxContextChunks)
	queryService := service.NewQueryService(embedder, retriever, synthesizer, cfg.QueryTimeout)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	}))

	// ── Routes ───────────────────────────────────────────────────────────
	handler.NewUploadHandler(ingestService, extractor, cfg.IngestConcurrency).Register(app)
	handler.NewCMSHandler(ingestService).Register(app)
	handler.NewChatHandler(queryService).Register(app)
	handler.NewAdminHandler(vectorStore, cfg.AppName, cfg.QdrantCollection).Register(app)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// newVectorStore builds the configured vector store backend. The returned
// cleanup function is a no-op for backends without connections to close.
func newVectorStore(cfg *config.Config) (port.VectorStore, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := store.NewPostgresStore(cfg.DatabaseURL, cfg.EmbeddingDimension)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	case "memory":
		return store.NewMemoryStore(cfg.EmbeddingDimension), func() {}, nil
	default:
		qd := store.NewQdrantStore(store.QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
			Dimension:  cfg.EmbeddingDimension,
		})
		return qd, func() {}, nil
	}
}
