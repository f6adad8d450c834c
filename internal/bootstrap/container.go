package bootstrap

import (
	"log"
	"time"

	"petsc-chat-be/internal/config"
	"petsc-chat-be/internal/controller"
	"petsc-chat-be/internal/pkg/logger"
	"petsc-chat-be/internal/repository/contract"
	memoryrepo "petsc-chat-be/internal/repository/memory"
	redisrepo "petsc-chat-be/internal/repository/redis"
	"petsc-chat-be/internal/service"
	"petsc-chat-be/pkg/embedding"
	"petsc-chat-be/pkg/ingest"
	"petsc-chat-be/pkg/llm/factory"
	"petsc-chat-be/pkg/rag/prompt"
	"petsc-chat-be/pkg/rag/retrieval"
	"petsc-chat-be/pkg/vectorstore"
	memorystore "petsc-chat-be/pkg/vectorstore/memory"
	"petsc-chat-be/pkg/vectorstore/pgvector"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	IndexController controller.IIndexController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Logger (Exposed for main.go to Sync on shutdown)
	Logger logger.ILogger
}

// NewContainer wires the full dependency graph. db may be nil when the
// memory index backend is configured; the pgvector backend requires it.
func NewContainer(cfg *config.Config, db *gorm.DB) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingBaseURL,
		cfg.Ai.APIKey,
		cfg.Ai.EmbeddingModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.APIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Retrieval Index
	var chunkStore vectorstore.Store
	switch cfg.Index.Store {
	case "pgvector":
		if db == nil {
			log.Fatalf("[FATAL] VECTOR_STORE=pgvector requires DB_CONNECTION_STRING")
		}
		chunkStore, err = pgvector.New(db)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize pgvector store: %v", err)
		}
		log.Printf("[INFO] Using Vector Store: PGVECTOR")
	default:
		chunkStore, err = memorystore.Open(cfg.Index.Dir, cfg.Index.Collection)
		if err != nil {
			log.Fatalf("[FATAL] Failed to open index %q: %v", cfg.Index.Collection, err)
		}
		log.Printf("[INFO] Using Vector Store: MEMORY (%s/%s.gob)", cfg.Index.Dir, cfg.Index.Collection)
	}

	// 5. Session Storage
	sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	var sessionRepo contract.SessionRepository
	if cfg.Session.Store == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Fatalf("[FATAL] Invalid REDIS_URL: %v", err)
		}
		sessionRepo = redisrepo.NewSessionRepository(redis.NewClient(opt), sessionTTL)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionRepo = memoryrepo.NewSessionRepository(sessionTTL)
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// 6. Services
	retriever := retrieval.NewRetriever(embeddingProvider, chunkStore, cfg.Chat.TopK, sysLogger)
	promptBuilder := prompt.NewBuilder(cfg.Chat.SystemPrompt, cfg.Chat.MaxTurns)

	chatService := service.NewChatService(
		sessionRepo,
		retriever,
		promptBuilder,
		llmProvider,
		cfg.Chat.MaxTokens,
		cfg.Chat.Temperature,
		sysLogger,
	)

	pipeline := ingest.NewPipeline(chunkStore, embeddingProvider,
		ingest.WithChunking(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap),
	)

	publisherService := service.NewPublisherService(cfg.App.ReindexTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.ReindexTopic, pipeline, sysLogger)

	// 7. Controllers
	chatController := controller.NewChatController(chatService)
	indexController := controller.NewIndexController(publisherService, cfg.Index.DocsDir)

	return &Container{
		ChatController:  chatController,
		IndexController: indexController,
		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
