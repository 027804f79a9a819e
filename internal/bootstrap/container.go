package bootstrap

import (
	"context"
	"log"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/handler"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/internal/websocket"
	"ai-docchat-be/pkg/chatbot"
	"ai-docchat-be/pkg/convcache"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm/factory"
	"ai-docchat-be/pkg/parser"
	"ai-docchat-be/pkg/qna"
	"ai-docchat-be/pkg/rag"
	"ai-docchat-be/pkg/storage"

	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	QnAController      controller.IQnAController

	// Background Services (Exposed for main.go to run)
	IngestionService   service.IIngestionService
	ChatResponseWorker *handler.ChatResponseWorker

	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus (in-process, for the ingestion pipeline)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS (cross-process bus for the chat relay)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis (conversation cache + websocket fanout)
	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.Redis.URL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// MinIO (document blobs)
	objectStorage, err := storage.NewMinioStorage(
		context.Background(),
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.UseSSL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize object storage: %v", err)
	}

	parserRegistry := parser.NewRegistry(
		parser.NewPlainTextParser(),
		parser.NewMarkdownParser(),
	)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_ws.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Domain Assembly
	// Retrieval engine: vectorization strategy is configurable, the rest of
	// the pipeline is fixed.
	var vectorizer rag.QueryVectorizer
	if cfg.Rag.Vectorizer == "hyde" {
		vectorizer = rag.NewHyDEVectorizer(llmProvider, embeddingProvider)
		log.Printf("[INFO] Using Vectorizer: HYDE")
	} else {
		vectorizer = rag.NewDirectVectorizer(embeddingProvider)
		log.Printf("[INFO] Using Vectorizer: DIRECT")
	}
	ragEngine := rag.NewEngine(
		vectorizer,
		service.NewChunkRetriever(uowFactory),
		llmProvider,
		rag.Config{
			TopK:                 cfg.Rag.TopK,
			ConfidenceThreshold:  cfg.Rag.ConfidenceThreshold,
			DefaultAnswer:        cfg.Rag.DefaultAnswer,
			MaxHeaderBufferBytes: cfg.Rag.MaxHeaderBufferBytes,
		},
	)

	qnaIndex := qna.NewService(
		service.NewQnAEntryStore(uowFactory),
		embeddingProvider,
		qna.Config{
			MatchThreshold: cfg.Qna.MatchThreshold,
			EmbedWorkers:   cfg.Qna.EmbedWorkers,
		},
	)

	conversationCache := convcache.NewRedisCache(rdb, cfg.Redis.SessionTTL)
	bot := chatbot.NewChatbot(
		conversationCache,
		service.NewChatLogStore(uowFactory),
		qnaIndex,
		ragEngine,
		sysLogger,
	)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	ingestionService := service.NewIngestionService(
		pubSub,
		cfg.Keys.IngestTopic,
		uowFactory,
		objectStorage,
		parserRegistry,
		embeddingProvider,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
	)

	documentService := service.NewDocumentService(uowFactory, objectStorage, parserRegistry, publisherService, sysLogger)
	qnaService := service.NewQnAService(uowFactory, qnaIndex, objectStorage, sysLogger)
	chatService := service.NewChatService(uowFactory, bot, natsPub, cfg.Rag.PastMessagesLimit, sysLogger)

	// Chat relay worker (consumes prompt events, streams answers back out)
	responseWorker := handler.NewChatResponseWorker(natsSub, natsPub, bot, wsHub, cfg.Rag.PastMessagesLimit, sysLogger)
	if natsSub != nil {
		go responseWorker.Start()
	}

	// 7. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService, wsHub, sysLogger),
		DocumentController: controller.NewDocumentController(documentService),
		QnAController:      controller.NewQnAController(qnaService),

		IngestionService:   ingestionService,
		ChatResponseWorker: responseWorker,
		WebSocketHub:       wsHub,
	}
}
