package bootstrap

import (
	"context"
	"errors"
	"time"

	"edu-assistant-be/internal/config"
	"edu-assistant-be/internal/controller"
	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/internal/pkg/serverutils"
	"edu-assistant-be/internal/repository/unitofwork"
	"edu-assistant-be/internal/service"
	"edu-assistant-be/pkg/embedding"
	"edu-assistant-be/pkg/llm/factory"
	"edu-assistant-be/pkg/metrics"
	pktNats "edu-assistant-be/pkg/nats"
	"edu-assistant-be/pkg/rag/capability"
	"edu-assistant-be/pkg/rag/history"
	"edu-assistant-be/pkg/rag/keyword"
	"edu-assistant-be/pkg/rag/lexical"
	"edu-assistant-be/pkg/rag/response"
	"edu-assistant-be/pkg/rag/search"
	"edu-assistant-be/pkg/rag/telemetry"
	"edu-assistant-be/pkg/rag/vector"
	"edu-assistant-be/pkg/resilience"
	"edu-assistant-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ContentController controller.IContentController
	ChatController    controller.IChatController
	SearchController  controller.ISearchController
	SystemController  controller.ISystemController

	AuthMiddleware fiber.Handler
	Metrics        *metrics.RetrievalMetrics
	Logger         logger.ILogger

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	IndexingService service.IIndexingService
	ActivityService *service.ActivityService

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	m := metrics.NewRetrievalMetrics()
	c.Metrics = m
	jobStats := service.NewJobStats(m)
	health := service.NewHealthService(jobStats)

	health.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	// 2. Debug cache: redis first, in-process fallback
	var primaryCache telemetry.Cache
	if redisClient := newRedisClient(cfg.App.RedisURL, sysLogger); redisClient != nil {
		primaryCache = telemetry.NewRedisCache(redisClient)
		c.closers = append(c.closers, func() { _ = redisClient.Close() })
		health.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	debugStore := telemetry.NewStore(primaryCache, telemetry.NewMemoryCache(), cfg.Retrieval.DebugTTL, sysLogger, m)

	// 3. Event Bus (NATS JetStream for domain events)
	var eventPublisher pktNats.EventPublisher = pktNats.NopPublisher{}
	if cfg.App.NatsURL == "" {
		sysLogger.Info("BOOTSTRAP", "NATS_URL empty, domain events disabled", nil)
	} else if natsPublisher, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger); err != nil {
		sysLogger.Warn("BOOTSTRAP", "NATS unavailable, domain events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPublisher
		c.closers = append(c.closers, natsPublisher.Close)
		health.Register("nats", func(ctx context.Context) error {
			if !natsPublisher.Connected() {
				return errors.New("not connected")
			}
			return nil
		})

		if natsSubscriber, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger); err == nil {
			c.ActivityService = service.NewActivityService(natsSubscriber, logger.NewIsolatedLogger(cfg.App.ActivityLogPath), m)
			c.closers = append(c.closers, natsSubscriber.Close)
		}
	}
	emitter := service.NewEventEmitter(eventPublisher, sysLogger, m)

	// 4. Job queue (in-process watermill)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		logger.NewWatermillAdapter(sysLogger, cfg.App.Environment != "production"),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	publisherService := service.NewPublisherService(pubSub, jobStats, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, jobStats, sysLogger)

	// 5. AI capabilities
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.Resilience.RetryMaxAttempts,
		RetryInitialBackoff: cfg.Resilience.RetryInitialBackoff,
		RetryMaxBackoff:     cfg.Resilience.RetryMaxBackoff,
		BreakerEnabled:      cfg.Resilience.BreakerEnabled,
		BreakerMinRequests:  uint32(cfg.Resilience.BreakerMinRequests),
		BreakerFailureRatio: cfg.Resilience.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.Resilience.BreakerOpenTimeout,
	}, sysLogger)

	var opts []capability.Option

	if embedder := newEmbedder(cfg.Ai); embedder != nil {
		opts = append(opts, capability.WithEmbedder(embedder, embedder.ModelName()))
	}

	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:      cfg.Ai.LLMProvider,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
		OpenAIAPIKey:  cfg.Ai.OpenAIAPIKey,
	})
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "LLM provider unavailable, completion disabled", map[string]interface{}{"error": err.Error()})
	} else if llmProvider != nil {
		opts = append(opts, capability.WithLLM(llmProvider))
	}

	if index := newVectorIndex(cfg.Vector, db, sysLogger, &c.closers); index != nil {
		opts = append(opts, capability.WithVectorIndex(index))
	}

	registry := capability.NewRegistry(executor, opts...)

	// 6. Retrieval pipeline
	corpus := service.NewCorpusStore(uowFactory)
	conversations := service.NewConversationStore(uowFactory)

	keywords := keyword.NewExtractor(registry, keyword.Config{
		Model:       cfg.Ai.KeywordExtractionModel,
		Temperature: cfg.Ai.KeywordExtractionTemp,
		MaxTokens:   cfg.Ai.KeywordExtractionMaxTokens,
	}, sysLogger)
	lexicalStage := lexical.NewStage(corpus, sysLogger, m)
	vectorStage := vector.NewStage(registry, corpus, cfg.Vector.Collection, sysLogger)
	orchestrator := search.NewOrchestrator(keywords, lexicalStage, vectorStage, registry.EmbeddingModel(), sysLogger, m)

	generator := response.NewGenerator(
		conversations,
		orchestrator,
		history.NewLoader(conversations, history.DefaultWindow),
		registry,
		debugStore,
		response.Config{
			Model:       cfg.Ai.AssistantModel,
			Temperature: cfg.Ai.AssistantTemperature,
			MaxTokens:   cfg.Ai.AssistantMaxTokens,
		},
		sysLogger,
		m,
	)

	// 7. Services
	dimensions := cfg.Ai.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = embedding.DimensionsFor(cfg.Ai.EmbeddingProvider)
	}
	c.IndexingService = service.NewIndexingService(uowFactory, registry, emitter, service.IndexingConfig{
		Collection: cfg.Vector.Collection,
		Dimensions: dimensions,
	}, sysLogger)

	contentService := service.NewContentService(uowFactory, publisherService, registry, emitter, cfg.App.IndexTopic, cfg.Vector.Collection, sysLogger)
	chatService := service.NewChatService(uowFactory, publisherService, generator, debugStore, emitter, cfg.App.ReplyTopic, sysLogger)
	searchService := service.NewSearchService(orchestrator, cfg.Retrieval.DefaultLimit, sysLogger)

	// 8. Jobs: queued handlers, run inline when the queue rejects a publish
	c.ConsumerService.Handle(cfg.App.IndexTopic, c.IndexingService.HandleIndexJob)
	c.ConsumerService.Handle(cfg.App.ReplyTopic, chatService.HandleReplyJob)
	publisherService.RegisterFallback(cfg.App.IndexTopic, c.IndexingService.HandleIndexJob)
	publisherService.RegisterFallback(cfg.App.ReplyTopic, chatService.HandleReplyJob)

	// 9. Controllers
	c.AuthMiddleware = serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret)
	c.ContentController = controller.NewContentController(contentService)
	c.ChatController = controller.NewChatController(chatService)
	c.SearchController = controller.NewSearchController(searchService)
	c.SystemController = controller.NewSystemController(health)

	return c
}

// Close releases connections in reverse order of acquisition
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newRedisClient(rawURL string, log logger.ILogger) *redis.Client {
	if rawURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Invalid REDIS_URL, using in-memory debug cache", map[string]interface{}{"error": err.Error()})
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unavailable, using in-memory debug cache", map[string]interface{}{"error": err.Error()})
		_ = client.Close()
		return nil
	}
	return client
}

func newEmbedder(cfg config.AIConfig) embedding.EmbeddingProvider {
	switch cfg.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaProvider(cfg.OllamaBaseURL, cfg.EmbeddingModel)
	case "none":
		return nil
	default:
		return embedding.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	}
}

func newVectorIndex(cfg config.VectorConfig, db *gorm.DB, log logger.ILogger, closers *[]func()) vectorindex.Index {
	switch cfg.Backend {
	case "qdrant":
		index, err := vectorindex.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantKey, log)
		if err != nil {
			log.Warn("BOOTSTRAP", "Qdrant unavailable, vector search disabled", map[string]interface{}{"error": err.Error()})
			return nil
		}
		*closers = append(*closers, func() { _ = index.Close() })
		return index
	case "pgvector":
		return vectorindex.NewPgvectorIndex(db)
	default:
		log.Info("BOOTSTRAP", "Vector search disabled", map[string]interface{}{"backend": cfg.Backend})
		return nil
	}
}
