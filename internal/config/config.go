package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Ai         AIConfig
	Vector     VectorConfig
	Retrieval  RetrievalConfig
	Resilience ResilienceConfig
	Telemetry  TelemetryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ActivityLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IndexTopic         string
	ReplyTopic         string
}

type DatabaseConfig struct {
	Connection   string
	MaxOpenConns int
	MaxIdleConns int
	LogQueries   bool
}

type AuthConfig struct {
	JwtSecret string
}

type AIConfig struct {
	EmbeddingProvider   string // "openai", "ollama" or "none"
	EmbeddingModel      string
	EmbeddingDimensions int
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OllamaBaseURL       string

	LLMProvider                string // "openai", "ollama" or "none"
	KeywordExtractionModel     string
	KeywordExtractionTemp      float64
	KeywordExtractionMaxTokens int
	AssistantModel             string
	AssistantTemperature       float64
	AssistantMaxTokens         int
}

type VectorConfig struct {
	Backend    string // "qdrant", "pgvector" or "none"
	QdrantURL  string
	QdrantKey  string
	Collection string
}

type RetrievalConfig struct {
	DefaultLimit int
	DebugTTL     time.Duration
}

type ResilienceConfig struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	BreakerEnabled      bool
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

type TelemetryConfig struct {
	OtelEnabled  bool
	OtelEndpoint string
	ServiceName  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ActivityLogPath:    getEnv("ACTIVITY_LOG_PATH", "logs/activity.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			IndexTopic:         getEnv("INDEX_CONTENT_TOPIC_NAME", "content.index"),
			ReplyTopic:         getEnv("ASSISTANT_REPLY_TOPIC_NAME", "chat.reply"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			LogQueries:   getEnvAsBool("DB_LOG_QUERIES", false),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", ""),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 0),
			OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),

			LLMProvider:                getEnv("LLM_PROVIDER", "openai"),
			KeywordExtractionModel:     getEnv("SEARCH_KEYWORD_EXTRACTION_MODEL", "gpt-3.5-turbo"),
			KeywordExtractionTemp:      getEnvAsFloat("SEARCH_KEYWORD_EXTRACTION_TEMPERATURE", 0),
			KeywordExtractionMaxTokens: getEnvAsInt("SEARCH_KEYWORD_EXTRACTION_MAX_TOKENS", 100),
			AssistantModel:             getEnv("CONVERSATION_ASSISTANT_MODEL", "gpt-4o"),
			AssistantTemperature:       getEnvAsFloat("CONVERSATION_ASSISTANT_TEMPERATURE", 0.7),
			AssistantMaxTokens:         getEnvAsInt("CONVERSATION_ASSISTANT_MAX_TOKENS", 2000),
		},
		Vector: VectorConfig{
			Backend:    strings.ToLower(getEnv("VECTOR_BACKEND", "qdrant")),
			QdrantURL:  getEnv("QDRANT_URL", "http://localhost:6333"),
			QdrantKey:  getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("VECTOR_COLLECTION", "content_embeddings"),
		},
		Retrieval: RetrievalConfig{
			DefaultLimit: getEnvAsInt("SEARCH_DEFAULT_LIMIT", 3),
			DebugTTL:     time.Duration(getEnvAsInt("DEBUG_INFO_TTL_SECONDS", 3600)) * time.Second,
		},
		Resilience: ResilienceConfig{
			RetryMaxAttempts:    getEnvAsInt("RESILIENCE_RETRY_MAX_ATTEMPTS", 3),
			RetryInitialBackoff: time.Duration(getEnvAsInt("RESILIENCE_RETRY_INITIAL_BACKOFF_MS", 200)) * time.Millisecond,
			RetryMaxBackoff:     time.Duration(getEnvAsInt("RESILIENCE_RETRY_MAX_BACKOFF_MS", 2000)) * time.Millisecond,
			BreakerEnabled:      getEnvAsBool("RESILIENCE_BREAKER_ENABLED", true),
			BreakerMinRequests:  getEnvAsInt("RESILIENCE_BREAKER_MIN_REQUESTS", 5),
			BreakerFailureRatio: getEnvAsFloat("RESILIENCE_BREAKER_FAILURE_RATIO", 0.6),
			BreakerOpenTimeout:  time.Duration(getEnvAsInt("RESILIENCE_BREAKER_OPEN_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Telemetry: TelemetryConfig{
			OtelEnabled:  getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "edu-assistant-be"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
