package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Ai       AIConfig
	Rag      RagConfig
	Qna      QnaConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type RedisConfig struct {
	URL        string
	SessionTTL time.Duration
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama"
	LLMModel          string // e.g. "llama3", "qwen2.5"
}

type RagConfig struct {
	TopK                 int
	ConfidenceThreshold  float64
	DefaultAnswer        string
	MaxHeaderBufferBytes int
	Vectorizer           string // "direct" or "hyde"
	ChunkSize            int
	ChunkOverlap         int
	PastMessagesLimit    int
}

type QnaConfig struct {
	MatchThreshold float64
	EmbedWorkers   int
}

type APIKeys struct {
	GoogleGemini string
	JwtSecret    string
	IngestTopic  string // watermill topic for document ingestion
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Redis: RedisConfig{
			URL:        getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionTTL: getEnvAsDuration("SESSION_CACHE_TTL", 30*time.Minute),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "documents"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Rag: RagConfig{
			TopK:                 getEnvAsInt("RAG_TOP_K", 5),
			ConfidenceThreshold:  getEnvAsFloat("RAG_CONFIDENCE_THRESHOLD", 0.7),
			DefaultAnswer:        getEnv("RAG_DEFAULT_ANSWER", "I don't know the answer to this question"),
			MaxHeaderBufferBytes: getEnvAsInt("RAG_MAX_HEADER_BUFFER_BYTES", 4096),
			Vectorizer:           getEnv("RAG_VECTORIZER", "direct"),
			ChunkSize:            getEnvAsInt("RAG_CHUNK_SIZE", 1500),
			ChunkOverlap:         getEnvAsInt("RAG_CHUNK_OVERLAP", 200),
			PastMessagesLimit:    getEnvAsInt("RAG_PAST_MESSAGES_LIMIT", 10),
		},
		Qna: QnaConfig{
			MatchThreshold: getEnvAsFloat("QNA_MATCH_THRESHOLD", 0.85),
			EmbedWorkers:   getEnvAsInt("QNA_EMBED_WORKERS", 4),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JwtSecret:    getEnv("JWT_SECRET", ""),
			IngestTopic:  getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
		},
	}
}

// Validate fails fast on settings the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Database.Connection == "" {
		return fmt.Errorf("DB_CONNECTION_STRING is required")
	}
	if c.Rag.ConfidenceThreshold < 0 || c.Rag.ConfidenceThreshold > 1 {
		return fmt.Errorf("RAG_CONFIDENCE_THRESHOLD must be within [0, 1], got %v", c.Rag.ConfidenceThreshold)
	}
	if c.Qna.MatchThreshold < 0 || c.Qna.MatchThreshold > 1 {
		return fmt.Errorf("QNA_MATCH_THRESHOLD must be within [0, 1], got %v", c.Qna.MatchThreshold)
	}
	if c.Rag.TopK <= 0 {
		return fmt.Errorf("RAG_TOP_K must be positive, got %d", c.Rag.TopK)
	}
	if c.Rag.ChunkSize <= 0 || c.Rag.ChunkOverlap < 0 || c.Rag.ChunkOverlap >= c.Rag.ChunkSize {
		return fmt.Errorf("invalid chunking settings: size %d overlap %d", c.Rag.ChunkSize, c.Rag.ChunkOverlap)
	}
	if c.Ai.EmbeddingProvider == "gemini" && c.Keys.GoogleGemini == "" {
		return fmt.Errorf("GOOGLE_GEMINI_API_KEY is required when EMBEDDING_PROVIDER=gemini")
	}
	return nil
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
