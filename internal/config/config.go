package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Index    IndexConfig
	Ai       AIConfig
	Chat     ChatConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
	ReindexTopic       string
}

type DatabaseConfig struct {
	Connection string
}

type IndexConfig struct {
	// Store selects the retrieval index backend: "memory" (gob file under
	// Dir) or "pgvector" (Postgres via DB_CONNECTION_STRING).
	Store        string
	Dir          string
	Collection   string
	DocsDir      string
	ChunkSize    int
	ChunkOverlap int
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "openai"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	LLMProvider       string // "openai" (llama.cpp-compatible) or "ollama"
	LLMModel          string
	LLMBaseURL        string
	APIKey            string
}

type ChatConfig struct {
	SystemPrompt string
	MaxTurns     int // previous user/assistant pairs kept in the prompt window
	MaxTokens    int
	Temperature  float64
	TopK         int
}

type SessionConfig struct {
	// Store selects the session backend: "memory" (in-process) or "redis".
	Store      string
	TTLMinutes int // 0 = sessions live until process exit
}

const defaultSystemPrompt = "You are an expert on PETSc and scientific computing. " +
	"Answer clearly and concisely.  When helpful, show short code snippets."

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://demo.local,http://localhost:8080"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ReindexTopic:       getEnv("REINDEX_TOPIC", "REINDEX_DOCS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Index: IndexConfig{
			Store:        getEnv("VECTOR_STORE", "memory"),
			Dir:          getEnv("INDEX_DIR", "./index"),
			Collection:   getEnv("INDEX_COLLECTION", "petsc-docs"),
			DocsDir:      getEnv("DOCS_DIR", "./docs_raw"),
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 1024),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 128),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "local"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", "http://127.0.0.1:8001/v1"),
			APIKey:            getEnv("LLM_API_KEY", "not-needed"),
		},
		Chat: ChatConfig{
			SystemPrompt: getEnv("CHAT_SYSTEM_PROMPT", defaultSystemPrompt),
			MaxTurns:     getEnvAsInt("CHAT_MAX_TURNS", 6),
			MaxTokens:    getEnvAsInt("CHAT_MAX_TOKENS", 256),
			Temperature:  getEnvAsFloat("CHAT_TEMPERATURE", 0.2),
			TopK:         getEnvAsInt("RETRIEVAL_TOP_K", 4),
		},
		Session: SessionConfig{
			Store:      getEnv("SESSION_STORE", "memory"),
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 0),
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
