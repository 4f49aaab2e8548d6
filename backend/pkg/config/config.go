package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	apperrors "mindmap-graph/backend/pkg/errors"
)

// DefaultMarker is the declaration that precedes the mind map literal in
// the authored TypeScript source.
const DefaultMarker = "export const sampleMindMap"

// Config holds all application configuration
type Config struct {
	// App
	Env      string
	LogLevel string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string // empty selects the server default database

	// Source
	DeclarationMarker string

	// Embeddings (OpenAI-compatible endpoint, LiteLLM by default)
	LiteLLMURL           string
	OpenAIAPIKey         string
	EmbeddingModel       string
	EmbeddingDimensions  int
	EmbeddingBatchSize   int
	EmbeddingConcurrency int
	VectorIndexName      string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", ""),
		Neo4jURI:             getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:            getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:        getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:        getEnv("NEO4J_DATABASE", ""),
		DeclarationMarker:    getEnv("MINDMAP_MARKER", DefaultMarker),
		LiteLLMURL:           strings.TrimRight(getEnv("LITELLM_URL", "http://localhost:4000"), "/"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel:       getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions:  getEnvInt("EMBEDDING_DIMENSIONS", 1536),
		EmbeddingBatchSize:   getEnvInt("EMBEDDING_BATCH_SIZE", 32),
		EmbeddingConcurrency: getEnvInt("EMBEDDING_CONCURRENCY", 4),
		VectorIndexName:      getEnv("VECTOR_INDEX_NAME", "navigation_vector_index"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if strings.TrimSpace(c.DeclarationMarker) == "" {
		return apperrors.NewConfigMissingRequired("MINDMAP_MARKER")
	}
	if c.EmbeddingDimensions <= 0 {
		return apperrors.NewConfigValidationFailed("EMBEDDING_DIMENSIONS", "must be positive")
	}
	if c.EmbeddingBatchSize <= 0 {
		return apperrors.NewConfigValidationFailed("EMBEDDING_BATCH_SIZE", "must be positive")
	}
	if c.EmbeddingConcurrency <= 0 {
		return apperrors.NewConfigValidationFailed("EMBEDDING_CONCURRENCY", "must be positive")
	}
	// The embeddings endpoint is only needed by the indexer and is checked there
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
