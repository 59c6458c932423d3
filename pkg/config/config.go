package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j persistence backend (optional; in-memory only when disabled)
	Neo4jEnabled  bool
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// LLM bridge for natural-language queries
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// PageRank defaults, overridable per request
	PageRankDamping    float64
	PageRankIterations int
	PageRankTolerance  float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		Neo4jEnabled:       getEnvBool("NEO4J_ENABLED", false),
		Neo4jURI:           getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword:      getEnv("NEO4J_PASSWORD", "password"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		LLMAPIKey:          getEnv("OPENAI_API_KEY", ""),
		LLMModel:           getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		PageRankDamping:    getEnvFloat("PAGERANK_DAMPING", 0.85),
		PageRankIterations: getEnvInt("PAGERANK_ITERATIONS", 20),
		PageRankTolerance:  getEnvFloat("PAGERANK_TOLERANCE", 1e-6),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jEnabled {
		if c.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI is required when NEO4J_ENABLED is set")
		}
		if c.Neo4jUser == "" {
			return fmt.Errorf("NEO4J_USERNAME is required when NEO4J_ENABLED is set")
		}
		if c.Neo4jPassword == "" {
			return fmt.Errorf("NEO4J_PASSWORD is required when NEO4J_ENABLED is set")
		}
	}
	if c.PageRankDamping <= 0 || c.PageRankDamping >= 1 {
		return fmt.Errorf("PAGERANK_DAMPING must be in (0, 1), got %v", c.PageRankDamping)
	}
	if c.PageRankIterations <= 0 {
		return fmt.Errorf("PAGERANK_ITERATIONS must be positive, got %d", c.PageRankIterations)
	}
	// LLM API key is optional; the /api/query endpoints report unavailable without it
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

func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes":
		return true
	case "0", "false", "FALSE", "no":
		return false
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
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
