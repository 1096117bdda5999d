package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port            string
	Env             string
	LogLevel        string
	MongoURI        string
	MongoDatabase   string
	PostgresUrl     string
	RedisURL        string
	MetricsPort     string
	ContentDir      string
	CatalogCacheTTL time.Duration
}

// Load reads configuration from the environment, after merging a .env file
// when one exists. Only MONGO_URI decides whether comments are durable.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// the service logger does not exist yet
		log.Info().Msg("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "toothfae"),
		PostgresUrl:     getEnv("POSTGRES_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		ContentDir:      getEnv("CONTENT_DIR", "./content/games"),
		CatalogCacheTTL: getDurationEnv("CATALOG_CACHE_TTL", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
