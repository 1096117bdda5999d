package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mongoSelectionTimeout bounds how long a comment request waits for an
// unreachable MongoDB before falling back to memory
const mongoSelectionTimeout = 2 * time.Second

// DB holds the optional backend connections. A nil field means the backend
// is not configured.
type DB struct {
	Mongo    *mongo.Client
	Postgres *gorm.DB
	Redis    *redis.Client
}

// InitDB opens every backend that has a connection string. MongoDB is kept
// even when the initial ping fails: comment operations fall back per request
// and recover once the server is reachable again.
func InitDB(cfg *Config, log zerolog.Logger) (*DB, error) {
	db := &DB{}

	if cfg.MongoURI != "" {
		client, err := initMongo(cfg.MongoURI, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
		}
		db.Mongo = client
	} else {
		log.Info().Msg("MONGO_URI not set, comments are kept in memory")
	}

	if cfg.PostgresUrl != "" {
		pg, err := initPostgres(cfg.PostgresUrl)
		if err != nil {
			db.CloseDB(log)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		log.Info().Msg("Successfully connected to PostgreSQL")
		db.Postgres = pg
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			db.CloseDB(log)
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		db.Redis = redis.NewClient(opts)
	}

	return db, nil
}

// initMongo creates the client and pings the primary. A failed ping is only
// logged.
func initMongo(uri string, log zerolog.Logger) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(mongoSelectionTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		log.Warn().Err(err).Msg("MongoDB not reachable yet, comment operations will fall back to memory")
		return client, nil
	}

	log.Info().Msg("Successfully connected to MongoDB")
	return client, nil
}

// initPostgres initializes the PostgreSQL connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// CloseDB closes the open connections
func (db *DB) CloseDB(log zerolog.Logger) {
	if db.Postgres != nil {
		if sqlDB, err := db.Postgres.DB(); err != nil {
			log.Error().Err(err).Msg("Error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		} else {
			log.Info().Msg("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("Error closing MongoDB connection")
		} else {
			log.Info().Msg("MongoDB connection closed")
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Redis connection")
		}
	}
}
