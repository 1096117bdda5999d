package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"github.com/anonto42/tooth-fae/backend/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedGameCatalogRepository is a Redis read-through cache in front of
// another catalog. Redis failures fall through to the wrapped repository.
type CachedGameCatalogRepository struct {
	next    GameCatalogRepository
	client  *redis.Client
	ttl     time.Duration
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewCachedGameCatalogRepository creates a new CachedGameCatalogRepository.
// m may be nil.
func NewCachedGameCatalogRepository(next GameCatalogRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger, m *metrics.Metrics) *CachedGameCatalogRepository {
	return &CachedGameCatalogRepository{
		next:    next,
		client:  client,
		ttl:     ttl,
		log:     log.With().Str("component", "catalog_cache").Logger(),
		metrics: m,
	}
}

func listKey(f models.GameFilter) string {
	return fmt.Sprintf("games:list:%s:%s:%t:%s:%d",
		strings.ToLower(f.Tag), strings.ToLower(f.Search), f.Featured, f.Sort, f.Limit)
}

func gameKey(slug string) string {
	return fmt.Sprintf("games:slug:%s", slug)
}

// ListGames serves a cached listing or loads and caches it
func (r *CachedGameCatalogRepository) ListGames(ctx context.Context, filter models.GameFilter) ([]models.GameListing, error) {
	filter = filter.Normalize()
	key := listKey(filter)

	var games []models.GameListing
	if r.load(ctx, key, &games) {
		return games, nil
	}

	games, err := r.next.ListGames(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, games)
	return games, nil
}

// GetGame serves a cached listing or loads and caches it. Misses are not cached.
func (r *CachedGameCatalogRepository) GetGame(ctx context.Context, slug string) (*models.GameListing, error) {
	key := gameKey(slug)

	var game models.GameListing
	if r.load(ctx, key, &game) {
		return &game, nil
	}

	loaded, err := r.next.GetGame(ctx, slug)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, loaded)
	return loaded, nil
}

func (r *CachedGameCatalogRepository) load(ctx context.Context, key string, dst interface{}) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.count("miss")
		} else {
			r.count("error")
			r.log.Debug().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.count("error")
		return false
	}
	r.count("hit")
	return true
}

func (r *CachedGameCatalogRepository) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.Debug().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

func (r *CachedGameCatalogRepository) count(result string) {
	if r.metrics != nil {
		r.metrics.CatalogCache.WithLabelValues(result).Inc()
	}
}
