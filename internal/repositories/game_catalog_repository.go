package repositories

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameCatalogRepository defines the interface for game listing reads
type GameCatalogRepository interface {
	ListGames(ctx context.Context, filter models.GameFilter) ([]models.GameListing, error)
	GetGame(ctx context.Context, slug string) (*models.GameListing, error)
}

// GormGameCatalogRepository implements GameCatalogRepository for PostgreSQL
type GormGameCatalogRepository struct {
	db *gorm.DB
}

// NewGormGameCatalogRepository creates a new GormGameCatalogRepository
func NewGormGameCatalogRepository(db *gorm.DB) *GormGameCatalogRepository {
	return &GormGameCatalogRepository{db: db}
}

// Migrate creates or updates the game_listings table
func (r *GormGameCatalogRepository) Migrate() error {
	return r.db.AutoMigrate(&models.GameListing{})
}

// ListGames retrieves listings matching the filter
func (r *GormGameCatalogRepository) ListGames(ctx context.Context, filter models.GameFilter) ([]models.GameListing, error) {
	filter = filter.Normalize()

	q := r.db.WithContext(ctx).Model(&models.GameListing{})
	if filter.Tag != "" {
		// tags are stored as a JSON array
		q = q.Where("tags LIKE ?", `%"`+filter.Tag+`"%`)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	if filter.Featured {
		q = q.Where("featured = ?", true)
	}

	switch filter.Sort {
	case models.GameSortPopular:
		q = q.Order("plays DESC")
	case models.GameSortTitle:
		q = q.Order("title ASC")
	default:
		q = q.Order("published_at DESC")
	}

	var games []models.GameListing
	if err := q.Limit(filter.Limit).Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// GetGame retrieves a listing by slug
func (r *GormGameCatalogRepository) GetGame(ctx context.Context, slug string) (*models.GameListing, error) {
	var game models.GameListing
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

// UpsertGame inserts a listing or refreshes the scraped fields of an existing one
func (r *GormGameCatalogRepository) UpsertGame(ctx context.Context, game *models.GameListing) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "image", "tags", "href", "updated_at"}),
	}).Create(game).Error
}

// FileGameCatalogRepository serves the catalog from content artifacts when
// no database is configured. Popularity is unknown there, so "popular"
// orders like "newest".
type FileGameCatalogRepository struct {
	content GameContentRepository
}

// NewFileGameCatalogRepository creates a new FileGameCatalogRepository
func NewFileGameCatalogRepository(content GameContentRepository) *FileGameCatalogRepository {
	return &FileGameCatalogRepository{content: content}
}

// ListGames filters, sorts and limits the artifacts in memory
func (r *FileGameCatalogRepository) ListGames(ctx context.Context, filter models.GameFilter) ([]models.GameListing, error) {
	filter = filter.Normalize()

	contents, err := r.content.ListContent(ctx)
	if err != nil {
		return nil, err
	}

	tag := strings.ToLower(filter.Tag)
	search := strings.ToLower(filter.Search)
	games := make([]models.GameListing, 0, len(contents))
	for i := range contents {
		c := &contents[i]
		if tag != "" && !hasTag(c.Tags, tag) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Title+" "+c.Description), search) {
			continue
		}
		if filter.Featured && !c.Featured {
			continue
		}
		games = append(games, *c.Listing())
	}

	switch filter.Sort {
	case models.GameSortTitle:
		sort.SliceStable(games, func(i, j int) bool {
			return strings.ToLower(games[i].Title) < strings.ToLower(games[j].Title)
		})
	default:
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].PublishedAt.After(games[j].PublishedAt)
		})
	}

	if len(games) > filter.Limit {
		games = games[:filter.Limit]
	}
	return games, nil
}

// GetGame reads the artifact for slug
func (r *FileGameCatalogRepository) GetGame(ctx context.Context, slug string) (*models.GameListing, error) {
	content, err := r.content.GetContent(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrInvalidSlug) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return content.Listing(), nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.ToLower(t) == want {
			return true
		}
	}
	return false
}
