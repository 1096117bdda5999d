package router

import (
	"github.com/anonto42/tooth-fae/backend/internal/handlers"
	"github.com/anonto42/tooth-fae/backend/internal/middleware"
	"github.com/anonto42/tooth-fae/backend/internal/repositories"
	"github.com/anonto42/tooth-fae/backend/pkg/config"
	"github.com/anonto42/tooth-fae/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Repositories are the stores the handlers are built on
type Repositories struct {
	Comments    repositories.CommentRepository
	GameCatalog repositories.GameCatalogRepository
	GameContent repositories.GameContentRepository
}

// NewRepositories selects the store implementations from what is configured.
// Without MongoDB comments live in memory; with it, memory is the fallback.
func NewRepositories(cfg *config.Config, db *config.DB, log zerolog.Logger, m *metrics.Metrics) (*Repositories, error) {
	memory := repositories.NewMemoryCommentRepository(repositories.SeedComments())

	var comments repositories.CommentRepository = memory
	if db.Mongo != nil {
		mongoRepo := repositories.NewMongoCommentRepository(db.Mongo.Database(cfg.MongoDatabase))
		comments = repositories.NewFallbackCommentRepository(mongoRepo, memory, log, m)
		log.Info().Str("database", cfg.MongoDatabase).Msg("Comments use MongoDB with in-memory fallback")
	}

	content := repositories.NewFileGameContentRepository(cfg.ContentDir)

	var catalog repositories.GameCatalogRepository
	if db.Postgres != nil {
		gormCatalog := repositories.NewGormGameCatalogRepository(db.Postgres)
		if err := gormCatalog.Migrate(); err != nil {
			return nil, err
		}
		log.Info().Msg("PostgreSQL auto-migrations completed for game listings.")
		catalog = gormCatalog
	} else {
		catalog = repositories.NewFileGameCatalogRepository(content)
	}
	if db.Redis != nil {
		catalog = repositories.NewCachedGameCatalogRepository(catalog, db.Redis, cfg.CatalogCacheTTL, log, m)
	}

	return &Repositories{
		Comments:    comments,
		GameCatalog: catalog,
		GameContent: content,
	}, nil
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, repos *Repositories, log zerolog.Logger, m *metrics.Metrics) {
	if m != nil {
		e.Use(middleware.MetricsMiddleware(m))
	}

	e.GET("/health", handlers.HealthCheck)

	api := e.Group("")

	commentHandler := handlers.NewCommentHandler(repos.Comments, log)
	commentHandler.RegisterCommentRoutes(api)
	log.Info().Msg("Comment routes configured.")

	gameHandler := handlers.NewGameHandler(repos.GameCatalog, repos.GameContent, log)
	gameHandler.RegisterGameRoutes(api)
	log.Info().Msg("Game routes configured.")
}
