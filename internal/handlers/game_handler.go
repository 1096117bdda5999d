package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"github.com/anonto42/tooth-fae/backend/internal/repositories"
	"github.com/anonto42/tooth-fae/backend/internal/sanitizer"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// GameHandler serves the game catalog and per-game content
type GameHandler struct {
	catalogRepository repositories.GameCatalogRepository
	contentRepository repositories.GameContentRepository
	log               zerolog.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(catalogRepo repositories.GameCatalogRepository, contentRepo repositories.GameContentRepository, log zerolog.Logger) *GameHandler {
	return &GameHandler{
		catalogRepository: catalogRepo,
		contentRepository: contentRepo,
		log:               log,
	}
}

// RegisterGameRoutes registers game-related routes
func (h *GameHandler) RegisterGameRoutes(g *echo.Group) {
	g.GET("/games", h.GetGames)
	g.GET("/games/:slug", h.GetGame)
}

// GetGames lists catalog entries (?tag=&q=&featured=&sort=newest|popular|title&limit=)
func (h *GameHandler) GetGames(c echo.Context) error {
	var filter models.GameFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	games, err := h.catalogRepository.ListGames(c.Request().Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list games")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch games")
	}
	if games == nil {
		games = []models.GameListing{}
	}

	return c.JSON(http.StatusOK, games)
}

// gameResponse is the content artifact plus the catalog-only fields
type gameResponse struct {
	*models.GameContent
	Category string `json:"category,omitempty"`
	Plays    int64  `json:"plays"`
}

// GetGame returns the content artifact of one game, enriched with its
// catalog listing when there is one. The embed markup is cleaned again on
// the way out so a hand-edited artifact cannot inject scripts.
func (h *GameHandler) GetGame(c echo.Context) error {
	slug := c.Param("slug")
	if !repositories.ValidSlug(slug) {
		return echo.NewHTTPError(http.StatusNotFound, "Game not found")
	}

	content, err := h.contentRepository.GetContent(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) || errors.Is(err, repositories.ErrInvalidSlug) {
			return echo.NewHTTPError(http.StatusNotFound, "Game not found")
		}
		h.log.Error().Err(err).Str("slug", slug).Msg("failed to read game content")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch game")
	}

	content.Content.HTML = sanitizer.Clean(content.Content.HTML)
	resp := gameResponse{GameContent: content}

	listing, err := h.catalogRepository.GetGame(c.Request().Context(), slug)
	switch {
	case err == nil:
		resp.Category = listing.Category
		resp.Plays = listing.Plays
		resp.Featured = resp.Featured || listing.Featured
	case errors.Is(err, repositories.ErrGameNotFound):
	default:
		h.log.Warn().Err(err).Str("slug", slug).Msg("catalog lookup failed, serving content only")
	}

	return c.JSON(http.StatusOK, resp)
}
