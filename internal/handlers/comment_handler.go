package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"github.com/anonto42/tooth-fae/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	log               zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		log:               log,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/comments", h.GetComments)
	g.POST("/comments", h.CreateComment)
	g.PUT("/comments", h.VoteComment)
}

// GetComments lists comments ordered by the sortBy query parameter
func (h *CommentHandler) GetComments(c echo.Context) error {
	sortBy := models.ParseSortBy(c.QueryParam("sortBy"))

	comments, err := h.commentRepository.ListComments(c.Request().Context(), sortBy)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list comments")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comments")
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	return c.JSON(http.StatusOK, comments)
}

// CreateComment stores a new comment
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add comment")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, email, and content are required")
	}

	id, err := h.commentRepository.CreateComment(c.Request().Context(), req)
	if err != nil {
		return h.commentError(err, "Failed to add comment")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Comment added successfully",
		"id":      id,
	})
}

// VoteComment applies a like or dislike to a comment
func (h *CommentHandler) VoteComment(c echo.Context) error {
	var req models.VoteCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update comment")
	}

	if err := c.Validate(&req); err != nil {
		if req.ID.IsZero() {
			return echo.NewHTTPError(http.StatusBadRequest, "Comment ID is required")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid action. Must be 'like' or 'dislike'")
	}

	comment, err := h.commentRepository.VoteComment(c.Request().Context(), req.ID, req.Action)
	if err != nil {
		return h.commentError(err, "Failed to update comment")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

func (h *CommentHandler) commentError(err error, fallback string) error {
	var ve *repositories.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	case errors.Is(err, repositories.ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	default:
		h.log.Error().Err(err).Msg(fallback)
		return echo.NewHTTPError(http.StatusInternalServerError, fallback)
	}
}
