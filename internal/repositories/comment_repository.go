package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/tooth-fae/backend/internal/models"
)

var (
	// ErrCommentNotFound is returned when a vote targets an unknown comment
	ErrCommentNotFound = errors.New("comment not found")
	// ErrBackendUnavailable marks a durable store failure. It never leaves
	// the fallback repository.
	ErrBackendUnavailable = errors.New("comment backend unavailable")
)

// ValidationError reports missing or invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	ListComments(ctx context.Context, sortBy models.SortBy) ([]models.Comment, error)
	CreateComment(ctx context.Context, req models.CreateCommentRequest) (models.CommentID, error)
	VoteComment(ctx context.Context, id models.CommentID, action models.VoteAction) (*models.Comment, error)
}

func validateNewComment(req models.CreateCommentRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Content) == "" {
		return &ValidationError{Message: "Name, email, and content are required"}
	}
	return nil
}

func validateVote(id models.CommentID, action models.VoteAction) error {
	if id.IsZero() {
		return &ValidationError{Message: "Comment ID is required"}
	}
	if !action.Valid() {
		return &ValidationError{Message: "Invalid action. Must be 'like' or 'dislike'"}
	}
	return nil
}

// counterField maps a vote action to the counter it increments
func counterField(action models.VoteAction) string {
	if action == models.VoteDislike {
		return "dislikes"
	}
	return "likes"
}
