package repositories

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/anonto42/tooth-fae/backend/internal/models"
)

// MemoryCommentRepository keeps comments in process memory. Contents are lost
// on restart.
type MemoryCommentRepository struct {
	mu       sync.RWMutex
	comments []models.Comment
	lastID   int64
	now      func() time.Time
}

// SeedComments returns the fixture comments a fresh memory store starts with
func SeedComments() []models.Comment {
	return []models.Comment{
		{ID: "1", Name: "Jack", Email: "jack@example.com", Content: "Best cattle game I have played all year. The physics are ridiculous in the best way.", Date: "Mar 12, 2025", Likes: 4, Dislikes: 1},
		{ID: "2", Name: "Mia", Email: "mia@example.com", Content: "The tooth fae level had me laughing for ten minutes straight.", Date: "Mar 10, 2025", Likes: 7, Dislikes: 0},
		{ID: "3", Name: "Oliver", Email: "oliver@example.com", Content: "Runs smoothly in the browser. Would love a leaderboard!", Date: "Mar 8, 2025", Likes: 2, Dislikes: 0},
	}
}

// NewMemoryCommentRepository creates a memory store holding the given comments,
// most recent first
func NewMemoryCommentRepository(seed []models.Comment) *MemoryCommentRepository {
	comments := make([]models.Comment, len(seed))
	copy(comments, seed)
	return &MemoryCommentRepository{comments: comments, now: time.Now}
}

// ListComments returns a copy of the stored comments. Only SortLikes reorders;
// latest and oldest keep insertion order because seeded rows carry no
// creation time.
func (r *MemoryCommentRepository) ListComments(_ context.Context, sortBy models.SortBy) ([]models.Comment, error) {
	r.mu.RLock()
	comments := make([]models.Comment, len(r.comments))
	copy(comments, r.comments)
	r.mu.RUnlock()

	if sortBy == models.SortLikes {
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].Likes > comments[j].Likes
		})
	}
	return comments, nil
}

// CreateComment prepends a new comment and returns its timestamp-based ID
func (r *MemoryCommentRepository) CreateComment(_ context.Context, req models.CreateCommentRequest) (models.CommentID, error) {
	if err := validateNewComment(req); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	stamp := now.UnixMilli()
	if stamp <= r.lastID {
		stamp = r.lastID + 1
	}
	r.lastID = stamp

	createdAt := now
	comment := models.Comment{
		ID:        models.CommentID(strconv.FormatInt(stamp, 10)),
		Name:      req.Name,
		Email:     req.Email,
		Content:   req.Content,
		Date:      now.Format(models.DateLayout),
		CreatedAt: &createdAt,
	}
	r.comments = append([]models.Comment{comment}, r.comments...)
	return comment.ID, nil
}

// VoteComment increments the counter named by action by exactly one
func (r *MemoryCommentRepository) VoteComment(_ context.Context, id models.CommentID, action models.VoteAction) (*models.Comment, error) {
	if err := validateVote(id, action); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.comments {
		if r.comments[i].ID != id {
			continue
		}
		if action == models.VoteDislike {
			r.comments[i].Dislikes++
		} else {
			r.comments[i].Likes++
		}
		updated := r.comments[i]
		return &updated, nil
	}
	return nil, ErrCommentNotFound
}
