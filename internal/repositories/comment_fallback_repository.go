package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"github.com/anonto42/tooth-fae/backend/pkg/metrics"
	"github.com/rs/zerolog"
)

// FallbackCommentRepository serves every operation from a durable repository
// and reruns it against the memory store whenever the durable call fails.
// Callers only ever see validation and not-found errors.
type FallbackCommentRepository struct {
	durable CommentRepository
	memory  *MemoryCommentRepository
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewFallbackCommentRepository creates a new FallbackCommentRepository.
// m may be nil.
func NewFallbackCommentRepository(durable CommentRepository, memory *MemoryCommentRepository, log zerolog.Logger, m *metrics.Metrics) *FallbackCommentRepository {
	return &FallbackCommentRepository{
		durable: durable,
		memory:  memory,
		log:     log.With().Str("component", "comment_store").Logger(),
		metrics: m,
	}
}

func (r *FallbackCommentRepository) fellBack(op string, err error) {
	r.log.Warn().
		Str("event", "backend_fallback").
		Str("operation", op).
		Err(err).
		Msg("durable comment store failed, serving from memory")
	if r.metrics != nil {
		r.metrics.BackendFallbacks.WithLabelValues(op).Inc()
	}
}

// ListComments never fails because of the durable store
func (r *FallbackCommentRepository) ListComments(ctx context.Context, sortBy models.SortBy) ([]models.Comment, error) {
	comments, err := r.durable.ListComments(ctx, sortBy)
	if err == nil {
		return comments, nil
	}
	r.fellBack("list", err)
	return r.memory.ListComments(ctx, sortBy)
}

// CreateComment writes to exactly one store: the durable one, or memory when
// the durable insert fails
func (r *FallbackCommentRepository) CreateComment(ctx context.Context, req models.CreateCommentRequest) (models.CommentID, error) {
	if err := validateNewComment(req); err != nil {
		return "", err
	}

	id, err := r.durable.CreateComment(ctx, req)
	if err == nil {
		return id, nil
	}
	r.fellBack("create", err)
	return r.memory.CreateComment(ctx, req)
}

// VoteComment looks the ID up in memory first, then in the durable store.
// A durable failure is reported to the caller as not found; the increment is
// not retried because $inc is not idempotent.
func (r *FallbackCommentRepository) VoteComment(ctx context.Context, id models.CommentID, action models.VoteAction) (*models.Comment, error) {
	if err := validateVote(id, action); err != nil {
		return nil, err
	}

	comment, err := r.memory.VoteComment(ctx, id, action)
	if !errors.Is(err, ErrCommentNotFound) {
		return comment, err
	}

	comment, err = r.durable.VoteComment(ctx, id, action)
	if err == nil {
		return comment, nil
	}
	if errors.Is(err, ErrCommentNotFound) {
		return nil, ErrCommentNotFound
	}

	r.log.Warn().
		Str("event", "vote_lookup_failed").
		Str("comment_id", id.String()).
		Str("action", string(action)).
		Err(err).
		Msg("durable vote failed, reporting comment as not found")
	if r.metrics != nil {
		r.metrics.VoteLookupFailures.Inc()
	}
	return nil, ErrCommentNotFound
}
