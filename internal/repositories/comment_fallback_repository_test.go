package repositories

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"github.com/anonto42/tooth-fae/backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDurable is a CommentRepository whose results are set per test
type stubDurable struct {
	comments []models.Comment
	id       models.CommentID
	voted    *models.Comment
	err      error
	voteErr  error

	listCalls, createCalls, voteCalls int
}

func (s *stubDurable) ListComments(context.Context, models.SortBy) ([]models.Comment, error) {
	s.listCalls++
	return s.comments, s.err
}

func (s *stubDurable) CreateComment(context.Context, models.CreateCommentRequest) (models.CommentID, error) {
	s.createCalls++
	return s.id, s.err
}

func (s *stubDurable) VoteComment(context.Context, models.CommentID, models.VoteAction) (*models.Comment, error) {
	s.voteCalls++
	if s.voteErr != nil {
		return nil, s.voteErr
	}
	return s.voted, s.err
}

var errDown = errors.New("server selection error: connection refused")

func newFallback(t *testing.T, durable *stubDurable) (*FallbackCommentRepository, *MemoryCommentRepository, *metrics.Metrics, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	memory := NewMemoryCommentRepository(SeedComments())
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewFallbackCommentRepository(durable, memory, zerolog.New(&buf), m), memory, m, &buf
}

func TestFallbackCommentRepository_ListUsesDurable(t *testing.T) {
	durable := &stubDurable{comments: []models.Comment{{ID: "abc", Name: "Zoe"}}}
	repo, _, m, _ := newFallback(t, durable)

	comments, err := repo.ListComments(context.Background(), models.SortLatest)
	require.NoError(t, err)
	assert.Equal(t, durable.comments, comments)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BackendFallbacks.WithLabelValues("list")))
}

func TestFallbackCommentRepository_ListFallsBackToMemory(t *testing.T) {
	repo, _, m, logs := newFallback(t, &stubDurable{err: errDown})

	comments, err := repo.ListComments(context.Background(), models.SortLikes)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "Mia", comments[0].Name)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendFallbacks.WithLabelValues("list")))
	assert.Contains(t, logs.String(), `"event":"backend_fallback"`)
	assert.Contains(t, logs.String(), `"operation":"list"`)
}

func TestFallbackCommentRepository_CreateWritesOneStore(t *testing.T) {
	durable := &stubDurable{id: "65f0c0ffee0000000000abcd"}
	repo, memory, _, _ := newFallback(t, durable)
	ctx := context.Background()

	id, err := repo.CreateComment(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, durable.id, id)

	inMemory, _ := memory.ListComments(ctx, models.SortLatest)
	assert.Len(t, inMemory, 3)
}

func TestFallbackCommentRepository_CreateFallsBackToMemory(t *testing.T) {
	repo, memory, m, _ := newFallback(t, &stubDurable{err: errDown})
	ctx := context.Background()

	id, err := repo.CreateComment(ctx, validRequest())
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	inMemory, _ := memory.ListComments(ctx, models.SortLatest)
	require.Len(t, inMemory, 4)
	assert.Equal(t, id, inMemory[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendFallbacks.WithLabelValues("create")))
}

func TestFallbackCommentRepository_CreateValidatesBeforeDurable(t *testing.T) {
	durable := &stubDurable{}
	repo, _, _, _ := newFallback(t, durable)

	_, err := repo.CreateComment(context.Background(), models.CreateCommentRequest{Name: "A"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, durable.createCalls)
}

func TestFallbackCommentRepository_VoteMemoryFirst(t *testing.T) {
	durable := &stubDurable{}
	repo, _, _, _ := newFallback(t, durable)

	updated, err := repo.VoteComment(context.Background(), "1", models.VoteLike)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Likes)
	assert.Zero(t, durable.voteCalls)
}

func TestFallbackCommentRepository_VoteReachesDurable(t *testing.T) {
	durable := &stubDurable{voted: &models.Comment{ID: "65f0c0ffee0000000000abcd", Likes: 1}}
	repo, _, _, _ := newFallback(t, durable)

	updated, err := repo.VoteComment(context.Background(), "65f0c0ffee0000000000abcd", models.VoteLike)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Likes)
	assert.Equal(t, 1, durable.voteCalls)
}

func TestFallbackCommentRepository_VoteUnknownEverywhere(t *testing.T) {
	repo, _, m, _ := newFallback(t, &stubDurable{voteErr: ErrCommentNotFound})

	_, err := repo.VoteComment(context.Background(), "404", models.VoteDislike)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.VoteLookupFailures))
}

func TestFallbackCommentRepository_VoteDurableFailureIsNotFound(t *testing.T) {
	durable := &stubDurable{voteErr: errDown}
	repo, _, m, logs := newFallback(t, durable)

	_, err := repo.VoteComment(context.Background(), "65f0c0ffee0000000000abcd", models.VoteLike)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	assert.Equal(t, 1, durable.voteCalls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VoteLookupFailures))
	assert.Contains(t, logs.String(), `"event":"vote_lookup_failed"`)
}

func TestFallbackCommentRepository_VoteValidation(t *testing.T) {
	durable := &stubDurable{}
	repo, _, _, _ := newFallback(t, durable)

	_, err := repo.VoteComment(context.Background(), "1", models.VoteAction("meh"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, durable.voteCalls)
}

func TestFallbackCommentRepository_NilMetrics(t *testing.T) {
	memory := NewMemoryCommentRepository(SeedComments())
	repo := NewFallbackCommentRepository(&stubDurable{err: errDown, voteErr: errDown}, memory, zerolog.Nop(), nil)
	ctx := context.Background()

	_, err := repo.ListComments(ctx, models.SortLatest)
	assert.NoError(t, err)
	_, err = repo.VoteComment(ctx, "missing", models.VoteLike)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
