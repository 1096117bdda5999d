package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoCommentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	created := time.Date(2025, time.March, 12, 8, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()

	mt.Run("list reconciles ids", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".comments"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: oid},
				{Key: "name", Value: "Zoe"},
				{Key: "email", Value: "zoe@example.com"},
				{Key: "content", Value: "Great"},
				{Key: "createdAt", Value: created},
				{Key: "likes", Value: 3},
				{Key: "dislikes", Value: 1},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "id", Value: "legacy-7"},
				{Key: "name", Value: "Old"},
				{Key: "email", Value: "old@example.com"},
				{Key: "content", Value: "From before"},
			},
		))

		repo := NewMongoCommentRepository(mt.DB)
		comments, err := repo.ListComments(context.Background(), models.SortLatest)
		require.NoError(mt, err)
		require.Len(mt, comments, 2)

		assert.Equal(mt, models.CommentID(oid.Hex()), comments[0].ID)
		assert.Equal(mt, "Mar 12, 2025", comments[0].Date)
		assert.Equal(mt, 3, comments[0].Likes)
		assert.Equal(mt, 1, comments[0].Dislikes)

		assert.Equal(mt, models.CommentID("legacy-7"), comments[1].ID)
		assert.Equal(mt, models.UnknownDate, comments[1].Date)
	})

	mt.Run("list failure is backend unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		repo := NewMongoCommentRepository(mt.DB)
		_, err := repo.ListComments(context.Background(), models.SortLikes)
		assert.ErrorIs(mt, err, ErrBackendUnavailable)
	})

	mt.Run("create returns object id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo := NewMongoCommentRepository(mt.DB)
		id, err := repo.CreateComment(context.Background(), validRequest())
		require.NoError(mt, err)

		_, ok := id.ObjectID()
		assert.True(mt, ok)
	})

	mt.Run("create validates without calling the server", func(mt *mtest.T) {
		repo := NewMongoCommentRepository(mt.DB)
		_, err := repo.CreateComment(context.Background(), models.CreateCommentRequest{Name: "A", Email: "a@b.c"})

		var ve *ValidationError
		assert.ErrorAs(mt, err, &ve)
	})

	mt.Run("vote returns updated document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Zoe"},
			{Key: "email", Value: "zoe@example.com"},
			{Key: "content", Value: "Great"},
			{Key: "createdAt", Value: created},
			{Key: "likes", Value: 4},
			{Key: "dislikes", Value: 1},
		}}))

		repo := NewMongoCommentRepository(mt.DB)
		comment, err := repo.VoteComment(context.Background(), models.CommentIDFromObjectID(oid), models.VoteLike)
		require.NoError(mt, err)
		assert.Equal(mt, models.CommentID(oid.Hex()), comment.ID)
		assert.Equal(mt, 4, comment.Likes)
	})

	mt.Run("vote without match is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo := NewMongoCommentRepository(mt.DB)
		_, err := repo.VoteComment(context.Background(), "legacy-404", models.VoteDislike)
		assert.ErrorIs(mt, err, ErrCommentNotFound)
	})

	mt.Run("vote server error is backend unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		repo := NewMongoCommentRepository(mt.DB)
		_, err := repo.VoteComment(context.Background(), "legacy-7", models.VoteLike)
		assert.ErrorIs(mt, err, ErrBackendUnavailable)
		assert.NotErrorIs(mt, err, ErrCommentNotFound)
	})
}
