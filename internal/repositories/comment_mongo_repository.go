package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// commentDocument is the stored shape of a comment. Documents written by
// older deployments may carry a string "id" alongside "_id".
type commentDocument struct {
	ObjectID  primitive.ObjectID `bson:"_id,omitempty"`
	LegacyID  string             `bson:"id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Content   string             `bson:"content"`
	CreatedAt *time.Time         `bson:"createdAt,omitempty"`
	Likes     int                `bson:"likes"`
	Dislikes  int                `bson:"dislikes"`
}

func (d *commentDocument) toComment() models.Comment {
	id := models.CommentID(d.LegacyID)
	if id.IsZero() && !d.ObjectID.IsZero() {
		id = models.CommentIDFromObjectID(d.ObjectID)
	}
	return models.Comment{
		ID:        id,
		Name:      d.Name,
		Email:     d.Email,
		Content:   d.Content,
		Date:      models.FormatCommentDate(d.CreatedAt),
		CreatedAt: d.CreatedAt,
		Likes:     d.Likes,
		Dislikes:  d.Dislikes,
	}
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// ListComments retrieves every comment in the requested order
func (r *MongoCommentRepository) ListComments(ctx context.Context, sortBy models.SortBy) ([]models.Comment, error) {
	var order bson.D
	switch sortBy {
	case models.SortOldest:
		order = bson.D{{Key: "createdAt", Value: 1}}
	case models.SortLikes:
		order = bson.D{{Key: "likes", Value: -1}}
	default:
		order = bson.D{{Key: "createdAt", Value: -1}}
	}

	cursor, err := r.collection.Find(ctx, bson.D{}, options.Find().SetSort(order))
	if err != nil {
		return nil, fmt.Errorf("%w: find comments: %v", ErrBackendUnavailable, err)
	}
	defer cursor.Close(ctx)

	var docs []commentDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode comments: %v", ErrBackendUnavailable, err)
	}

	comments := make([]models.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, docs[i].toComment())
	}
	return comments, nil
}

// CreateComment inserts a new comment and returns its ObjectID-based ID
func (r *MongoCommentRepository) CreateComment(ctx context.Context, req models.CreateCommentRequest) (models.CommentID, error) {
	if err := validateNewComment(req); err != nil {
		return "", err
	}

	now := time.Now()
	doc := commentDocument{
		ObjectID:  primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Content:   req.Content,
		CreatedAt: &now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("%w: insert comment: %v", ErrBackendUnavailable, err)
	}
	return models.CommentIDFromObjectID(doc.ObjectID), nil
}

// VoteComment atomically increments a counter and returns the updated comment.
// The ID is matched against the legacy string field and, when it parses as
// one, the ObjectID.
func (r *MongoCommentRepository) VoteComment(ctx context.Context, id models.CommentID, action models.VoteAction) (*models.Comment, error) {
	if err := validateVote(id, action); err != nil {
		return nil, err
	}

	matches := bson.A{bson.M{"id": id.String()}}
	if oid, ok := id.ObjectID(); ok {
		matches = append(matches, bson.M{"_id": oid})
	}
	filter := bson.M{"$or": matches}
	update := bson.M{"$inc": bson.M{counterField(action): 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc commentDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("%w: increment %s: %v", ErrBackendUnavailable, counterField(action), err)
	}

	comment := doc.toComment()
	if comment.ID.IsZero() {
		comment.ID = id
	}
	return &comment, nil
}
