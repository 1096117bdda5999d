package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the short display format used for comment dates ("Mar 4, 2025")
const DateLayout = "Jan 2, 2006"

// UnknownDate is shown when a stored comment carries no creation time
const UnknownDate = "Unknown date"

// CommentID identifies a comment regardless of which store holds it.
//
// Comments created in MongoDB are encoded as the 24 character hex form of
// their ObjectID. Comments created in the in-memory store use the decimal
// millisecond timestamp of their creation (the seed fixtures use small
// integers). Both encodings are accepted everywhere an ID is expected.
type CommentID string

// CommentIDFromObjectID encodes a MongoDB ObjectID as a CommentID
func CommentIDFromObjectID(oid primitive.ObjectID) CommentID {
	return CommentID(oid.Hex())
}

// ObjectID decodes the ID as a MongoDB ObjectID. The second return value is
// false when the ID uses the timestamp encoding.
func (id CommentID) ObjectID() (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func (id CommentID) String() string {
	return string(id)
}

// UnmarshalJSON accepts the ID as a JSON string or as a bare number, which
// is how clients echo back timestamp IDs
func (id *CommentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '"' && !bytes.Equal(data, []byte("null")) {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*id = CommentID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = CommentID(s)
	return nil
}

// IsZero reports whether the ID is empty
func (id CommentID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Comment is a visitor comment shown under the game page
type Comment struct {
	ID        CommentID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"-"` // kept for contact, never rendered
	Content   string     `json:"content"`
	Date      string     `json:"date"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Likes     int        `json:"likes"`
	Dislikes  int        `json:"dislikes"`
}

// FormatCommentDate renders a creation time for display
func FormatCommentDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return UnknownDate
	}
	return t.Format(DateLayout)
}

// SortBy selects the ordering of a comment listing
type SortBy string

const (
	SortLatest SortBy = "latest"
	SortOldest SortBy = "oldest"
	SortLikes  SortBy = "likes"
)

// ParseSortBy maps a query value to a SortBy, defaulting to SortLatest
func ParseSortBy(raw string) SortBy {
	switch SortBy(strings.ToLower(strings.TrimSpace(raw))) {
	case SortOldest:
		return SortOldest
	case SortLikes:
		return SortLikes
	default:
		return SortLatest
	}
}

// VoteAction is the counter a vote increments
type VoteAction string

const (
	VoteLike    VoteAction = "like"
	VoteDislike VoteAction = "dislike"
)

// Valid reports whether the action is like or dislike
func (a VoteAction) Valid() bool {
	return a == VoteLike || a == VoteDislike
}

// CreateCommentRequest defines the request body for posting a comment
type CreateCommentRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// VoteCommentRequest defines the request body for liking or disliking a comment
type VoteCommentRequest struct {
	ID     CommentID  `json:"id" validate:"required"`
	Action VoteAction `json:"action" validate:"required,oneof=like dislike"`
}
