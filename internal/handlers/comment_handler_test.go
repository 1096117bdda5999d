package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/tooth-fae/backend/internal/models"
	"github.com/anonto42/tooth-fae/backend/internal/repositories"
	"github.com/anonto42/tooth-fae/backend/pkg/config"
	"github.com/anonto42/tooth-fae/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = config.HTTPErrorHandler
	e.Validator = validators.NewValidator()
	return e
}

func newCommentServer() *echo.Echo {
	e := newTestEcho()
	repo := repositories.NewMemoryCommentRepository(repositories.SeedComments())
	NewCommentHandler(repo, zerolog.Nop()).RegisterCommentRoutes(e.Group(""))
	return e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestGetComments_SeededList(t *testing.T) {
	e := newCommentServer()

	rec := doJSON(e, http.MethodGet, "/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 3)
	assert.Equal(t, "1", comments[0]["id"])
	assert.Equal(t, "Mar 12, 2025", comments[0]["date"])
	assert.NotContains(t, comments[0], "email")
}

func TestGetComments_SortByLikes(t *testing.T) {
	e := newCommentServer()

	rec := doJSON(e, http.MethodGet, "/comments?sortBy=likes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 3)
	for i := 1; i < len(comments); i++ {
		assert.GreaterOrEqual(t, comments[i-1].Likes, comments[i].Likes)
	}
}

func TestCreateComment_ThenListed(t *testing.T) {
	e := newCommentServer()

	rec := doJSON(e, http.MethodPost, "/comments", `{"name":"Ava","email":"ava@example.com","content":"So fun"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Comment added successfully", created.Message)
	assert.NotEmpty(t, created.ID)

	rec = doJSON(e, http.MethodGet, "/comments?sortBy=latest", "")
	var comments []models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 4)
	assert.Equal(t, models.CommentID(created.ID), comments[0].ID)
	assert.Equal(t, "So fun", comments[0].Content)
	assert.Zero(t, comments[0].Likes)
}

func TestCreateComment_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"missing content", `{"name":"Ava","email":"ava@example.com"}`, http.StatusBadRequest, "Name, email, and content are required"},
		{"blank name", `{"name":"   ","email":"ava@example.com","content":"x"}`, http.StatusBadRequest, "Name, email, and content are required"},
		{"malformed body", `{"name":`, http.StatusInternalServerError, "Failed to add comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(newCommentServer(), http.MethodPost, "/comments", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
		})
	}
}

func TestVoteComment_LikeAndDislike(t *testing.T) {
	e := newCommentServer()

	rec := doJSON(e, http.MethodPut, "/comments", `{"id":"1","action":"like"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string         `json:"message"`
		Comment models.Comment `json:"comment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Comment updated successfully", resp.Message)
	assert.Equal(t, 5, resp.Comment.Likes)
	assert.Equal(t, 1, resp.Comment.Dislikes)

	rec = doJSON(e, http.MethodPut, "/comments", `{"id":"1","action":"dislike"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Comment.Likes)
	assert.Equal(t, 2, resp.Comment.Dislikes)
}

func TestVoteComment_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"missing id", `{"action":"like"}`, http.StatusBadRequest, "Comment ID is required"},
		{"bad action", `{"id":"1","action":"love"}`, http.StatusBadRequest, "Invalid action. Must be 'like' or 'dislike'"},
		{"unknown id", `{"id":"999","action":"like"}`, http.StatusNotFound, "Comment not found"},
		{"malformed body", `not json`, http.StatusInternalServerError, "Failed to update comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(newCommentServer(), http.MethodPut, "/comments", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
		})
	}
}
