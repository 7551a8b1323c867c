package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/models"
)

func TestSubmitRatingUpsertsPerUser(t *testing.T) {
	r := setupRouter(t)
	user, token := createUser(t, "fan", false)
	highlight := createHighlight(t, "Arsenal vs Chelsea", "")

	w := doJSON(t, r, http.MethodPost, "/api/ratings", token,
		map[string]any{"highlight_id": highlight.ID, "value": 4})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, float64(4), decodeBody(t, w)["rating"])

	// second submission replaces the stored value instead of adding a row
	w = doJSON(t, r, http.MethodPost, "/api/ratings", token,
		map[string]any{"highlight_id": highlight.ID, "value": 5})
	requireStatus(t, w, http.StatusOK)

	var ratings []models.Rating
	require.NoError(t, db.DB.Where("user_id = ? AND highlight_id = ?", user.ID, highlight.ID).Find(&ratings).Error)
	require.Len(t, ratings, 1)
	assert.Equal(t, 5, ratings[0].Value)
}

func TestSubmitRatingValidation(t *testing.T) {
	r := setupRouter(t)
	_, token := createUser(t, "fan", false)
	highlight := createHighlight(t, "Arsenal vs Chelsea", "")

	// out of range
	w := doJSON(t, r, http.MethodPost, "/api/ratings", token,
		map[string]any{"highlight_id": highlight.ID, "value": 7})
	requireStatus(t, w, http.StatusBadRequest)

	// unknown highlight
	w = doJSON(t, r, http.MethodPost, "/api/ratings", token,
		map[string]any{"highlight_id": uuid.NewString(), "value": 3})
	requireStatus(t, w, http.StatusNotFound)

	// no session
	w = doJSON(t, r, http.MethodPost, "/api/ratings", "",
		map[string]any{"highlight_id": highlight.ID, "value": 3})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestGetRatingNullWhenUnrated(t *testing.T) {
	r := setupRouter(t)
	_, token := createUser(t, "fan", false)
	highlight := createHighlight(t, "Arsenal vs Chelsea", "")

	w := doJSON(t, r, http.MethodGet, "/api/highlights/"+highlight.ID+"/rating", token, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Nil(t, decodeBody(t, w)["rating"])

	doJSON(t, r, http.MethodPost, "/api/ratings", token,
		map[string]any{"highlight_id": highlight.ID, "value": 2})

	w = doJSON(t, r, http.MethodGet, "/api/highlights/"+highlight.ID+"/rating", token, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, float64(2), decodeBody(t, w)["rating"])
}

func TestToggleFavorite(t *testing.T) {
	r := setupRouter(t)
	user, token := createUser(t, "fan", false)
	highlight := createHighlight(t, "Arsenal vs Chelsea", "")

	count := func() int64 {
		var n int64
		require.NoError(t, db.DB.Model(&models.Favorite{}).
			Where("user_id = ? AND highlight_id = ?", user.ID, highlight.ID).
			Count(&n).Error)
		return n
	}

	w := doJSON(t, r, http.MethodPost, "/api/highlights/"+highlight.ID+"/favorite", token, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, true, decodeBody(t, w)["favorited"])
	assert.EqualValues(t, 1, count())

	w = doJSON(t, r, http.MethodPost, "/api/highlights/"+highlight.ID+"/favorite", token, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, false, decodeBody(t, w)["favorited"])
	assert.EqualValues(t, 0, count())

	w = doJSON(t, r, http.MethodPost, "/api/highlights/"+highlight.ID+"/favorite", token, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, true, decodeBody(t, w)["favorited"])
	assert.EqualValues(t, 1, count())
}

func TestListFavorites(t *testing.T) {
	r := setupRouter(t)
	_, token := createUser(t, "fan", false)
	first := createHighlight(t, "Arsenal vs Chelsea", "")
	createHighlight(t, "Liverpool v Everton", "")

	doJSON(t, r, http.MethodPost, "/api/highlights/"+first.ID+"/favorite", token, nil)

	w := doJSON(t, r, http.MethodGet, "/api/favorites", token, nil)
	requireStatus(t, w, http.StatusOK)

	favorites := decodeBody(t, w)["favorites"].([]any)
	require.Len(t, favorites, 1)
	assert.Equal(t, first.ID, favorites[0].(map[string]any)["id"])
}

func TestCommentLifecycle(t *testing.T) {
	r := setupRouter(t)
	_, authorToken := createUser(t, "author", false)
	_, otherToken := createUser(t, "other", false)
	highlight := createHighlight(t, "Arsenal vs Chelsea", "")

	w := doJSON(t, r, http.MethodPost, "/api/highlights/"+highlight.ID+"/comments", authorToken,
		map[string]any{"content": "  what a goal  "})
	requireStatus(t, w, http.StatusCreated)

	created := decodeBody(t, w)
	assert.Equal(t, "what a goal", created["content"])
	assert.Equal(t, "author", created["user"])
	commentID := created["id"].(float64)

	// blank content rejected
	w = doJSON(t, r, http.MethodPost, "/api/highlights/"+highlight.ID+"/comments", authorToken,
		map[string]any{"content": "   "})
	requireStatus(t, w, http.StatusBadRequest)

	doJSON(t, r, http.MethodPost, "/api/highlights/"+highlight.ID+"/comments", authorToken,
		map[string]any{"content": "second"})

	// newest first, avatars resolved
	w = doJSON(t, r, http.MethodGet, "/api/highlights/"+highlight.ID+"/comments", "", nil)
	requireStatus(t, w, http.StatusOK)

	comments := decodeBody(t, w)["comments"].([]any)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].(map[string]any)["content"])
	assert.Contains(t, comments[0].(map[string]any)["avatar_url"], "/media/")

	// only the author may delete
	w = doJSON(t, r, http.MethodDelete, "/api/comments/"+itoa(commentID), otherToken, nil)
	requireStatus(t, w, http.StatusForbidden)

	w = doJSON(t, r, http.MethodDelete, "/api/comments/"+itoa(commentID), authorToken, nil)
	requireStatus(t, w, http.StatusOK)

	var remaining int64
	require.NoError(t, db.DB.Model(&models.Comment{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}

func TestTopRatedOrdersByAverage(t *testing.T) {
	r := setupRouter(t)
	_, aliceToken := createUser(t, "alice", false)
	_, bobToken := createUser(t, "bob", false)

	best := createHighlight(t, "Arsenal vs Chelsea", "")
	middle := createHighlight(t, "Liverpool v Everton", "")
	unrated := createHighlight(t, "Fulham v Brentford", "")

	doJSON(t, r, http.MethodPost, "/api/ratings", aliceToken, map[string]any{"highlight_id": best.ID, "value": 5})
	doJSON(t, r, http.MethodPost, "/api/ratings", bobToken, map[string]any{"highlight_id": best.ID, "value": 3})
	doJSON(t, r, http.MethodPost, "/api/ratings", aliceToken, map[string]any{"highlight_id": middle.ID, "value": 2})

	w := doJSON(t, r, http.MethodGet, "/api/top-rated", "", nil)
	requireStatus(t, w, http.StatusOK)

	highlights := decodeBody(t, w)["highlights"].([]any)
	require.Len(t, highlights, 3)

	assert.Equal(t, best.ID, highlights[0].(map[string]any)["id"])
	assert.Equal(t, float64(4), highlights[0].(map[string]any)["average_rating"])
	assert.Equal(t, middle.ID, highlights[1].(map[string]any)["id"])
	assert.Equal(t, float64(2), highlights[1].(map[string]any)["average_rating"])
	assert.Equal(t, unrated.ID, highlights[2].(map[string]any)["id"])
	assert.Equal(t, float64(0), highlights[2].(map[string]any)["average_rating"])
}

func TestTopRatedDateFilterValidation(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/top-rated?start_date=14-09-2025", "", nil)
	requireStatus(t, w, http.StatusBadRequest)

	w = doJSON(t, r, http.MethodGet, "/api/top-rated?start_date=2020-01-01&end_date=2030-01-01", "", nil)
	requireStatus(t, w, http.StatusOK)
}
