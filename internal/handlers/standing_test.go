package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/models"
)

func TestCreateStanding(t *testing.T) {
	r := setupRouter(t)
	_, staffToken := createUser(t, "admin", true)

	w := doJSON(t, r, http.MethodPost, "/api/standings", staffToken, map[string]any{
		"season":        "2024/2025",
		"position":      1,
		"team":          "Arsenal",
		"played":        10,
		"won":           8,
		"drawn":         1,
		"lost":          1,
		"goals_for":     24,
		"goals_against": 8,
		"points":        25,
	})
	requireStatus(t, w, http.StatusCreated)

	standing := decodeBody(t, w)["standing"].(map[string]any)
	assert.Equal(t, "24/25", standing["season"])
	// goal difference is derived, never taken from the client
	assert.Equal(t, float64(16), standing["goal_difference"])
	assert.Equal(t, "Arsenal FC", standing["calendar_team"])
	assert.Contains(t, standing["logo_url"], "england_arsenal_256x256.png")
}

func TestCreateStandingPositionConflict(t *testing.T) {
	r := setupRouter(t)
	staff, staffToken := createUser(t, "admin", true)
	createStanding(t, "24/25", 1, "Arsenal", 25, staff.ID)

	w := doJSON(t, r, http.MethodPost, "/api/standings", staffToken, map[string]any{
		"season":   "24/25",
		"position": 1,
		"team":     "Chelsea",
	})
	requireStatus(t, w, http.StatusConflict)

	// same position in a different season is fine
	w = doJSON(t, r, http.MethodPost, "/api/standings", staffToken, map[string]any{
		"season":   "23/24",
		"position": 1,
		"team":     "Chelsea",
	})
	requireStatus(t, w, http.StatusCreated)
}

func TestCreateStandingValidation(t *testing.T) {
	r := setupRouter(t)
	_, staffToken := createUser(t, "admin", true)

	w := doJSON(t, r, http.MethodPost, "/api/standings", staffToken, map[string]any{
		"season":   "1999/2000",
		"position": 21,
		"team":     "  ",
	})
	requireStatus(t, w, http.StatusBadRequest)

	body := decodeBody(t, w)
	fieldErrors := body["errors"].(map[string]any)
	assert.Contains(t, fieldErrors, "season")
	assert.Contains(t, fieldErrors, "position")
	assert.Contains(t, fieldErrors, "team")
}

func TestStandingsRequireStaff(t *testing.T) {
	r := setupRouter(t)
	_, fanToken := createUser(t, "fan", false)

	w := doJSON(t, r, http.MethodPost, "/api/standings", fanToken, map[string]any{
		"season": "24/25", "position": 1, "team": "Arsenal",
	})
	requireStatus(t, w, http.StatusForbidden)

	w = doJSON(t, r, http.MethodPost, "/api/standings/upload", fanToken,
		map[string]any{"season": "24/25", "csv_content": "x"})
	requireStatus(t, w, http.StatusForbidden)
}

func TestListStandingsFiltersBySeason(t *testing.T) {
	r := setupRouter(t)
	staff, _ := createUser(t, "admin", true)
	createStanding(t, "24/25", 2, "Chelsea", 23, staff.ID)
	createStanding(t, "24/25", 1, "Arsenal", 25, staff.ID)
	createStanding(t, "23/24", 1, "Manchester City", 28, staff.ID)

	w := doJSON(t, r, http.MethodGet, "/api/standings?season=24/25", "", nil)
	requireStatus(t, w, http.StatusOK)

	standings := decodeBody(t, w)["standings"].([]any)
	require.Len(t, standings, 2)
	// ordered by position within the season
	assert.Equal(t, "Arsenal", standings[0].(map[string]any)["team"])
	assert.Equal(t, "Chelsea", standings[1].(map[string]any)["team"])

	w = doJSON(t, r, http.MethodGet, "/api/standings/seasons", "", nil)
	requireStatus(t, w, http.StatusOK)
	seasons := decodeBody(t, w)["seasons"].([]any)
	assert.Equal(t, []any{"23/24", "24/25"}, seasons)
}

func TestUploadStandingsReplacesSeason(t *testing.T) {
	r := setupRouter(t)
	_, staffToken := createUser(t, "admin", true)

	csv := "pos,team,pld,w,d,l,gf,ga,gd,pts\n" +
		"1,Arsenal,10,8,1,1,24,8,16,25\n" +
		"2,Chelsea,10,7,2,1,20,10,10,23\n"

	w := doJSON(t, r, http.MethodPost, "/api/standings/upload", staffToken,
		map[string]any{"season": "2024/2025", "csv_content": csv})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "24/25", decodeBody(t, w)["season"])

	count := func() int64 {
		var n int64
		require.NoError(t, db.DB.Model(&models.Standing{}).Where("season = ?", "24/25").Count(&n).Error)
		return n
	}
	require.EqualValues(t, 2, count())

	// a second upload replaces the season, not appends to it
	w = doJSON(t, r, http.MethodPost, "/api/standings/upload", staffToken,
		map[string]any{"season": "24/25", "csv_content": "pos,team,pld,w,d,l,gf,ga,gd,pts\n1,Liverpool,10,9,0,1,30,9,21,27\n"})
	requireStatus(t, w, http.StatusOK)
	require.EqualValues(t, 1, count())

	var survivor models.Standing
	require.NoError(t, db.DB.Where("season = ?", "24/25").First(&survivor).Error)
	assert.Equal(t, "Liverpool", survivor.Team)
}

func TestUploadStandingsStripsBOM(t *testing.T) {
	r := setupRouter(t)
	_, staffToken := createUser(t, "admin", true)

	csv := "\uFEFFpos,team,pld,w,d,l,gf,ga,gd,pts\n1,Arsenal,10,8,1,1,24,8,16,25\n"

	w := doJSON(t, r, http.MethodPost, "/api/standings/upload", staffToken,
		map[string]any{"season": "24/25", "csv_content": csv})
	requireStatus(t, w, http.StatusOK)

	var standing models.Standing
	require.NoError(t, db.DB.Where("season = ?", "24/25").First(&standing).Error)
	assert.Equal(t, "Arsenal", standing.Team)
}

func TestCreateStandingDuplicateKeyTranslated(t *testing.T) {
	setupRouter(t)
	staff, _ := createUser(t, "admin", true)
	createStanding(t, "24/25", 1, "Arsenal", 25, staff.ID)

	// the unique index backstop surfaces as gorm.ErrDuplicatedKey, which the
	// create handler maps to 409 instead of a generic 500
	err := db.DB.Create(&models.Standing{
		Season: "24/25", Position: 1, Team: "Chelsea", UploadedByID: staff.ID,
	}).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUploadStandingsAllOrNothing(t *testing.T) {
	r := setupRouter(t)
	staff, staffToken := createUser(t, "admin", true)
	createStanding(t, "24/25", 1, "Arsenal", 25, staff.ID)

	// duplicate position rejects the whole upload
	bad := "pos,team,pld,w,d,l,gf,ga,gd,pts\n" +
		"1,Liverpool,10,9,0,1,30,9,21,27\n" +
		"1,Chelsea,10,7,2,1,20,10,10,23\n"

	w := doJSON(t, r, http.MethodPost, "/api/standings/upload", staffToken,
		map[string]any{"season": "24/25", "csv_content": bad})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, decodeBody(t, w)["message"], "duplicate position")

	// the previous table is untouched
	var survivor models.Standing
	require.NoError(t, db.DB.Where("season = ?", "24/25").First(&survivor).Error)
	assert.Equal(t, "Arsenal", survivor.Team)
}

func TestUploadStandingsUnknownSeason(t *testing.T) {
	r := setupRouter(t)
	_, staffToken := createUser(t, "admin", true)

	w := doJSON(t, r, http.MethodPost, "/api/standings/upload", staffToken,
		map[string]any{"season": "1999/2000", "csv_content": "pos,team,pld,w,d,l,gf,ga,gd,pts\n1,Arsenal,1,1,0,0,2,0,2,3\n"})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, decodeBody(t, w)["message"], "Invalid season")
}

func TestClearSeason(t *testing.T) {
	r := setupRouter(t)
	staff, staffToken := createUser(t, "admin", true)
	createStanding(t, "24/25", 1, "Arsenal", 25, staff.ID)
	createStanding(t, "24/25", 2, "Chelsea", 23, staff.ID)
	createStanding(t, "23/24", 1, "Manchester City", 28, staff.ID)

	w := doJSON(t, r, http.MethodPost, "/api/standings/clear-season", staffToken,
		map[string]any{"season": "24/25"})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, float64(2), decodeBody(t, w)["deleted"])

	var remaining int64
	require.NoError(t, db.DB.Model(&models.Standing{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}

func TestUpdateStandingMovesPosition(t *testing.T) {
	r := setupRouter(t)
	staff, staffToken := createUser(t, "admin", true)
	standing := createStanding(t, "24/25", 3, "Arsenal", 25, staff.ID)
	createStanding(t, "24/25", 1, "Liverpool", 27, staff.ID)

	// moving onto an occupied position conflicts
	w := doJSON(t, r, http.MethodPut, "/api/standings/"+itoa(float64(standing.ID)), staffToken, map[string]any{
		"season": "24/25", "position": 1, "team": "Arsenal",
	})
	requireStatus(t, w, http.StatusConflict)

	// keeping its own position is not a conflict with itself
	w = doJSON(t, r, http.MethodPut, "/api/standings/"+itoa(float64(standing.ID)), staffToken, map[string]any{
		"season": "24/25", "position": 3, "team": "Arsenal", "goals_for": 24, "goals_against": 8,
	})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, float64(16), decodeBody(t, w)["standing"].(map[string]any)["goal_difference"])
}
