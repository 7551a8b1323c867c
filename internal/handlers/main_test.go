package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/auth"
	"github.com/matchreel-dev/matchreel/internal/config"
	"github.com/matchreel-dev/matchreel/internal/models"
	"github.com/matchreel-dev/matchreel/internal/router"
)

var testDBSeq atomic.Int64

// setupRouter points the global DB at a fresh in-memory database, migrates
// the schema and returns the full route tree so tests exercise the real
// middleware chain.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	db.DB = gdb
	require.NoError(t, db.MigrateDatabase())
	require.NoError(t, auth.InitJWTSecret("test-secret"))

	cfg := &config.Config{
		Port:           "0",
		MediaDir:       t.TempDir(),
		Timezone:       "UTC",
		BaseURL:        "http://testserver",
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	config.Current = cfg

	return router.NewRouter(cfg)
}

// createUser inserts a user with a usable password and returns it together
// with a session token.
func createUser(t *testing.T, username string, staff bool) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsStaff:      staff,
		Profile:      models.Profile{ImagePath: models.DefaultAvatarPath},
	}
	require.NoError(t, db.DB.Create(&user).Error)

	token, err := auth.GenerateJWT(user.ID, user.Email)
	require.NoError(t, err)

	return user, token
}

func createHighlight(t *testing.T, name string, season string) models.Highlight {
	t.Helper()

	highlight := models.Highlight{Name: name, URL: "http://example.com/watch"}
	if season != "" {
		highlight.Season = &season
	}
	require.NoError(t, db.DB.Create(&highlight).Error)
	return highlight
}

func createStanding(t *testing.T, season string, position int, team string, points int, uploadedBy uint) models.Standing {
	t.Helper()

	standing := models.Standing{
		Season:       season,
		Position:     position,
		Team:         team,
		Points:       points,
		UploadedByID: uploadedBy,
	}
	require.NoError(t, db.DB.Create(&standing).Error)
	return standing
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}

// itoa renders an id decoded from JSON (always a float64) as a path segment.
func itoa(id float64) string {
	return strconv.FormatInt(int64(id), 10)
}
