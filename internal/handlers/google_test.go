package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/models"
)

func TestGoogleLoginCreatesAccountOnFirstSignIn(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/google", "",
		map[string]any{"email": "New.Fan@gmail.com"})
	requireStatus(t, w, http.StatusCreated)

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "new.fan", user["username"])
	assert.Equal(t, "new.fan@gmail.com", user["email"])
	// social-only accounts have no usable password
	assert.Equal(t, false, user["has_password"])

	// second sign-in reuses the account
	w = doJSON(t, r, http.MethodPost, "/api/auth/google", "",
		map[string]any{"email": "new.fan@gmail.com"})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, user["id"], decodeBody(t, w)["user"].(map[string]any)["id"])

	var count int64
	require.NoError(t, db.DB.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGoogleLoginSuffixesTakenUsername(t *testing.T) {
	r := setupRouter(t)
	createUser(t, "fan", false) // fan@example.com

	w := doJSON(t, r, http.MethodPost, "/api/auth/google", "",
		map[string]any{"email": "fan@gmail.com"})
	requireStatus(t, w, http.StatusCreated)
	assert.Equal(t, "fan1", decodeBody(t, w)["user"].(map[string]any)["username"])
}

func TestGoogleLoginMatchesExistingAccountByEmail(t *testing.T) {
	r := setupRouter(t)
	existing, _ := createUser(t, "fan", false)

	w := doJSON(t, r, http.MethodPost, "/api/auth/google", "",
		map[string]any{"email": "fan@example.com"})
	requireStatus(t, w, http.StatusOK)

	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, float64(existing.ID), user["id"])
	// the password set at registration survives social sign-in
	assert.Equal(t, true, user["has_password"])
}

func TestGoogleLoginRequiresTokenOrEmail(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/google", "", map[string]any{})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestSocialOnlyAccountDeletesWithoutPassword(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/google", "",
		map[string]any{"email": "social@gmail.com"})
	requireStatus(t, w, http.StatusCreated)
	token := decodeBody(t, w)["token"].(string)

	w = doJSON(t, r, http.MethodDelete, "/api/auth/account", token, nil)
	requireStatus(t, w, http.StatusOK)

	var count int64
	require.NoError(t, db.DB.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
