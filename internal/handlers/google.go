package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/auth"
	"github.com/matchreel-dev/matchreel/internal/logger"
	"github.com/matchreel-dev/matchreel/internal/models"
)

var usernameSanitizer = regexp.MustCompile(`[^a-z0-9._-]`)

// GoogleLogin signs a user in with a Google access token, creating the
// account on first login. When no token is supplied the client may fall back
// to sending its verified email directly.
func GoogleLogin(ctx *gin.Context) {
	var body GoogleLoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var (
		info    *auth.GoogleUserInfo
		rawInfo []byte
	)

	switch {
	case body.AccessToken != "":
		verified, raw, err := auth.FetchGoogleUserInfo(ctx.Request.Context(), body.AccessToken)
		if err != nil {
			logger.Log.Infow("google token verification failed", "error", err)
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
			return
		}
		info = verified
		rawInfo = raw
	case body.Email != "":
		info = &auth.GoogleUserInfo{Email: strings.ToLower(strings.TrimSpace(body.Email))}
	default:
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Google token is required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(info.Email))

	var user models.User
	err := db.DB.Preload("Profile").Where("email = ?", email).First(&user).Error

	created := false

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = createGoogleUser(email, info, rawInfo)
		if err != nil {
			logger.Log.Errorw("failed to create google user", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		created = true
	} else if err != nil {
		logger.Log.Errorw("failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !created {
		linkGoogleAccount(&user, info, rawInfo)
	}

	// Import the Google avatar only while the profile still shows the
	// default placeholder; an avatar the user chose is never overwritten.
	if info.Picture != "" && !user.Profile.HasCustomImage() {
		importGoogleAvatar(ctx, &user, info.Picture)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	setSessionCookie(ctx, token, 60*60*24*7)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	ctx.JSON(status, gin.H{
		"token": token,
		"user":  userResponse(ctx, &user, &user.Profile),
	})
}

func createGoogleUser(email string, info *auth.GoogleUserInfo, rawInfo []byte) (models.User, error) {
	username, err := generateUniqueUsername(email)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username: username,
		Email:    email,
	}
	if info.Sub != "" {
		user.GoogleID = &info.Sub
	}
	if len(rawInfo) > 0 {
		user.GoogleProfile = datatypes.JSON(rawInfo)
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{UserID: user.ID, ImagePath: models.DefaultAvatarPath}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})

	return user, err
}

// linkGoogleAccount records the Google identity on an existing account the
// first time it signs in socially.
func linkGoogleAccount(user *models.User, info *auth.GoogleUserInfo, rawInfo []byte) {
	updates := make(map[string]interface{})

	if user.GoogleID == nil && info.Sub != "" {
		updates["google_id"] = info.Sub
	}
	if len(user.GoogleProfile) == 0 && len(rawInfo) > 0 {
		updates["google_profile"] = datatypes.JSON(rawInfo)
	}

	if len(updates) == 0 {
		return
	}

	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		logger.Log.Warnw("failed to link google account", "error", err, "user_id", user.ID)
	}
}

func importGoogleAvatar(ctx *gin.Context, user *models.User, pictureURL string) {
	data, err := auth.FetchGoogleAvatar(ctx.Request.Context(), pictureURL)
	if err != nil {
		// Degrade silently: login succeeds without the avatar.
		logger.Log.Infow("skipping google avatar import", "error", err, "user_id", user.ID)
		return
	}

	relPath, err := avatarStore().Save(user.ID, "jpg", data)
	if err != nil {
		logger.Log.Warnw("failed to store google avatar", "error", err, "user_id", user.ID)
		return
	}

	if err := db.DB.Model(&user.Profile).Update("image_path", relPath).Error; err != nil {
		logger.Log.Warnw("failed to update profile image", "error", err, "user_id", user.ID)
		return
	}
	user.Profile.ImagePath = relPath
}

// generateUniqueUsername derives a username from the email local-part,
// suffixing a counter until it is free.
func generateUniqueUsername(email string) (string, error) {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	base = usernameSanitizer.ReplaceAllString(base, "")
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := db.DB.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
