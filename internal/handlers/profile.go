package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/logger"
	"github.com/matchreel-dev/matchreel/internal/models"
	"github.com/matchreel-dev/matchreel/internal/storage"
	"github.com/matchreel-dev/matchreel/internal/utils"
)

type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type UploadAvatarRequest struct {
	Image string `json:"image" binding:"required"` // base64 data-URL
}

func GetProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.Preload("Profile").First(&user, currentUser.ID).Error; err != nil {
		logger.Log.Errorw("failed to fetch profile", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(ctx, &user, &user.Profile)})
}

func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateProfileRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User
	if err := db.DB.Preload("Profile").First(&user, currentUser.ID).Error; err != nil {
		logger.Log.Errorw("failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updates := make(map[string]interface{})

	if username := strings.TrimSpace(body.Username); username != "" && username != user.Username {
		var existing models.User
		err := db.DB.Where("username = ? AND id != ?", username, user.ID).First(&existing).Error
		if err == nil {
			ctx.JSON(http.StatusConflict, gin.H{"errors": gin.H{"username": "An account with this username already exists"}})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Errorw("failed to check existing username", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		updates["username"] = username
	}

	if body.Email != "" {
		email := strings.ToLower(strings.TrimSpace(body.Email))
		if email != user.Email {
			var existing models.User
			err := db.DB.Where("email = ? AND id != ?", email, user.ID).First(&existing).Error
			if err == nil {
				ctx.JSON(http.StatusConflict, gin.H{"errors": gin.H{"email": "An account with this email address already exists"}})
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Log.Errorw("failed to check existing email", "error", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			updates["email"] = email
		}
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		logger.Log.Errorw("failed to update profile", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Preload("Profile").First(&user, user.ID).Error; err != nil {
		logger.Log.Errorw("failed to refresh user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    userResponse(ctx, &user, &user.Profile),
	})
}

// UploadAvatar accepts either a multipart file upload (field "image") or a
// JSON body carrying a base64 data-URL, replacing the stored avatar.
func UploadAvatar(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	data, ext, err := readAvatarPayload(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var profile models.Profile
	if err := db.DB.Where("user_id = ?", currentUser.ID).First(&profile).Error; err != nil {
		logger.Log.Errorw("failed to fetch profile", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	store := avatarStore()

	relPath, err := store.Save(currentUser.ID, ext, data)
	if err != nil {
		logger.Log.Errorw("failed to store avatar", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	oldImage := profile.ImagePath

	if err := db.DB.Model(&profile).Update("image_path", relPath).Error; err != nil {
		logger.Log.Errorw("failed to update profile image", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// The previous file is removed only after the row points at the new one;
	// the shared default placeholder is never deleted.
	if err := store.Delete(oldImage); err != nil {
		logger.Log.Warnw("failed to remove old avatar", "error", err, "path", oldImage)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Avatar updated successfully",
		"avatar_url": utils.AvatarURL(ctx, relPath),
	})
}

func readAvatarPayload(ctx *gin.Context) ([]byte, string, error) {
	if file, err := ctx.FormFile("image"); err == nil {
		src, err := file.Open()
		if err != nil {
			return nil, "", errors.New("unable to read uploaded file")
		}
		defer src.Close()

		data, err := io.ReadAll(io.LimitReader(src, 5<<20))
		if err != nil {
			return nil, "", errors.New("unable to read uploaded file")
		}
		if len(data) == 0 {
			return nil, "", errors.New("uploaded file is empty")
		}

		ext := strings.TrimPrefix(filepath.Ext(file.Filename), ".")
		return data, ext, nil
	}

	var body UploadAvatarRequest
	if err := ctx.BindJSON(&body); err != nil {
		return nil, "", errors.New("an image file or base64 payload is required")
	}

	return storage.DecodeImageDataURL(body.Image)
}
