package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/auth"
	"github.com/matchreel-dev/matchreel/internal/config"
	"github.com/matchreel-dev/matchreel/internal/logger"
	"github.com/matchreel-dev/matchreel/internal/mailer"
	"github.com/matchreel-dev/matchreel/internal/models"
	"github.com/matchreel-dev/matchreel/internal/storage"
	"github.com/matchreel-dev/matchreel/internal/types"
	"github.com/matchreel-dev/matchreel/internal/utils"
)

type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ConfirmResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type GoogleLoginRequest struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
}

func cookieDomain() string {
	if config.Current == nil {
		return ""
	}
	return config.Current.Domain
}

func setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Domain:   cookieDomain(),
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

func avatarStore() *storage.AvatarStore {
	root := "./media"
	if config.Current != nil && config.Current.MediaDir != "" {
		root = config.Current.MediaDir
	}
	return storage.NewAvatarStore(root)
}

// validatePassword applies the registration password policy on top of the
// binding-level minimum length.
func validatePassword(password string) error {
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return fmt.Errorf("password cannot be entirely numeric")
	}
	return nil
}

func userResponse(ctx *gin.Context, user *models.User, profile *models.Profile) types.UserResponse {
	imagePath := models.DefaultAvatarPath
	if profile != nil && profile.ImagePath != "" {
		imagePath = profile.ImagePath
	}
	return types.UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsStaff:     user.IsStaff,
		AvatarURL:   utils.AvatarURL(ctx, imagePath),
		HasPassword: user.HasUsablePassword(),
	}
}

func Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	body.Username = strings.TrimSpace(body.Username)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	if body.Password != body.PasswordConfirm {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"password_confirm": "Passwords do not match"}})
		return
	}

	if err := validatePassword(body.Password); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"password": err.Error()}})
		return
	}

	var existing models.User

	err := db.DB.Where("username = ?", body.Username).First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"errors": gin.H{"username": "An account with this username already exists"}})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Errorw("failed to check existing username", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	err = db.DB.Where("email = ?", body.Email).First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"errors": gin.H{"email": "An account with this email address already exists"}})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Errorw("failed to check existing email", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Username:     body.Username,
		Email:        body.Email,
		PasswordHash: string(passwordHash),
	}

	// Profile creation is an explicit part of account creation, inside the
	// same transaction, so a user row never exists without its profile.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		profile := models.Profile{UserID: newUser.ID, ImagePath: models.DefaultAvatarPath}
		return tx.Create(&profile).Error
	})
	if err != nil {
		logger.Log.Errorw("failed to create user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := auth.GenerateJWT(newUser.ID, newUser.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	setSessionCookie(ctx, token, 60*60*24*7)

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userResponse(ctx, &newUser, nil),
	})
}

func Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	identifier := strings.TrimSpace(body.Username)

	var user models.User

	err := db.DB.Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
			return
		}
		logger.Log.Errorw("failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !user.HasUsablePassword() ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	setSessionCookie(ctx, token, 60*60*24*7)

	var profile models.Profile
	db.DB.Where("user_id = ?", user.ID).First(&profile)

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(ctx, &user, &profile),
	})
}

func Logout(ctx *gin.Context) {
	setSessionCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.Preload("Profile").First(&user, currentUser.ID).Error; err != nil {
		logger.Log.Errorw("failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(ctx, &user, &user.Profile)})
}

func ChangePassword(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ChangePasswordRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		logger.Log.Errorw("failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !user.HasUsablePassword() ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.CurrentPassword)) != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"current_password": "Current password is incorrect"}})
		return
	}

	if body.NewPassword == body.CurrentPassword {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"new_password": "New password must differ from the current one"}})
		return
	}

	if err := validatePassword(body.NewPassword); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"new_password": err.Error()}})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Model(&user).Update("password_hash", string(passwordHash)).Error; err != nil {
		logger.Log.Errorw("failed to update password", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func RequestPasswordReset(ctx *gin.Context) {
	var body ResetPasswordRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User
	err := db.DB.Where("email = ?", email).First(&user).Error

	// The response never reveals whether an account exists.
	if err == nil {
		token, tokenErr := auth.GeneratePasswordResetToken(user.ID)
		if tokenErr != nil {
			logger.Log.Errorw("failed to generate reset token", "error", tokenErr)
		} else if mailErr := mailer.New(config.Current).SendPasswordReset(user.Email, token); mailErr != nil {
			logger.Log.Errorw("failed to send reset email", "error", mailErr, "user_id", user.ID)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Errorw("failed to look up account for reset", "error", err)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "If an account exists for that address, a reset email has been sent"})
}

func ConfirmPasswordReset(ctx *gin.Context) {
	var body ConfirmResetRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := auth.VerifyPasswordResetToken(body.Token)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := validatePassword(body.NewPassword); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"new_password": err.Error()}})
		return
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Model(&user).Update("password_hash", string(passwordHash)).Error; err != nil {
		logger.Log.Errorw("failed to reset password", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

func DeleteAccount(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.Preload("Profile").First(&user, currentUser.ID).Error; err != nil {
		logger.Log.Errorw("failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Password-holding accounts must confirm; social-only accounts have no
	// password to confirm with.
	if user.HasUsablePassword() {
		var body struct {
			Password string `json:"password" binding:"required"`
		}
		if err := ctx.BindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Password is required for account deletion"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect password"})
			return
		}
	}

	oldImage := user.Profile.ImagePath

	// Ratings, comments, favorites and the profile cascade via FK constraints.
	if err := db.DB.Delete(&user).Error; err != nil {
		logger.Log.Errorw("failed to delete user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Post-commit cleanup: stored file removal only after the row is gone.
	if err := avatarStore().Delete(oldImage); err != nil {
		logger.Log.Warnw("failed to remove avatar file", "error", err, "path", oldImage)
	}

	setSessionCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
