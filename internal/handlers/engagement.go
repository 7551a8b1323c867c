package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/logger"
	"github.com/matchreel-dev/matchreel/internal/models"
	"github.com/matchreel-dev/matchreel/internal/types"
	"github.com/matchreel-dev/matchreel/internal/utils"
)

type SubmitRatingRequest struct {
	HighlightID string `json:"highlight_id" binding:"required,uuid"`
	Value       int    `json:"value" binding:"required,min=1,max=5"`
}

type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func fetchHighlight(ctx *gin.Context, id string) (*models.Highlight, bool) {
	var highlight models.Highlight

	if err := db.DB.First(&highlight, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Highlight not found"})
		} else {
			logger.Log.Errorw("failed to fetch highlight", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}

	return &highlight, true
}

// SubmitRating upserts the caller's 1-5 rating for a highlight. A second
// submission updates the stored value instead of adding a row.
func SubmitRating(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body SubmitRatingRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid data"})
		return
	}

	highlight, ok := fetchHighlight(ctx, body.HighlightID)
	if !ok {
		return
	}

	rating := models.Rating{
		UserID:      currentUser.ID,
		HighlightID: highlight.ID,
		Value:       body.Value,
	}

	err = db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "highlight_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rating).Error
	if err != nil {
		logger.Log.Errorw("failed to save rating", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "success", "rating": body.Value})
}

// GetRating returns the caller's rating for a highlight, null when unrated.
func GetRating(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var rating models.Rating
	err = db.DB.Where("user_id = ? AND highlight_id = ?", currentUser.ID, ctx.Param("id")).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusOK, gin.H{"rating": nil})
			return
		}
		logger.Log.Errorw("failed to fetch rating", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"rating": rating.Value})
}

func AddComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	highlight, ok := fetchHighlight(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	var body AddCommentRequest
	if err := ctx.BindJSON(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Comment content is required"})
		return
	}

	comment := models.Comment{
		UserID:      currentUser.ID,
		HighlightID: highlight.ID,
		Content:     strings.TrimSpace(body.Content),
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		logger.Log.Errorw("failed to create comment", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, types.CommentResponse{
		ID:        comment.ID,
		Username:  currentUser.Username,
		AvatarURL: commentAvatarURL(ctx, currentUser.ID),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	})
}

// ListComments returns a highlight's comments newest-first, each with the
// author's avatar resolved to an absolute URL.
func ListComments(ctx *gin.Context) {
	highlight, ok := fetchHighlight(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	var comments []models.Comment
	err := db.DB.Preload("User.Profile").
		Where("highlight_id = ?", highlight.ID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		logger.Log.Errorw("failed to list comments", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		imagePath := comment.User.Profile.ImagePath
		if imagePath == "" {
			imagePath = models.DefaultAvatarPath
		}
		response = append(response, types.CommentResponse{
			ID:        comment.ID,
			Username:  comment.User.Username,
			AvatarURL: utils.AvatarURL(ctx, imagePath),
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"comments": response})
}

func DeleteComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var comment models.Comment
	if err := db.DB.First(&comment, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			logger.Log.Errorw("failed to fetch comment", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if comment.UserID != currentUser.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete someone else's comment"})
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		logger.Log.Errorw("failed to delete comment", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "id": comment.ID})
}

// ToggleFavorite creates the favorite when absent and removes it when
// present.
func ToggleFavorite(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	highlight, ok := fetchHighlight(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	var favorite models.Favorite
	err = db.DB.Where("user_id = ? AND highlight_id = ?", currentUser.ID, highlight.ID).First(&favorite).Error

	switch {
	case err == nil:
		if err := db.DB.Delete(&favorite).Error; err != nil {
			logger.Log.Errorw("failed to remove favorite", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "action": "removed", "favorited": false})
	case errors.Is(err, gorm.ErrRecordNotFound):
		favorite = models.Favorite{UserID: currentUser.ID, HighlightID: highlight.ID}
		if err := db.DB.Create(&favorite).Error; err != nil {
			logger.Log.Errorw("failed to add favorite", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "action": "added", "favorited": true})
	default:
		logger.Log.Errorw("failed to check favorite", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func ListFavorites(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var favorites []models.Favorite
	err = db.DB.Preload("Highlight").
		Where("user_id = ?", currentUser.ID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		logger.Log.Errorw("failed to list favorites", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.HighlightResponse, 0, len(favorites))
	for i := range favorites {
		response = append(response, highlightResponse(ctx, &favorites[i].Highlight, false))
	}

	ctx.JSON(http.StatusOK, gin.H{"favorites": response})
}

// TopRated returns the ten highest-rated highlights, with unrated highlights
// counting as zero. Optional start_date/end_date (YYYY-MM-DD) restrict by
// creation date.
func TopRated(ctx *gin.Context) {
	query := db.DB.Model(&models.Highlight{}).
		Select("highlights.*, COALESCE(AVG(ratings.value), 0) AS avg_rating").
		Joins("LEFT JOIN ratings ON ratings.highlight_id = highlights.id").
		Group("highlights.id")

	if start := ctx.Query("start_date"); start != "" {
		from, err := time.Parse("2006-01-02", start)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("highlights.created_at >= ?", from)
	}

	if end := ctx.Query("end_date"); end != "" {
		to, err := time.Parse("2006-01-02", end)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("highlights.created_at < ?", to.AddDate(0, 0, 1))
	}

	var rows []struct {
		models.Highlight
		AvgRating float64
	}

	if err := query.Order("avg_rating DESC").Limit(10).Scan(&rows).Error; err != nil {
		logger.Log.Errorw("failed to compute top rated", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.HighlightResponse, 0, len(rows))
	for i := range rows {
		entry := highlightResponse(ctx, &rows[i].Highlight, false)
		entry.AverageRating = rows[i].AvgRating
		response = append(response, entry)
	}

	ctx.JSON(http.StatusOK, gin.H{"highlights": response})
}

func commentAvatarURL(ctx *gin.Context, userID uint) string {
	var profile models.Profile
	if err := db.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil || profile.ImagePath == "" {
		return utils.AvatarURL(ctx, models.DefaultAvatarPath)
	}
	return utils.AvatarURL(ctx, profile.ImagePath)
}
