package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/logger"
	"github.com/matchreel-dev/matchreel/internal/models"
	"github.com/matchreel-dev/matchreel/internal/services"
	"github.com/matchreel-dev/matchreel/internal/types"
)

type HighlightRequest struct {
	Name               string  `json:"name" binding:"required"`
	URL                string  `json:"url" binding:"required,url"`
	ManualThumbnailURL *string `json:"manual_thumbnail_url"`
	Description        string  `json:"description"`
	Season             *string `json:"season"`
}

type ImportHighlightsRequest struct {
	CSVContent string `json:"csv_content"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func highlightResponse(ctx *gin.Context, h *models.Highlight, withTeams bool) types.HighlightResponse {
	resp := types.HighlightResponse{
		ID:                 h.ID,
		Name:               h.Name,
		URL:                h.URL,
		ManualThumbnailURL: h.ManualThumbnailURL,
		Description:        h.Description,
		Season:             h.Season,
		CreatedAt:          h.CreatedAt,
	}

	if withTeams {
		home, away := services.ResolveStandings(db.DB, h)
		if home != nil {
			homeResp := standingResponse(ctx, home)
			resp.Home = &homeResp
		}
		if away != nil {
			awayResp := standingResponse(ctx, away)
			resp.Away = &awayResp
		}
	}

	return resp
}

func ListHighlights(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := db.DB.Model(&models.Highlight{})

	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Log.Errorw("failed to count highlights", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve highlights"})
		return
	}

	var highlights []models.Highlight
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&highlights).Error
	if err != nil {
		logger.Log.Errorw("failed to list highlights", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve highlights"})
		return
	}

	response := make([]types.HighlightResponse, 0, len(highlights))
	for i := range highlights {
		response = append(response, highlightResponse(ctx, &highlights[i], false))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"highlights": response,
		"total":      total,
		"page":       page,
		"page_size":  pageSize,
	})
}

func GetHighlight(ctx *gin.Context) {
	var highlight models.Highlight

	if err := db.DB.First(&highlight, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Highlight not found"})
		} else {
			logger.Log.Errorw("failed to fetch highlight", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve highlight"})
		}
		return
	}

	resp := highlightResponse(ctx, &highlight, true)

	var avg float64
	db.DB.Model(&models.Rating{}).
		Where("highlight_id = ?", highlight.ID).
		Select("COALESCE(AVG(value), 0)").
		Scan(&avg)
	resp.AverageRating = avg

	db.DB.Model(&models.Favorite{}).
		Where("highlight_id = ?", highlight.ID).
		Count(&resp.FavoriteCount)

	ctx.JSON(http.StatusOK, gin.H{"highlight": resp})
}

func CreateHighlight(ctx *gin.Context) {
	var body HighlightRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	highlight := models.Highlight{
		Name:               strings.TrimSpace(body.Name),
		URL:                strings.TrimSpace(body.URL),
		ManualThumbnailURL: body.ManualThumbnailURL,
		Description:        strings.TrimSpace(body.Description),
	}

	if body.Season != nil && *body.Season != "" {
		code, ok := services.NormalizeSeason(*body.Season)
		if !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"season": "Unrecognized season"}})
			return
		}
		highlight.Season = &code
	}

	if err := db.DB.Create(&highlight).Error; err != nil {
		logger.Log.Errorw("failed to create highlight", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create highlight"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"highlight": highlightResponse(ctx, &highlight, false)})
}

func UpdateHighlight(ctx *gin.Context) {
	var highlight models.Highlight

	if err := db.DB.First(&highlight, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Highlight not found"})
		} else {
			logger.Log.Errorw("failed to fetch highlight", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve highlight"})
		}
		return
	}

	var body HighlightRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	highlight.Name = strings.TrimSpace(body.Name)
	highlight.URL = strings.TrimSpace(body.URL)
	highlight.ManualThumbnailURL = body.ManualThumbnailURL
	highlight.Description = strings.TrimSpace(body.Description)

	highlight.Season = nil
	if body.Season != nil && *body.Season != "" {
		code, ok := services.NormalizeSeason(*body.Season)
		if !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"season": "Unrecognized season"}})
			return
		}
		highlight.Season = &code
	}

	if err := db.DB.Save(&highlight).Error; err != nil {
		logger.Log.Errorw("failed to update highlight", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update highlight"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"highlight": highlightResponse(ctx, &highlight, false)})
}

func DeleteHighlight(ctx *gin.Context) {
	var highlight models.Highlight

	if err := db.DB.First(&highlight, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Highlight not found"})
		} else {
			logger.Log.Errorw("failed to fetch highlight", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve highlight"})
		}
		return
	}

	if err := db.DB.Delete(&highlight).Error; err != nil {
		logger.Log.Errorw("failed to delete highlight", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete highlight"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ImportHighlights accepts a CSV either as a multipart "csv_file" upload or
// as a "csv_content" string in a JSON body. Malformed rows are skipped and
// reported; surviving rows are inserted in a single transaction.
func ImportHighlights(ctx *gin.Context) {
	content, err := readCSVPayload(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	highlights, skipped, err := services.ParseHighlightsCSV(strings.NewReader(content))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Error processing CSV file: " + err.Error()})
		return
	}

	if len(highlights) > 0 {
		err = db.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&highlights).Error
		})
		if err != nil {
			logger.Log.Errorw("failed to import highlights", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to import highlights"})
			return
		}
	}

	if skipped == nil {
		skipped = []services.SkippedRow{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"created": len(highlights),
		"skipped": skipped,
	})
}

// BulkDeleteHighlights removes a list of highlights by id in one transaction.
func BulkDeleteHighlights(ctx *gin.Context) {
	var body BulkDeleteRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "A non-empty id list is required"})
		return
	}

	var deleted int64

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id IN ?", body.IDs).Delete(&models.Highlight{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		logger.Log.Errorw("failed to bulk delete highlights", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete highlights"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// readCSVPayload pulls CSV text from a multipart upload or a JSON body.
func readCSVPayload(ctx *gin.Context) (string, error) {
	if file, err := ctx.FormFile("csv_file"); err == nil {
		if !strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
			return "", errors.New("File must be a CSV file")
		}
		src, err := file.Open()
		if err != nil {
			return "", errors.New("Unable to read uploaded file")
		}
		defer src.Close()

		data, err := readAllBounded(src, 10<<20)
		if err != nil {
			return "", errors.New("Unable to read uploaded file")
		}
		return strings.TrimPrefix(string(data), "\uFEFF"), nil
	}

	var body ImportHighlightsRequest
	if err := ctx.BindJSON(&body); err != nil || strings.TrimSpace(body.CSVContent) == "" {
		return "", errors.New("CSV content is required")
	}
	return strings.TrimPrefix(body.CSVContent, "\uFEFF"), nil
}

func readAllBounded(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
