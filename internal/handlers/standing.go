package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/logger"
	"github.com/matchreel-dev/matchreel/internal/models"
	"github.com/matchreel-dev/matchreel/internal/services"
	"github.com/matchreel-dev/matchreel/internal/types"
	"github.com/matchreel-dev/matchreel/internal/utils"
)

type StandingRequest struct {
	Season       string `json:"season" binding:"required"`
	Position     int    `json:"position" binding:"required"`
	Team         string `json:"team" binding:"required"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Drawn        int    `json:"drawn"`
	Lost         int    `json:"lost"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	Points       int    `json:"points"`
}

type UploadStandingsRequest struct {
	Season     string `json:"season"`
	CSVContent string `json:"csv_content"`
}

type ClearSeasonRequest struct {
	Season string `json:"season" binding:"required"`
}

func standingResponse(ctx *gin.Context, s *models.Standing) types.StandingResponse {
	return types.StandingResponse{
		ID:             s.ID,
		Season:         s.Season,
		Position:       s.Position,
		Team:           s.Team,
		CalendarTeam:   services.CalendarTeamName(s.Team),
		Played:         s.Played,
		Won:            s.Won,
		Drawn:          s.Drawn,
		Lost:           s.Lost,
		GoalsFor:       s.GoalsFor,
		GoalsAgainst:   s.GoalsAgainst,
		GoalDifference: s.GoalDifference,
		Points:         s.Points,
		LogoURL:        utils.AbsoluteURL(ctx, services.TeamLogoPath(s.Team)),
	}
}

func ListStandings(ctx *gin.Context) {
	query := db.DB.Model(&models.Standing{})

	if season := strings.TrimSpace(ctx.Query("season")); season != "" {
		query = query.Where("season = ?", season)
	}

	var standings []models.Standing
	if err := query.Order("season, position").Find(&standings).Error; err != nil {
		logger.Log.Errorw("failed to list standings", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve standings"})
		return
	}

	response := make([]types.StandingResponse, 0, len(standings))
	for i := range standings {
		response = append(response, standingResponse(ctx, &standings[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"standings": response})
}

func ListSeasons(ctx *gin.Context) {
	var seasons []string

	err := db.DB.Model(&models.Standing{}).
		Distinct("season").
		Order("season").
		Pluck("season", &seasons).Error
	if err != nil {
		logger.Log.Errorw("failed to list seasons", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve seasons"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"seasons": seasons})
}

func validateStandingInput(body *StandingRequest) (string, map[string]string) {
	fieldErrors := make(map[string]string)

	season, ok := services.NormalizeSeason(body.Season)
	if !ok {
		fieldErrors["season"] = fmt.Sprintf("Invalid season. Allowed: %s", strings.Join(services.KnownSeasons(), ", "))
	}
	if body.Position < models.MinStandingPosition || body.Position > models.MaxStandingPosition {
		fieldErrors["position"] = fmt.Sprintf("Position must be between %d and %d", models.MinStandingPosition, models.MaxStandingPosition)
	}
	if strings.TrimSpace(body.Team) == "" {
		fieldErrors["team"] = "Team is required"
	}

	if len(fieldErrors) > 0 {
		return "", fieldErrors
	}
	return season, nil
}

func positionTaken(season string, position int, excludeID uint) (bool, error) {
	var count int64
	query := db.DB.Model(&models.Standing{}).Where("season = ? AND position = ?", season, position)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func CreateStanding(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body StandingRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid request"})
		return
	}

	season, fieldErrors := validateStandingInput(&body)
	if fieldErrors != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Validation failed", "errors": fieldErrors})
		return
	}

	taken, err := positionTaken(season, body.Position, 0)
	if err != nil {
		logger.Log.Errorw("failed to check position", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
		return
	}
	if taken {
		ctx.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": "Position already exists for this season.",
			"errors":  gin.H{"position": "This position is already used for the selected season."},
		})
		return
	}

	standing := models.Standing{
		Season:       season,
		Position:     body.Position,
		Team:         strings.TrimSpace(body.Team),
		Played:       body.Played,
		Won:          body.Won,
		Drawn:        body.Drawn,
		Lost:         body.Lost,
		GoalsFor:     body.GoalsFor,
		GoalsAgainst: body.GoalsAgainst,
		// Goal difference is always derived server-side.
		GoalDifference: body.GoalsFor - body.GoalsAgainst,
		Points:         body.Points,
		UploadedByID:   currentUser.ID,
	}

	if err := db.DB.Create(&standing).Error; err != nil {
		// The unique index is the backstop for concurrent writes.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{
				"status":  "error",
				"message": "Position already exists for this season.",
				"errors":  gin.H{"position": "This position is already used for the selected season."},
			})
			return
		}
		logger.Log.Errorw("failed to create standing", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"status":   "success",
		"message":  "Standing created successfully.",
		"standing": standingResponse(ctx, &standing),
	})
}

func UpdateStanding(ctx *gin.Context) {
	var standing models.Standing

	if err := db.DB.First(&standing, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Standing not found."})
		} else {
			logger.Log.Errorw("failed to fetch standing", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
		}
		return
	}

	var body StandingRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid request"})
		return
	}

	season, fieldErrors := validateStandingInput(&body)
	if fieldErrors != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Validation failed", "errors": fieldErrors})
		return
	}

	taken, err := positionTaken(season, body.Position, standing.ID)
	if err != nil {
		logger.Log.Errorw("failed to check position", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
		return
	}
	if taken {
		ctx.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": "Position already exists for this season.",
			"errors":  gin.H{"position": "This position is already used for the selected season."},
		})
		return
	}

	standing.Season = season
	standing.Position = body.Position
	standing.Team = strings.TrimSpace(body.Team)
	standing.Played = body.Played
	standing.Won = body.Won
	standing.Drawn = body.Drawn
	standing.Lost = body.Lost
	standing.GoalsFor = body.GoalsFor
	standing.GoalsAgainst = body.GoalsAgainst
	standing.GoalDifference = body.GoalsFor - body.GoalsAgainst
	standing.Points = body.Points

	if err := db.DB.Save(&standing).Error; err != nil {
		logger.Log.Errorw("failed to update standing", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Standing updated successfully.",
		"standing": standingResponse(ctx, &standing),
	})
}

func DeleteStanding(ctx *gin.Context) {
	var standing models.Standing

	if err := db.DB.First(&standing, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Standing not found."})
		} else {
			logger.Log.Errorw("failed to fetch standing", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
		}
		return
	}

	if err := db.DB.Delete(&standing).Error; err != nil {
		logger.Log.Errorw("failed to delete standing", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "Standing deleted successfully."})
}

func ClearSeason(ctx *gin.Context) {
	var body ClearSeasonRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Season is required."})
		return
	}

	season := strings.TrimSpace(body.Season)

	result := db.DB.Where("season = ?", season).Delete(&models.Standing{})
	if result.Error != nil {
		logger.Log.Errorw("failed to clear season", "error", result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Deleted %d standings for season %s.", result.RowsAffected, season),
		"deleted": result.RowsAffected,
	})
}

// UploadStandings replaces a season's whole table from a CSV. Any invalid
// row rejects the entire upload; the previous rows survive untouched.
func UploadStandings(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "User not authenticated"})
		return
	}

	season, content, err := readStandingsUpload(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	seasonCode, ok := services.NormalizeSeason(season)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": fmt.Sprintf("Invalid season '%s'. Allowed: %s.", season, strings.Join(services.KnownSeasons(), ", ")),
		})
		return
	}

	standings, err := services.ParseStandingsCSV(strings.NewReader(content), seasonCode, currentUser.ID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	// Replace-by-season: delete and insert inside one transaction so a
	// failure leaves the previous table intact.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("season = ?", seasonCode).Delete(&models.Standing{}).Error; err != nil {
			return err
		}
		return tx.Create(&standings).Error
	})
	if err != nil {
		logger.Log.Errorw("failed to upload standings", "error", err, "season", seasonCode)
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to save standings"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Successfully uploaded standings for season %s", seasonCode),
		"season":  seasonCode,
	})
}

// readStandingsUpload accepts either a multipart csv_file + season form or a
// JSON body with csv_content + season, mirroring the web and mobile clients.
func readStandingsUpload(ctx *gin.Context) (season, content string, err error) {
	if file, fileErr := ctx.FormFile("csv_file"); fileErr == nil {
		season = strings.TrimSpace(ctx.PostForm("season"))
		if season == "" {
			return "", "", errors.New("Season is required.")
		}
		if !strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
			return "", "", errors.New("File must be a CSV file")
		}
		src, openErr := file.Open()
		if openErr != nil {
			return "", "", errors.New("Unable to read uploaded file")
		}
		defer src.Close()

		data, readErr := readAllBounded(src, 10<<20)
		if readErr != nil {
			return "", "", errors.New("Unable to read uploaded file")
		}
		return season, strings.TrimPrefix(string(data), "\uFEFF"), nil
	}

	var body UploadStandingsRequest
	if err := ctx.BindJSON(&body); err != nil {
		return "", "", errors.New("Season and CSV content are required.")
	}

	season = strings.TrimSpace(body.Season)
	content = strings.TrimPrefix(body.CSVContent, "\uFEFF")

	if season == "" {
		return "", "", errors.New("Season is required.")
	}
	if strings.TrimSpace(content) == "" {
		return "", "", errors.New("CSV content is required.")
	}

	return season, content, nil
}
