package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/config"
	"github.com/matchreel-dev/matchreel/internal/logger"
	"github.com/matchreel-dev/matchreel/internal/models"
	"github.com/matchreel-dev/matchreel/internal/services"
	"github.com/matchreel-dev/matchreel/internal/types"
)

type ScheduleRequest struct {
	TeamOne     string  `json:"team_1" binding:"required"`
	TeamOneLogo *string `json:"team_1_logo"`
	TeamTwo     string  `json:"team_2" binding:"required"`
	TeamTwoLogo *string `json:"team_2_logo"`
	Date        string  `json:"date" binding:"required"`
	Time        string  `json:"time" binding:"required"`
	Description string  `json:"description"`
}

func scheduleResponse(s *models.Schedule) types.ScheduleResponse {
	return types.ScheduleResponse{
		ID:          s.ID,
		TeamOne:     s.TeamOne,
		TeamOneLogo: s.TeamOneLogo,
		TeamTwo:     s.TeamTwo,
		TeamTwoLogo: s.TeamTwoLogo,
		Date:        s.Date,
		Time:        s.Time,
		Description: s.Description,
	}
}

func scheduleLocation() *time.Location {
	tz := "Asia/Jakarta"
	if config.Current != nil && config.Current.Timezone != "" {
		tz = config.Current.Timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validateScheduleInput(body *ScheduleRequest) map[string]string {
	fieldErrors := make(map[string]string)

	if strings.TrimSpace(body.TeamOne) == "" {
		fieldErrors["team_1"] = "Team name is required"
	}
	if strings.TrimSpace(body.TeamTwo) == "" {
		fieldErrors["team_2"] = "Team name is required"
	}
	if _, err := time.Parse(models.ScheduleDateLayout, body.Date); err != nil {
		fieldErrors["date"] = "Date must be YYYY-MM-DD"
	}
	if _, err := time.Parse(models.ScheduleTimeLayout, body.Time); err != nil {
		fieldErrors["time"] = "Time must be HH:MM"
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func ListSchedules(ctx *gin.Context) {
	var schedules []models.Schedule

	if err := db.DB.Order("date, time").Find(&schedules).Error; err != nil {
		logger.Log.Errorw("failed to list schedules", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedules"})
		return
	}

	response := make([]types.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		response = append(response, scheduleResponse(&schedules[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"schedules": response})
}

func GetSchedule(ctx *gin.Context) {
	var schedule models.Schedule

	if err := db.DB.First(&schedule, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			logger.Log.Errorw("failed to fetch schedule", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedule"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"schedule": scheduleResponse(&schedule)})
}

func CreateSchedule(ctx *gin.Context) {
	var body ScheduleRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if fieldErrors := validateScheduleInput(&body); fieldErrors != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": fieldErrors})
		return
	}

	schedule := models.Schedule{
		TeamOne:     strings.TrimSpace(body.TeamOne),
		TeamOneLogo: body.TeamOneLogo,
		TeamTwo:     strings.TrimSpace(body.TeamTwo),
		TeamTwoLogo: body.TeamTwoLogo,
		Date:        body.Date,
		Time:        body.Time,
		Description: strings.TrimSpace(body.Description),
	}

	if err := db.DB.Create(&schedule).Error; err != nil {
		logger.Log.Errorw("failed to create schedule", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"schedule": scheduleResponse(&schedule)})
}

func UpdateSchedule(ctx *gin.Context) {
	var schedule models.Schedule

	if err := db.DB.First(&schedule, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			logger.Log.Errorw("failed to fetch schedule", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedule"})
		}
		return
	}

	var body ScheduleRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if fieldErrors := validateScheduleInput(&body); fieldErrors != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": fieldErrors})
		return
	}

	schedule.TeamOne = strings.TrimSpace(body.TeamOne)
	schedule.TeamOneLogo = body.TeamOneLogo
	schedule.TeamTwo = strings.TrimSpace(body.TeamTwo)
	schedule.TeamTwoLogo = body.TeamTwoLogo
	schedule.Date = body.Date
	schedule.Time = body.Time
	schedule.Description = strings.TrimSpace(body.Description)

	if err := db.DB.Save(&schedule).Error; err != nil {
		logger.Log.Errorw("failed to update schedule", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"schedule": scheduleResponse(&schedule)})
}

func DeleteSchedule(ctx *gin.Context) {
	var schedule models.Schedule

	if err := db.DB.First(&schedule, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			logger.Log.Errorw("failed to fetch schedule", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedule"})
		}
		return
	}

	if err := db.DB.Delete(&schedule).Error; err != nil {
		logger.Log.Errorw("failed to delete schedule", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// MatchesByDate returns the matches scheduled for one calendar date, in the
// compact shape the mobile client renders.
func MatchesByDate(ctx *gin.Context) {
	date := strings.TrimSpace(ctx.Query("date"))

	if _, err := time.Parse(models.ScheduleDateLayout, date); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	var schedules []models.Schedule
	if err := db.DB.Where("date = ?", date).Order("time").Find(&schedules).Error; err != nil {
		logger.Log.Errorw("failed to query matches", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve matches"})
		return
	}

	matches := make([]gin.H, 0, len(schedules))
	for _, s := range schedules {
		matches = append(matches, gin.H{
			"id":         s.ID,
			"team_1":     s.TeamOne,
			"team_2":     s.TeamTwo,
			"start_time": s.Time,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"matches": matches})
}

// ExportScheduleICS serves one match as a downloadable calendar file.
func ExportScheduleICS(ctx *gin.Context) {
	var schedule models.Schedule

	if err := db.DB.First(&schedule, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			logger.Log.Errorw("failed to fetch schedule", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedule"})
		}
		return
	}

	ical, err := services.BuildScheduleICS(&schedule, scheduleLocation())
	if err != nil {
		logger.Log.Errorw("failed to build ICS", "error", err, "schedule_id", schedule.ID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build calendar file"})
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=schedule-%d.ics", schedule.ID))
	ctx.Data(http.StatusOK, "text/calendar", []byte(ical))
}

// ImportSchedules mirrors the highlight importer's row-tolerant CSV style.
func ImportSchedules(ctx *gin.Context) {
	content, err := readCSVPayload(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	schedules, skipped, err := services.ParseSchedulesCSV(strings.NewReader(content))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Error processing CSV file: " + err.Error()})
		return
	}

	if len(schedules) > 0 {
		err = db.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&schedules).Error
		})
		if err != nil {
			logger.Log.Errorw("failed to import schedules", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to import schedules"})
			return
		}
	}

	if skipped == nil {
		skipped = []services.SkippedRow{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"created": len(schedules),
		"skipped": skipped,
	})
}

// ExportSchedules downloads the whole calendar as CSV.
func ExportSchedules(ctx *gin.Context) {
	var schedules []models.Schedule

	if err := db.DB.Order("date, time").Find(&schedules).Error; err != nil {
		logger.Log.Errorw("failed to export schedules", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export schedules"})
		return
	}

	var sb strings.Builder
	if err := services.WriteSchedulesCSV(&sb, schedules); err != nil {
		logger.Log.Errorw("failed to write schedules CSV", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export schedules"})
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename=schedules.csv")
	ctx.Data(http.StatusOK, "text/csv", []byte(sb.String()))
}
