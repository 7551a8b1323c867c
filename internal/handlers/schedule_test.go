package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/models"
)

func createSchedule(t *testing.T, teamOne, teamTwo, date, startTime string) models.Schedule {
	t.Helper()

	schedule := models.Schedule{TeamOne: teamOne, TeamTwo: teamTwo, Date: date, Time: startTime}
	require.NoError(t, db.DB.Create(&schedule).Error)
	return schedule
}

func TestCreateScheduleValidation(t *testing.T) {
	r := setupRouter(t)
	_, staffToken := createUser(t, "admin", true)

	w := doJSON(t, r, http.MethodPost, "/api/schedules", staffToken, map[string]any{
		"team_1": "Arsenal FC",
		"team_2": "Chelsea FC",
		"date":   "2025-09-14",
		"time":   "16:30",
	})
	requireStatus(t, w, http.StatusCreated)

	schedule := decodeBody(t, w)["schedule"].(map[string]any)
	assert.Equal(t, "Arsenal FC", schedule["team_1"])
	assert.Equal(t, "2025-09-14", schedule["date"])

	w = doJSON(t, r, http.MethodPost, "/api/schedules", staffToken, map[string]any{
		"team_1": "Arsenal FC",
		"team_2": "Chelsea FC",
		"date":   "14-09-2025",
		"time":   "25:99",
	})
	requireStatus(t, w, http.StatusBadRequest)

	fieldErrors := decodeBody(t, w)["errors"].(map[string]any)
	assert.Contains(t, fieldErrors, "date")
	assert.Contains(t, fieldErrors, "time")
}

func TestScheduleWritesRequireStaff(t *testing.T) {
	r := setupRouter(t)
	_, fanToken := createUser(t, "fan", false)

	w := doJSON(t, r, http.MethodPost, "/api/schedules", fanToken, map[string]any{
		"team_1": "Arsenal FC", "team_2": "Chelsea FC", "date": "2025-09-14", "time": "16:30",
	})
	requireStatus(t, w, http.StatusForbidden)
}

func TestListSchedulesOrderedByKickoff(t *testing.T) {
	r := setupRouter(t)
	createSchedule(t, "Fulham FC", "Brentford FC", "2025-09-15", "14:00")
	createSchedule(t, "Liverpool FC", "Everton FC", "2025-09-14", "19:00")
	createSchedule(t, "Arsenal FC", "Chelsea FC", "2025-09-14", "16:30")

	w := doJSON(t, r, http.MethodGet, "/api/schedules", "", nil)
	requireStatus(t, w, http.StatusOK)

	schedules := decodeBody(t, w)["schedules"].([]any)
	require.Len(t, schedules, 3)
	assert.Equal(t, "Arsenal FC", schedules[0].(map[string]any)["team_1"])
	assert.Equal(t, "Liverpool FC", schedules[1].(map[string]any)["team_1"])
	assert.Equal(t, "Fulham FC", schedules[2].(map[string]any)["team_1"])
}

func TestMatchesByDate(t *testing.T) {
	r := setupRouter(t)
	createSchedule(t, "Arsenal FC", "Chelsea FC", "2025-09-14", "16:30")
	createSchedule(t, "Liverpool FC", "Everton FC", "2025-09-14", "12:00")
	createSchedule(t, "Fulham FC", "Brentford FC", "2025-09-15", "14:00")

	w := doJSON(t, r, http.MethodGet, "/api/schedules/matches?date=2025-09-14", "", nil)
	requireStatus(t, w, http.StatusOK)

	matches := decodeBody(t, w)["matches"].([]any)
	require.Len(t, matches, 2)
	// ordered by kickoff time
	assert.Equal(t, "Liverpool FC", matches[0].(map[string]any)["team_1"])
	assert.Equal(t, "12:00", matches[0].(map[string]any)["start_time"])
	assert.Equal(t, "Arsenal FC", matches[1].(map[string]any)["team_1"])

	w = doJSON(t, r, http.MethodGet, "/api/schedules/matches?date=14-09-2025", "", nil)
	requireStatus(t, w, http.StatusBadRequest)

	// empty day, not an error
	w = doJSON(t, r, http.MethodGet, "/api/schedules/matches?date=2030-01-01", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Empty(t, decodeBody(t, w)["matches"])
}

func TestExportScheduleICS(t *testing.T) {
	r := setupRouter(t)
	schedule := createSchedule(t, "Arsenal FC", "Chelsea FC", "2025-09-14", "16:30")

	w := doJSON(t, r, http.MethodGet, "/api/schedules/"+itoa(float64(schedule.ID))+"/ics", "", nil)
	requireStatus(t, w, http.StatusOK)

	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule-")
	assert.Contains(t, w.Body.String(), "BEGIN:VEVENT")
	assert.Contains(t, w.Body.String(), "SUMMARY:Arsenal FC vs Chelsea FC")

	w = doJSON(t, r, http.MethodGet, "/api/schedules/999/ics", "", nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestImportAndExportSchedules(t *testing.T) {
	r := setupRouter(t)
	_, staffToken := createUser(t, "admin", true)

	csv := "Team 1,Team 1 Logo,Team 2,Team 2 Logo,Date,Time,Description\n" +
		"Arsenal FC,,Chelsea FC,,2025-09-14,16:30,derby\n" +
		"Liverpool FC,,Everton FC,,bad-date,19:00,\n"

	w := doJSON(t, r, http.MethodPost, "/api/schedules/import", staffToken,
		map[string]any{"csv_content": csv})
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["created"])
	require.Len(t, body["skipped"].([]any), 1)

	w = doJSON(t, r, http.MethodGet, "/api/schedules/export", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedules.csv")
	assert.Contains(t, w.Body.String(), "Arsenal FC")
	assert.NotContains(t, w.Body.String(), "Liverpool FC")
}

func TestUpdateAndDeleteSchedule(t *testing.T) {
	r := setupRouter(t)
	_, staffToken := createUser(t, "admin", true)
	schedule := createSchedule(t, "Arsenal FC", "Chelsea FC", "2025-09-14", "16:30")
	path := "/api/schedules/" + itoa(float64(schedule.ID))

	w := doJSON(t, r, http.MethodPut, path, staffToken, map[string]any{
		"team_1": "Arsenal FC", "team_2": "Chelsea FC", "date": "2025-09-21", "time": "17:00",
	})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "2025-09-21", decodeBody(t, w)["schedule"].(map[string]any)["date"])

	w = doJSON(t, r, http.MethodDelete, path, staffToken, nil)
	requireStatus(t, w, http.StatusNoContent)

	w = doJSON(t, r, http.MethodGet, path, "", nil)
	requireStatus(t, w, http.StatusNotFound)
}
