package services

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/matchreel-dev/matchreel/internal/models"
)

// BuildScheduleICS renders a single-event calendar for a match so clients
// can save it into their own calendar apps.
func BuildScheduleICS(schedule *models.Schedule, loc *time.Location) (string, error) {
	start, err := schedule.StartsAt(loc)
	if err != nil {
		return "", fmt.Errorf("invalid schedule date/time: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	event := cal.AddEvent(fmt.Sprintf("schedule-%d@matchreel", schedule.ID))
	event.SetSummary(fmt.Sprintf("%s vs %s", schedule.TeamOne, schedule.TeamTwo))
	event.SetDtStampTime(time.Now())
	event.SetStartAt(start)
	event.SetEndAt(start.Add(2 * time.Hour))
	if schedule.Description != "" {
		event.SetDescription(schedule.Description)
	}

	return cal.Serialize(), nil
}
