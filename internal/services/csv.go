package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/matchreel-dev/matchreel/internal/models"
)

// SkippedRow records why a CSV line was left out of a tolerant import.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

func rowEmpty(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// ParseHighlightsCSV reads highlight rows from a CSV export. The header row
// is skipped; malformed rows are collected as skipped, never fatal. Columns:
// name, url, description (optional), manual thumbnail url (optional),
// season (optional, long or short form; unrecognized values become null).
func ParseHighlightsCSV(r io.Reader) ([]models.Highlight, []SkippedRow, error) {
	reader := newReader(r)

	var (
		highlights []models.Highlight
		skipped    []SkippedRow
		line       int
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line++
			skipped = append(skipped, SkippedRow{Line: line, Reason: "unreadable row"})
			continue
		}
		line++

		if line == 1 || rowEmpty(record) {
			continue
		}

		if len(record) < 2 {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "expected at least 2 columns"})
			continue
		}

		name := strings.TrimSpace(record[0])
		url := strings.TrimSpace(record[1])

		if name == "" {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "missing name"})
			continue
		}
		if url == "" {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "missing url"})
			continue
		}

		highlight := models.Highlight{
			Name: name,
			URL:  url,
		}

		if len(record) > 2 {
			highlight.Description = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			if thumb := strings.TrimSpace(record[3]); thumb != "" {
				highlight.ManualThumbnailURL = &thumb
			}
		}
		if len(record) > 4 {
			if code, ok := NormalizeSeason(record[4]); ok {
				highlight.Season = &code
			}
		}

		highlights = append(highlights, highlight)
	}

	return highlights, skipped, nil
}

// standingsHeader is the required header set for a standings upload.
var standingsHeader = []string{"pos", "team", "pld", "w", "d", "l", "gf", "ga", "gd", "pts"}

// ParseStandingsCSV reads a full league table for one season. Unlike the
// highlight importer this is all-or-nothing: any invalid row aborts the
// whole parse with an error naming the row.
func ParseStandingsCSV(r io.Reader, season string, uploadedByID uint) ([]models.Standing, error) {
	reader := newReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("CSV is empty or unreadable")
	}

	columns := make(map[string]int)
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))] = i
	}

	for _, required := range standingsHeader {
		if _, found := columns[required]; !found {
			return nil, fmt.Errorf("CSV header must include: %s", strings.Join(standingsHeader, ", "))
		}
	}

	field := func(record []string, name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var (
		standings     []models.Standing
		seenPositions = make(map[int]bool)
		line          = 1
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unreadable row %d", line+1)
		}
		line++

		if rowEmpty(record) {
			continue
		}

		position, err := strconv.Atoi(field(record, "pos"))
		if err != nil {
			return nil, fmt.Errorf("invalid 'pos' at row %d", line)
		}
		if position < models.MinStandingPosition || position > models.MaxStandingPosition {
			return nil, fmt.Errorf("position must be between %d and %d (row %d)",
				models.MinStandingPosition, models.MaxStandingPosition, line)
		}
		if seenPositions[position] {
			return nil, fmt.Errorf("duplicate position %d in CSV (row %d)", position, line)
		}
		seenPositions[position] = true

		team := field(record, "team")
		if team == "" {
			return nil, fmt.Errorf("missing 'team' at row %d", line)
		}

		standing := models.Standing{
			Season:       season,
			Position:     position,
			Team:         team,
			UploadedByID: uploadedByID,
		}

		for _, col := range []struct {
			name string
			dst  *int
		}{
			{"pld", &standing.Played},
			{"w", &standing.Won},
			{"d", &standing.Drawn},
			{"l", &standing.Lost},
			{"gf", &standing.GoalsFor},
			{"ga", &standing.GoalsAgainst},
			{"gd", &standing.GoalDifference},
			{"pts", &standing.Points},
		} {
			value, err := strconv.Atoi(field(record, col.name))
			if err != nil {
				return nil, fmt.Errorf("invalid '%s' at row %d", col.name, line)
			}
			*col.dst = value
		}

		standings = append(standings, standing)
	}

	if len(standings) == 0 {
		return nil, fmt.Errorf("CSV has no data rows")
	}

	return standings, nil
}

// ParseSchedulesCSV reads calendar entries in the same row-tolerant style as
// the highlight importer. Columns: team 1, team 1 logo, team 2, team 2 logo,
// date (YYYY-MM-DD), time (HH:MM), description (optional).
func ParseSchedulesCSV(r io.Reader) ([]models.Schedule, []SkippedRow, error) {
	reader := newReader(r)

	var (
		schedules []models.Schedule
		skipped   []SkippedRow
		line      int
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line++
			skipped = append(skipped, SkippedRow{Line: line, Reason: "unreadable row"})
			continue
		}
		line++

		if line == 1 || rowEmpty(record) {
			continue
		}

		if len(record) < 6 {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "expected at least 6 columns"})
			continue
		}

		teamOne := strings.TrimSpace(record[0])
		teamTwo := strings.TrimSpace(record[2])
		date := strings.TrimSpace(record[4])
		startTime := strings.TrimSpace(record[5])

		if teamOne == "" || teamTwo == "" {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "missing team name"})
			continue
		}
		if _, err := time.Parse(models.ScheduleDateLayout, date); err != nil {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "invalid date, expected YYYY-MM-DD"})
			continue
		}
		if _, err := time.Parse(models.ScheduleTimeLayout, startTime); err != nil {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "invalid time, expected HH:MM"})
			continue
		}

		schedule := models.Schedule{
			TeamOne: teamOne,
			TeamTwo: teamTwo,
			Date:    date,
			Time:    startTime,
		}
		if logo := strings.TrimSpace(record[1]); logo != "" {
			schedule.TeamOneLogo = &logo
		}
		if logo := strings.TrimSpace(record[3]); logo != "" {
			schedule.TeamTwoLogo = &logo
		}
		if len(record) > 6 {
			schedule.Description = strings.TrimSpace(record[6])
		}

		schedules = append(schedules, schedule)
	}

	return schedules, skipped, nil
}

// WriteSchedulesCSV writes calendar entries in the format ParseSchedulesCSV
// reads back.
func WriteSchedulesCSV(w io.Writer, schedules []models.Schedule) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Team 1", "Team 1 Logo", "Team 2", "Team 2 Logo", "Date", "Time", "Description"}); err != nil {
		return err
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	for _, s := range schedules {
		record := []string{s.TeamOne, deref(s.TeamOneLogo), s.TeamTwo, deref(s.TeamTwoLogo), s.Date, s.Time, s.Description}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
