package services

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/matchreel-dev/matchreel/internal/models"
)

// logoSlugOverrides covers team names whose asset slug differs from plain
// slugification.
var logoSlugOverrides = map[string]string{
	"Manchester City":          "manchester-city",
	"Manchester United":        "manchester-united",
	"Newcastle United":         "newcastle",
	"Tottenham Hotspur":        "tottenham",
	"Brighton & Hove Albion":   "brighton",
	"West Ham United":          "west-ham",
	"Crystal Palace":           "crystal-palace",
	"Nottingham Forest":        "nottingham-forest",
	"Wolverhampton Wanderers":  "wolves",
	"Leeds United":             "leeds-united",
	"Leicester City":           "leicester",
	"Aston Villa":              "aston-villa",
	"Luton Town":               "luton-town",
	"Sheffield United":         "sheffield-united",
	"Ipswich Town":             "ipswich",
}

// calendarTeamNames maps standings team names to the names used in the match
// calendar. Standings CSVs say "Liverpool" where calendar CSVs say
// "Liverpool FC"; only the known differences are mapped.
var calendarTeamNames = map[string]string{
	"Liverpool":   "Liverpool FC",
	"Arsenal":     "Arsenal FC",
	"Chelsea":     "Chelsea FC",
	"Everton":     "Everton FC",
	"Fulham":      "Fulham FC",
	"Brentford":   "Brentford FC",
	"Bournemouth": "AFC Bournemouth",
	"Burnley":     "Burnley FC",
	"Sunderland":  "Sunderland AFC",
}

// TeamLogoPath derives the static asset path for a team's crest.
func TeamLogoPath(team string) string {
	teamSlug, found := logoSlugOverrides[team]
	if !found {
		teamSlug = slug.Make(strings.ToLower(team))
	}
	return fmt.Sprintf("/static/images/team/england_%s_256x256.png", teamSlug)
}

// CalendarTeamName maps a standings team name to its calendar spelling.
func CalendarTeamName(team string) string {
	name := strings.TrimSpace(team)
	if name == "" {
		return ""
	}
	if mapped, found := calendarTeamNames[name]; found {
		return mapped
	}
	return name
}

// ResolveStandings looks up the home and away Standing rows for a highlight
// by parsing its name and matching team names case-insensitively within the
// highlight's season. Resolution happens at most once per instance.
func ResolveStandings(db *gorm.DB, h *models.Highlight) (home, away *models.Standing) {
	if cachedHome, cachedAway, done := h.CachedStandings(); done {
		return cachedHome, cachedAway
	}

	homeName, awayName, ok := h.MatchTeams()
	if !ok || h.Season == nil || *h.Season == "" {
		h.CacheStandings(nil, nil)
		return nil, nil
	}

	home = findStanding(db, *h.Season, homeName)
	away = findStanding(db, *h.Season, awayName)
	h.CacheStandings(home, away)
	return home, away
}

func findStanding(db *gorm.DB, season, team string) *models.Standing {
	var standing models.Standing
	err := db.Where("season = ? AND LOWER(team) = LOWER(?)", season, team).
		Order("id").
		First(&standing).Error
	if err != nil {
		return nil
	}
	return &standing
}
