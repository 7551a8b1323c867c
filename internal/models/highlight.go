package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// matchNamePattern splits a highlight name like "Arsenal vs Chelsea" into
// home and away team names. "v" and "v." separators are accepted too.
var matchNamePattern = regexp.MustCompile(`(?i)^(.*?)\s+(vs|v|v\.)\s+(.*)$`)

type Highlight struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time

	Name               string  `gorm:"not null"`
	URL                string  `gorm:"size:2000;not null"`
	ManualThumbnailURL *string `gorm:"size:2000"`
	Description        string
	Season             *string `gorm:"size:10;index"` // short code, e.g. "24/25"

	// Relationships
	Ratings   []Rating   `gorm:"foreignKey:HighlightID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments  []Comment  `gorm:"foreignKey:HighlightID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Favorites []Favorite `gorm:"foreignKey:HighlightID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`

	// Cached team resolution, populated on first lookup. GORM ignores
	// unexported fields.
	teamsParsed  bool
	homeName     string
	awayName     string
	standingsSet bool
	homeStanding *Standing
	awayStanding *Standing
}

func (h *Highlight) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	return nil
}

// MatchTeams parses the home and away team names out of Name. The result is
// cached on the instance so repeated calls do not re-run the regex.
func (h *Highlight) MatchTeams() (home, away string, ok bool) {
	if !h.teamsParsed {
		h.teamsParsed = true
		if m := matchNamePattern.FindStringSubmatch(h.Name); m != nil {
			h.homeName = strings.TrimSpace(m[1])
			h.awayName = strings.TrimSpace(m[3])
		}
	}
	if h.homeName == "" || h.awayName == "" {
		return "", "", false
	}
	return h.homeName, h.awayName, true
}

// CachedStandings returns the previously resolved home/away standings, if a
// resolution has happened on this instance.
func (h *Highlight) CachedStandings() (home, away *Standing, ok bool) {
	return h.homeStanding, h.awayStanding, h.standingsSet
}

// CacheStandings remembers a home/away resolution for this instance.
func (h *Highlight) CacheStandings(home, away *Standing) {
	h.homeStanding = home
	h.awayStanding = away
	h.standingsSet = true
}
