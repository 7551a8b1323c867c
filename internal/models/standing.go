package models

import "time"

const (
	MinStandingPosition = 1
	MaxStandingPosition = 20
)

// Standing is one league-table row for a team in a season. The
// (season, position) pair is unique so a table can never hold two teams on
// the same rank.
type Standing struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Season         string `gorm:"size:10;not null;uniqueIndex:idx_season_position"`
	Position       int    `gorm:"not null;uniqueIndex:idx_season_position"`
	Team           string `gorm:"size:100;not null"`
	Played         int
	Won            int
	Drawn          int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
	UploadedByID   uint `gorm:"not null;index"`

	// Relationships
	UploadedBy User `gorm:"foreignKey:UploadedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
