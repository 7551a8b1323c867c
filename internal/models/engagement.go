package models

import "time"

// Rating is one user's 1-5 score for a highlight. The composite unique index
// guarantees at most one row per (user, highlight); submitting again updates
// the value instead of inserting.
type Rating struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID      uint   `gorm:"not null;uniqueIndex:idx_rating_user_highlight"`
	HighlightID string `gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_highlight"`
	Value       int    `gorm:"not null"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Highlight Highlight `gorm:"foreignKey:HighlightID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

type Comment struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID      uint   `gorm:"not null;index"`
	HighlightID string `gorm:"type:uuid;not null;index"`
	Content     string `gorm:"not null"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Highlight Highlight `gorm:"foreignKey:HighlightID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// Favorite rows are toggled: created when absent, hard-deleted when present.
type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID      uint   `gorm:"not null;uniqueIndex:idx_favorite_user_highlight"`
	HighlightID string `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_highlight"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Highlight Highlight `gorm:"foreignKey:HighlightID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
