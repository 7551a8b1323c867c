package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string // empty for social-only accounts
	IsStaff      bool   `gorm:"default:false"`

	GoogleID      *string        `gorm:"uniqueIndex"`
	GoogleProfile datatypes.JSON `gorm:"type:jsonb"` // raw userinfo captured at first social login

	// Relationships
	Profile   Profile    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Ratings   []Rating   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments  []Comment  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Favorites []Favorite `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Standings []Standing `gorm:"foreignKey:UploadedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// HasUsablePassword reports whether the account can authenticate with a
// password. Accounts created through Google sign-in start without one.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}
