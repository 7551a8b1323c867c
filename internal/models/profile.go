package models

import (
	"strings"
	"time"
)

// DefaultAvatarPath is the shared placeholder image. It is never deleted
// when a profile picture is replaced or the account is removed.
const DefaultAvatarPath = "profile_pics/default.png"

type Profile struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID    uint   `gorm:"uniqueIndex;not null"`
	ImagePath string `gorm:"not null;default:profile_pics/default.png"`

	// Relationships. The back-reference is a pointer so the two structs do
	// not contain each other by value.
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (p *Profile) HasCustomImage() bool {
	return p.ImagePath != "" && !strings.HasSuffix(p.ImagePath, "default.png")
}
