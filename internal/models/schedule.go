package models

import "time"

const (
	ScheduleDateLayout = "2006-01-02"
	ScheduleTimeLayout = "15:04"
)

// Schedule is one entry in the match calendar. Date and Time are stored as
// normalized strings (YYYY-MM-DD, HH:MM) and validated on the way in.
type Schedule struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	TeamOne     string  `gorm:"size:100;not null"`
	TeamOneLogo *string `gorm:"size:2000"`
	TeamTwo     string  `gorm:"size:100;not null"`
	TeamTwoLogo *string `gorm:"size:2000"`
	Date        string  `gorm:"size:10;not null;index"`
	Time        string  `gorm:"size:5;not null"`
	Description string
}

// StartsAt combines Date and Time in the given location.
func (s *Schedule) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(ScheduleDateLayout+" "+ScheduleTimeLayout, s.Date+" "+s.Time, loc)
}
