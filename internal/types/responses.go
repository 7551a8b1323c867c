package types

import "time"

type UserResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	AvatarURL   string `json:"avatar_url"`
	HasPassword bool   `json:"has_password"`
}

type StandingResponse struct {
	ID             uint   `json:"id"`
	Season         string `json:"season"`
	Position       int    `json:"position"`
	Team           string `json:"team"`
	CalendarTeam   string `json:"calendar_team"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
	LogoURL        string `json:"logo_url"`
}

type HighlightResponse struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	URL                string            `json:"url"`
	ManualThumbnailURL *string           `json:"manual_thumbnail_url"`
	Description        string            `json:"description"`
	Season             *string           `json:"season"`
	CreatedAt          time.Time         `json:"created_at"`
	Home               *StandingResponse `json:"home,omitempty"`
	Away               *StandingResponse `json:"away,omitempty"`
	AverageRating      float64           `json:"average_rating"`
	FavoriteCount      int64             `json:"favorite_count"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"user"`
	AvatarURL string    `json:"avatar_url"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ScheduleResponse struct {
	ID          uint    `json:"id"`
	TeamOne     string  `json:"team_1"`
	TeamOneLogo *string `json:"team_1_logo"`
	TeamTwo     string  `json:"team_2"`
	TeamTwoLogo *string `json:"team_2_logo"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Description string  `json:"description"`
}
