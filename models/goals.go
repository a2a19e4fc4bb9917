package models

import "time"

// Goal target and achievement metric types.
const (
	TargetMovies = "movies"
	TargetSeries = "series"
	TargetAnime  = "anime"
	TargetHours  = "hours"
)

// WatchGoal is a user-defined viewing target over a date range. Completion is
// frozen: once a goal has been evaluated as met it stays completed even if
// history rows are later deleted.
type WatchGoal struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	TargetCount int       `json:"targetCount"`
	TargetType  string    `json:"targetType"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WatchGoalUpsert is the create/update request body for a goal.
type WatchGoalUpsert struct {
	Name        string    `json:"name"`
	TargetCount int       `json:"target_count"`
	TargetType  string    `json:"target_type"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// Achievement is a global unlock definition shared by all users.
type Achievement struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	IconURL         string `json:"iconUrl,omitempty"`
	RequiredCount   int    `json:"requiredCount"`
	AchievementType string `json:"achievementType"`
}

// UserAchievement records a one-way unlock. Once earned it is never revoked.
type UserAchievement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	AchievementID int64     `json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}
