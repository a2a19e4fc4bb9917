package models

import "time"

// WatchlistItem tracks a user's episode progress for one content entry.
//
// Progress is independent from the watch history log: appending history does
// not move watched_episodes, and updating progress does not write history.
// Callers that want both must do both explicitly.
type WatchlistItem struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	ContentID       int64     `json:"contentId"`
	WatchedEpisodes int       `json:"watchedEpisodes"`
	IsCompleted     bool      `json:"isCompleted"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// WatchlistUpsert captures the body of a watchlist add or update request.
type WatchlistUpsert struct {
	ContentID       int64 `json:"content_id,omitempty"`
	WatchedEpisodes int   `json:"watched_episodes"`
	IsCompleted     bool  `json:"is_completed"`
}
