package models

import "time"

// WatchHistoryEntry is one row of the append-only viewing ledger. Re-watches
// produce new rows; there is no uniqueness beyond the generated ID. The ledger
// is the sole input for statistics and is never reconstructed from watchlist
// progress.
type WatchHistoryEntry struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	ContentID       int64     `json:"contentId"`
	WatchedAt       time.Time `json:"watchedAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Platform        string    `json:"platform,omitempty"`
	EpisodeNumber   *int      `json:"episodeNumber,omitempty"`
	SeasonNumber    *int      `json:"seasonNumber,omitempty"`
}

// WatchHistoryCreate is the request body for logging a watch event.
type WatchHistoryCreate struct {
	ContentID       int64      `json:"content_id"`
	DurationMinutes int        `json:"duration_minutes"`
	WatchedAt       *time.Time `json:"watched_at,omitempty"`
	Platform        string     `json:"platform,omitempty"`
	EpisodeNumber   *int       `json:"episode_number,omitempty"`
	SeasonNumber    *int       `json:"season_number,omitempty"`
}

// HistoryWithContent joins a ledger row with the content fields the
// aggregators need.
type HistoryWithContent struct {
	Entry       WatchHistoryEntry `json:"entry"`
	Title       string            `json:"title"`
	ContentType ContentType       `json:"contentType"`
	Genres      []string          `json:"genres,omitempty"`
	Rating      *float64          `json:"rating,omitempty"`
}
