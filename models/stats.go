package models

import "time"

// PeriodStats summarizes one aggregation window of the watch history ledger.
type PeriodStats struct {
	StartDate         time.Time      `json:"start_date"`
	EndDate           time.Time      `json:"end_date"`
	TotalMinutes      int            `json:"total_minutes"`
	TotalMovies       int            `json:"total_movies"`
	TotalSeries       int            `json:"total_series"`
	TotalAnime        int            `json:"total_anime"`
	GenreDistribution map[string]int `json:"genre_distribution"`
}

// TopRatedTitle is one entry of the yearly top-watched list.
type TopRatedTitle struct {
	Title     string    `json:"title"`
	Rating    *float64  `json:"rating,omitempty"`
	WatchedAt time.Time `json:"watched_at"`
}

// YearlyStats extends the period summary with the highest rated titles
// watched in the window.
type YearlyStats struct {
	PeriodStats
	TopRated []TopRatedTitle `json:"top_rated"`
}

// HeatmapEntry aggregates viewing per genre. An entry tagged with several
// genres counts fully towards each of them, so total minutes across the
// heatmap may exceed total watch minutes.
type HeatmapEntry struct {
	Count        int `json:"count"`
	TotalMinutes int `json:"total_minutes"`
	Movies       int `json:"movies"`
	Series       int `json:"series"`
	Anime        int `json:"anime"`
}
