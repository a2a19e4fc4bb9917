package stats

import (
	"context"
	"sort"
	"time"

	"cinetrack/internal/database"
	"cinetrack/models"
)

// Ledger is the read surface over the watch history. Statistics are always
// recomputed from the ledger; nothing is precomputed or cached.
type Ledger interface {
	Query(ctx context.Context, userID int64, filter database.HistoryFilter) ([]models.HistoryWithContent, error)
}

// Service computes period statistics and the genre heatmap.
type Service struct {
	ledger Ledger
	now    func() time.Time
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger, now: time.Now}
}

// NewServiceAt builds a service with a fixed clock, for deterministic period
// boundaries in tests.
func NewServiceAt(ledger Ledger, now func() time.Time) *Service {
	return &Service{ledger: ledger, now: now}
}

// Weekly aggregates the current week, starting Monday 00:00 UTC.
func (s *Service) Weekly(ctx context.Context, userID int64) (models.PeriodStats, error) {
	today := startOfDay(s.now().UTC())
	// time.Weekday numbers Sunday as 0; shift so Monday opens the week.
	offset := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -offset)
	return s.aggregate(ctx, userID, start, start.AddDate(0, 0, 7))
}

// Monthly aggregates the current calendar month.
func (s *Service) Monthly(ctx context.Context, userID int64) (models.PeriodStats, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.aggregate(ctx, userID, start, start.AddDate(0, 1, 0))
}

// Range aggregates an arbitrary [start, end) window. The fixed periods above
// are conveniences over this.
func (s *Service) Range(ctx context.Context, userID int64, start, end time.Time) (models.PeriodStats, error) {
	return s.aggregate(ctx, userID, start.UTC(), end.UTC())
}

// Yearly aggregates the current calendar year and attaches the five best
// rated titles watched in it.
func (s *Service) Yearly(ctx context.Context, userID int64) (models.YearlyStats, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	rows, err := s.ledger.Query(ctx, userID, database.HistoryFilter{Start: &start, End: &end})
	if err != nil {
		return models.YearlyStats{}, err
	}

	return models.YearlyStats{
		PeriodStats: fold(rows, start, end),
		TopRated:    topRated(rows, 5),
	}, nil
}

// Heatmap breaks the full ledger down per genre. A multi-genre entry counts
// its whole duration toward every genre it carries, so heatmap totals exceed
// the plain minute total whenever genres overlap.
func (s *Service) Heatmap(ctx context.Context, userID int64) (map[string]models.HeatmapEntry, error) {
	rows, err := s.ledger.Query(ctx, userID, database.HistoryFilter{})
	if err != nil {
		return nil, err
	}

	heatmap := make(map[string]models.HeatmapEntry)
	for _, row := range rows {
		for _, genre := range row.Genres {
			entry := heatmap[genre]
			entry.Count++
			entry.TotalMinutes += row.Entry.DurationMinutes
			switch row.ContentType {
			case models.ContentTypeMovie:
				entry.Movies++
			case models.ContentTypeSeries:
				entry.Series++
			case models.ContentTypeAnime:
				entry.Anime++
			}
			heatmap[genre] = entry
		}
	}
	return heatmap, nil
}

func (s *Service) aggregate(ctx context.Context, userID int64, start, end time.Time) (models.PeriodStats, error) {
	rows, err := s.ledger.Query(ctx, userID, database.HistoryFilter{Start: &start, End: &end})
	if err != nil {
		return models.PeriodStats{}, err
	}
	return fold(rows, start, end), nil
}

// fold is the single aggregation pass shared by every period.
func fold(rows []models.HistoryWithContent, start, end time.Time) models.PeriodStats {
	stats := models.PeriodStats{
		StartDate:         start,
		EndDate:           end,
		GenreDistribution: make(map[string]int),
	}
	for _, row := range rows {
		stats.TotalMinutes += row.Entry.DurationMinutes
		switch row.ContentType {
		case models.ContentTypeMovie:
			stats.TotalMovies++
		case models.ContentTypeSeries:
			stats.TotalSeries++
		case models.ContentTypeAnime:
			stats.TotalAnime++
		}
		for _, genre := range row.Genres {
			stats.GenreDistribution[genre]++
		}
	}
	return stats
}

// topRated picks the n best rated distinct contents, ties broken by most
// recent watch. Re-watches collapse into one entry per content; unrated
// entries never place.
func topRated(rows []models.HistoryWithContent, n int) []models.TopRatedTitle {
	best := make(map[int64]models.TopRatedTitle)
	for _, row := range rows {
		if row.Rating == nil {
			continue
		}
		candidate := models.TopRatedTitle{
			Title:     row.Title,
			Rating:    row.Rating,
			WatchedAt: row.Entry.WatchedAt,
		}
		if current, ok := best[row.Entry.ContentID]; !ok || candidate.WatchedAt.After(current.WatchedAt) {
			best[row.Entry.ContentID] = candidate
		}
	}

	titles := make([]models.TopRatedTitle, 0, len(best))
	for _, t := range best {
		titles = append(titles, t)
	}
	sort.SliceStable(titles, func(i, j int) bool {
		if *titles[i].Rating != *titles[j].Rating {
			return *titles[i].Rating > *titles[j].Rating
		}
		return titles[i].WatchedAt.After(titles[j].WatchedAt)
	})
	if len(titles) > n {
		titles = titles[:n]
	}
	return titles
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
