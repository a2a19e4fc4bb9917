package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cinetrack/models"
)

// HistoryRepository persists the append-only watch ledger. Rows are only ever
// inserted or deleted by ID; there is no update path.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// HistoryFilter narrows a ledger query. Nil and empty fields are ignored.
type HistoryFilter struct {
	Start       *time.Time
	End         *time.Time
	ContentType models.ContentType
}

// Insert appends one ledger row and returns it with its generated ID.
func (r *HistoryRepository) Insert(ctx context.Context, entry models.WatchHistoryEntry) (models.WatchHistoryEntry, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO watch_history (user_id, content_id, watched_at, duration_minutes, platform, episode_number, season_number)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.ContentID, entry.WatchedAt.UTC(), entry.DurationMinutes,
		entry.Platform, nullInt(entry.EpisodeNumber), nullInt(entry.SeasonNumber))
	if err != nil {
		return models.WatchHistoryEntry{}, fmt.Errorf("insert history entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.WatchHistoryEntry{}, fmt.Errorf("insert history entry: %w", err)
	}
	entry.ID = id
	entry.WatchedAt = entry.WatchedAt.UTC()
	return entry, nil
}

// Query returns a user's ledger rows joined with the content fields the
// aggregators need, in insertion order (watched_at, then ID for rows sharing
// a timestamp).
func (r *HistoryRepository) Query(ctx context.Context, userID int64, filter HistoryFilter) ([]models.HistoryWithContent, error) {
	query := `
		SELECT h.id, h.user_id, h.content_id, h.watched_at, h.duration_minutes,
		       h.platform, h.episode_number, h.season_number,
		       c.title, c.content_type, c.genres, c.imdb_rating
		FROM watch_history h
		JOIN content c ON c.id = h.content_id
		WHERE h.user_id = ?`
	args := []any{userID}

	if filter.Start != nil {
		query += ` AND h.watched_at >= ?`
		args = append(args, filter.Start.UTC())
	}
	if filter.End != nil {
		query += ` AND h.watched_at < ?`
		args = append(args, filter.End.UTC())
	}
	if filter.ContentType != "" {
		query += ` AND c.content_type = ?`
		args = append(args, string(filter.ContentType))
	}
	query += ` ORDER BY h.watched_at, h.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var results []models.HistoryWithContent
	for rows.Next() {
		var (
			h           models.HistoryWithContent
			episode     sql.NullInt64
			season      sql.NullInt64
			contentType string
			genres      string
			rating      sql.NullFloat64
		)
		if err := rows.Scan(&h.Entry.ID, &h.Entry.UserID, &h.Entry.ContentID,
			&h.Entry.WatchedAt, &h.Entry.DurationMinutes, &h.Entry.Platform,
			&episode, &season, &h.Title, &contentType, &genres, &rating); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		h.Entry.WatchedAt = h.Entry.WatchedAt.UTC()
		h.Entry.EpisodeNumber = intPtr(episode)
		h.Entry.SeasonNumber = intPtr(season)
		h.ContentType = models.ContentType(contentType)
		h.Genres = splitGenres(genres)
		h.Rating = floatPtr(rating)
		results = append(results, h)
	}
	return results, rows.Err()
}

// Delete removes one ledger row, scoped to its owner.
func (r *HistoryRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM watch_history WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByType counts ledger rows of one content type inside a date range,
// used by goal and achievement evaluation.
func (r *HistoryRepository) CountByType(ctx context.Context, userID int64, contentType models.ContentType, start, end *time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM watch_history h
		JOIN content c ON c.id = h.content_id
		WHERE h.user_id = ? AND c.content_type = ?`
	args := []any{userID, string(contentType)}
	if start != nil {
		query += ` AND h.watched_at >= ?`
		args = append(args, start.UTC())
	}
	if end != nil {
		query += ` AND h.watched_at < ?`
		args = append(args, end.UTC())
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count history by type: %w", err)
	}
	return count, nil
}

// SumMinutes totals watched minutes inside a date range.
func (r *HistoryRepository) SumMinutes(ctx context.Context, userID int64, start, end *time.Time) (int, error) {
	query := `SELECT COALESCE(SUM(duration_minutes), 0) FROM watch_history WHERE user_id = ?`
	args := []any{userID}
	if start != nil {
		query += ` AND watched_at >= ?`
		args = append(args, start.UTC())
	}
	if end != nil {
		query += ` AND watched_at < ?`
		args = append(args, end.UTC())
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum history minutes: %w", err)
	}
	return total, nil
}
