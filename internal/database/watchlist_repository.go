package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cinetrack/models"
)

const watchlistColumns = `id, user_id, content_id, watched_episodes, is_completed, created_at, updated_at`

// WatchlistRepository persists per-user episode progress. One row per
// (user, content) pair, enforced by the schema.
type WatchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Insert adds a new watchlist row. A second add of the same content for the
// same user yields ErrConflict.
func (r *WatchlistRepository) Insert(ctx context.Context, userID, contentID int64, watchedEpisodes int, isCompleted bool) (models.WatchlistItem, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist (user_id, content_id, watched_episodes, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, contentID, watchedEpisodes, isCompleted, now, now)
	if err != nil {
		if isConstraintErr(err) {
			return models.WatchlistItem{}, ErrConflict
		}
		return models.WatchlistItem{}, fmt.Errorf("insert watchlist item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("insert watchlist item: %w", err)
	}
	return r.Get(ctx, id, userID)
}

// Get fetches one watchlist row, scoped to its owner.
func (r *WatchlistRepository) Get(ctx context.Context, id, userID int64) (models.WatchlistItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist WHERE id = ? AND user_id = ?`, id, userID)
	return scanWatchlistItem(row)
}

// ListByUser returns all watchlist rows for a user, newest first.
func (r *WatchlistRepository) ListByUser(ctx context.Context, userID int64) ([]models.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var items []models.WatchlistItem
	for rows.Next() {
		item, err := scanWatchlistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateProgress overwrites the progress fields of an existing row.
func (r *WatchlistRepository) UpdateProgress(ctx context.Context, id, userID int64, watchedEpisodes int, isCompleted bool) (models.WatchlistItem, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE watchlist SET watched_episodes = ?, is_completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		watchedEpisodes, isCompleted, time.Now().UTC(), id, userID)
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("update watchlist item: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.WatchlistItem{}, err
	} else if n == 0 {
		return models.WatchlistItem{}, ErrNotFound
	}
	return r.Get(ctx, id, userID)
}

// Delete removes a watchlist row, scoped to its owner.
func (r *WatchlistRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete watchlist item: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWatchlistItem(row rowScanner) (models.WatchlistItem, error) {
	var item models.WatchlistItem
	err := row.Scan(&item.ID, &item.UserID, &item.ContentID, &item.WatchedEpisodes,
		&item.IsCompleted, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchlistItem{}, ErrNotFound
	}
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("scan watchlist item: %w", err)
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}
