package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cinetrack/models"
)

const goalColumns = `id, user_id, name, target_count, target_type, start_date, end_date, is_completed, created_at, updated_at`

// GoalRepository persists user-defined watch goals.
type GoalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) Insert(ctx context.Context, userID int64, up models.WatchGoalUpsert) (models.WatchGoal, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO watch_goals (user_id, name, target_count, target_type, start_date, end_date, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		userID, up.Name, up.TargetCount, up.TargetType,
		up.StartDate.UTC(), up.EndDate.UTC(), now, now)
	if err != nil {
		return models.WatchGoal{}, fmt.Errorf("insert goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.WatchGoal{}, fmt.Errorf("insert goal: %w", err)
	}
	return r.Get(ctx, id, userID)
}

func (r *GoalRepository) Get(ctx context.Context, id, userID int64) (models.WatchGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM watch_goals WHERE id = ? AND user_id = ?`, id, userID)
	return scanGoal(row)
}

// ListByUser returns a user's goals, optionally filtered by completion state.
func (r *GoalRepository) ListByUser(ctx context.Context, userID int64, completed *bool) ([]models.WatchGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM watch_goals WHERE user_id = ?`
	args := []any{userID}
	if completed != nil {
		query += ` AND is_completed = ?`
		args = append(args, *completed)
	}
	query += ` ORDER BY end_date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []models.WatchGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// Update overwrites a goal's definition fields. Completion state is
// untouched; that transition only happens through MarkCompleted.
func (r *GoalRepository) Update(ctx context.Context, id, userID int64, up models.WatchGoalUpsert) (models.WatchGoal, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE watch_goals SET name = ?, target_count = ?, target_type = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		up.Name, up.TargetCount, up.TargetType, up.StartDate.UTC(), up.EndDate.UTC(),
		time.Now().UTC(), id, userID)
	if err != nil {
		return models.WatchGoal{}, fmt.Errorf("update goal: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.WatchGoal{}, err
	} else if n == 0 {
		return models.WatchGoal{}, ErrNotFound
	}
	return r.Get(ctx, id, userID)
}

// MarkCompleted flips a goal to completed. The transition is one-way; there
// is no statement that sets is_completed back to false.
func (r *GoalRepository) MarkCompleted(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE watch_goals SET is_completed = 1, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("mark goal completed: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM watch_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanGoal(row rowScanner) (models.WatchGoal, error) {
	var g models.WatchGoal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetCount, &g.TargetType,
		&g.StartDate, &g.EndDate, &g.IsCompleted, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchGoal{}, ErrNotFound
	}
	if err != nil {
		return models.WatchGoal{}, fmt.Errorf("scan goal: %w", err)
	}
	g.StartDate = g.StartDate.UTC()
	g.EndDate = g.EndDate.UTC()
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return g, nil
}
