package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cinetrack/models"
)

// AchievementRepository reads the global achievement definitions and records
// per-user unlocks.
type AchievementRepository struct {
	db *sql.DB
}

func NewAchievementRepository(db *sql.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// ListAll returns every achievement definition.
func (r *AchievementRepository) ListAll(ctx context.Context) ([]models.Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, icon_url, required_count, achievement_type
		FROM achievements ORDER BY achievement_type, required_count`)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.IconURL,
			&a.RequiredCount, &a.AchievementType); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// ListUnlocks returns a user's earned achievements, oldest first.
func (r *AchievementRepository) ListUnlocks(ctx context.Context, userID int64) ([]models.UserAchievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, achievement_id, earned_at
		FROM user_achievements WHERE user_id = ? ORDER BY earned_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	defer rows.Close()

	var unlocks []models.UserAchievement
	for rows.Next() {
		var u models.UserAchievement
		if err := rows.Scan(&u.ID, &u.UserID, &u.AchievementID, &u.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		u.EarnedAt = u.EarnedAt.UTC()
		unlocks = append(unlocks, u)
	}
	return unlocks, rows.Err()
}

// InsertUnlock records an unlock if it does not already exist. The returned
// bool is true only when this call created the row, so repeated evaluation
// passes never double-award.
func (r *AchievementRepository) InsertUnlock(ctx context.Context, userID, achievementID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_achievements (user_id, achievement_id, earned_at)
		VALUES (?, ?, ?)`,
		userID, achievementID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert unlock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
