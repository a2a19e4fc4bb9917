package goals

import (
	"context"
	"errors"
	"strings"
	"time"

	"cinetrack/internal/database"
	"cinetrack/models"
)

var (
	ErrNameRequired      = errors.New("goal name is required")
	ErrTargetInvalid     = errors.New("target_count must be positive")
	ErrTargetTypeInvalid = errors.New("target_type must be movies, series, anime or hours")
	ErrDateRangeInvalid  = errors.New("end_date must be after start_date")
	ErrGoalNotFound      = errors.New("goal not found")
)

// GoalStore persists goal definitions and completion transitions.
type GoalStore interface {
	Insert(ctx context.Context, userID int64, up models.WatchGoalUpsert) (models.WatchGoal, error)
	Get(ctx context.Context, id, userID int64) (models.WatchGoal, error)
	ListByUser(ctx context.Context, userID int64, completed *bool) ([]models.WatchGoal, error)
	Update(ctx context.Context, id, userID int64, up models.WatchGoalUpsert) (models.WatchGoal, error)
	MarkCompleted(ctx context.Context, id, userID int64) error
	Delete(ctx context.Context, id, userID int64) error
}

// AchievementStore reads definitions and records unlocks.
type AchievementStore interface {
	ListAll(ctx context.Context) ([]models.Achievement, error)
	ListUnlocks(ctx context.Context, userID int64) ([]models.UserAchievement, error)
	InsertUnlock(ctx context.Context, userID, achievementID int64) (bool, error)
}

// Ledger is the watch history read surface the evaluator counts against.
type Ledger interface {
	CountByType(ctx context.Context, userID int64, contentType models.ContentType, start, end *time.Time) (int, error)
	SumMinutes(ctx context.Context, userID int64, start, end *time.Time) (int, error)
}

// Service manages watch goals and achievement unlocks. Both evaluations are
// idempotent: completion and unlocks are one-way transitions, so re-running a
// check never takes anything away.
type Service struct {
	goals        GoalStore
	achievements AchievementStore
	ledger       Ledger
}

func NewService(goals GoalStore, achievements AchievementStore, ledger Ledger) *Service {
	return &Service{goals: goals, achievements: achievements, ledger: ledger}
}

// Create adds a new goal after validating its definition.
func (s *Service) Create(ctx context.Context, userID int64, up models.WatchGoalUpsert) (models.WatchGoal, error) {
	if err := validateGoal(up); err != nil {
		return models.WatchGoal{}, err
	}
	return s.goals.Insert(ctx, userID, up)
}

// List returns a user's goals, optionally filtered by completion.
func (s *Service) List(ctx context.Context, userID int64, completed *bool) ([]models.WatchGoal, error) {
	return s.goals.ListByUser(ctx, userID, completed)
}

// Get returns one goal.
func (s *Service) Get(ctx context.Context, userID, goalID int64) (models.WatchGoal, error) {
	goal, err := s.goals.Get(ctx, goalID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return models.WatchGoal{}, ErrGoalNotFound
	}
	return goal, err
}

// Update redefines a goal. Completion state survives the update.
func (s *Service) Update(ctx context.Context, userID, goalID int64, up models.WatchGoalUpsert) (models.WatchGoal, error) {
	if err := validateGoal(up); err != nil {
		return models.WatchGoal{}, err
	}
	goal, err := s.goals.Update(ctx, goalID, userID, up)
	if errors.Is(err, database.ErrNotFound) {
		return models.WatchGoal{}, ErrGoalNotFound
	}
	return goal, err
}

// Delete removes a goal.
func (s *Service) Delete(ctx context.Context, userID, goalID int64) error {
	err := s.goals.Delete(ctx, goalID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrGoalNotFound
	}
	return err
}

// EvaluateGoals re-checks every incomplete goal against the ledger and marks
// the ones whose target is reached. Completed goals are never re-opened, even
// if ledger rows have since been deleted. Returns the goals that flipped on
// this pass.
func (s *Service) EvaluateGoals(ctx context.Context, userID int64) ([]models.WatchGoal, error) {
	incomplete := false
	open, err := s.goals.ListByUser(ctx, userID, &incomplete)
	if err != nil {
		return nil, err
	}

	var completed []models.WatchGoal
	for _, goal := range open {
		progress, err := s.goalProgress(ctx, userID, goal)
		if err != nil {
			return nil, err
		}
		if progress < goal.TargetCount {
			continue
		}
		if err := s.goals.MarkCompleted(ctx, goal.ID, userID); err != nil {
			return nil, err
		}
		goal.IsCompleted = true
		completed = append(completed, goal)
	}
	return completed, nil
}

// Progress reports how far along a goal is without mutating it.
func (s *Service) Progress(ctx context.Context, userID, goalID int64) (int, error) {
	goal, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return 0, err
	}
	return s.goalProgress(ctx, userID, goal)
}

func (s *Service) goalProgress(ctx context.Context, userID int64, goal models.WatchGoal) (int, error) {
	start, end := goal.StartDate, goal.EndDate
	switch goal.TargetType {
	case models.TargetHours:
		minutes, err := s.ledger.SumMinutes(ctx, userID, &start, &end)
		if err != nil {
			return 0, err
		}
		return minutes / 60, nil
	default:
		return s.ledger.CountByType(ctx, userID, models.ContentType(goal.TargetType), &start, &end)
	}
}

// Achievements lists the global achievement definitions.
func (s *Service) Achievements(ctx context.Context) ([]models.Achievement, error) {
	return s.achievements.ListAll(ctx)
}

// UserAchievements lists the unlocks a user has earned.
func (s *Service) UserAchievements(ctx context.Context, userID int64) ([]models.UserAchievement, error) {
	return s.achievements.ListUnlocks(ctx, userID)
}

// CheckAchievements evaluates every definition against the user's all-time
// ledger and records unlocks for the thresholds reached. The unlock insert is
// a no-op for achievements already earned, so repeated checks award each
// achievement exactly once. Returns the achievements newly unlocked by this
// pass.
func (s *Service) CheckAchievements(ctx context.Context, userID int64) ([]models.Achievement, error) {
	definitions, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, t := range []models.ContentType{models.ContentTypeMovie, models.ContentTypeSeries, models.ContentTypeAnime} {
		n, err := s.ledger.CountByType(ctx, userID, t, nil, nil)
		if err != nil {
			return nil, err
		}
		counts[string(t)] = n
	}
	minutes, err := s.ledger.SumMinutes(ctx, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	counts[models.TargetHours] = minutes / 60

	var unlocked []models.Achievement
	for _, def := range definitions {
		if counts[def.AchievementType] < def.RequiredCount {
			continue
		}
		created, err := s.achievements.InsertUnlock(ctx, userID, def.ID)
		if err != nil {
			return nil, err
		}
		if created {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked, nil
}

func validateGoal(up models.WatchGoalUpsert) error {
	if strings.TrimSpace(up.Name) == "" {
		return ErrNameRequired
	}
	if up.TargetCount <= 0 {
		return ErrTargetInvalid
	}
	switch up.TargetType {
	case models.TargetMovies, models.TargetSeries, models.TargetAnime, models.TargetHours:
	default:
		return ErrTargetTypeInvalid
	}
	if !up.EndDate.After(up.StartDate) {
		return ErrDateRangeInvalid
	}
	return nil
}
