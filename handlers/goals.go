package handlers

import (
	"context"
	"errors"
	"net/http"

	"cinetrack/models"
	"cinetrack/services/goals"
)

type goalService interface {
	Create(ctx context.Context, userID int64, up models.WatchGoalUpsert) (models.WatchGoal, error)
	List(ctx context.Context, userID int64, completed *bool) ([]models.WatchGoal, error)
	Get(ctx context.Context, userID, goalID int64) (models.WatchGoal, error)
	Update(ctx context.Context, userID, goalID int64, up models.WatchGoalUpsert) (models.WatchGoal, error)
	Delete(ctx context.Context, userID, goalID int64) error
	EvaluateGoals(ctx context.Context, userID int64) ([]models.WatchGoal, error)
	Achievements(ctx context.Context) ([]models.Achievement, error)
	UserAchievements(ctx context.Context, userID int64) ([]models.UserAchievement, error)
	CheckAchievements(ctx context.Context, userID int64) ([]models.Achievement, error)
}

var _ goalService = (*goals.Service)(nil)

type GoalsHandler struct {
	Service goalService
}

func NewGoalsHandler(service goalService) *GoalsHandler {
	return &GoalsHandler{Service: service}
}

func writeGoalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, goals.ErrNameRequired),
		errors.Is(err, goals.ErrTargetInvalid),
		errors.Is(err, goals.ErrTargetTypeInvalid),
		errors.Is(err, goals.ErrDateRangeInvalid):
		writeError(w, http.StatusBadRequest, KindValidation, err.Error())
	case errors.Is(err, goals.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, KindNotFound, err.Error())
	default:
		writeInternalError(w, err)
	}
}

func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var completed *bool
	switch r.URL.Query().Get("completed") {
	case "true":
		v := true
		completed = &v
	case "false":
		v := false
		completed = &v
	}

	list, err := h.Service.List(r.Context(), user.ID, completed)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if list == nil {
		list = []models.WatchGoal{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var up models.WatchGoalUpsert
	if !decodeBody(w, r, &up) {
		return
	}
	goal, err := h.Service.Create(r.Context(), user.ID, up)
	if err != nil {
		writeGoalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	goalID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid goal id")
		return
	}
	goal, err := h.Service.Get(r.Context(), user.ID, goalID)
	if err != nil {
		writeGoalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	goalID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid goal id")
		return
	}
	var up models.WatchGoalUpsert
	if !decodeBody(w, r, &up) {
		return
	}
	goal, err := h.Service.Update(r.Context(), user.ID, goalID, up)
	if err != nil {
		writeGoalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	goalID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid goal id")
		return
	}
	if err := h.Service.Delete(r.Context(), user.ID, goalID); err != nil {
		writeGoalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckGoals re-evaluates open goals and returns the ones completed by this
// pass.
func (h *GoalsHandler) CheckGoals(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	completed, err := h.Service.EvaluateGoals(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if completed == nil {
		completed = []models.WatchGoal{}
	}
	writeJSON(w, http.StatusOK, completed)
}

func (h *GoalsHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.Service.Achievements(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if achievements == nil {
		achievements = []models.Achievement{}
	}
	writeJSON(w, http.StatusOK, achievements)
}

func (h *GoalsHandler) UserAchievements(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	unlocks, err := h.Service.UserAchievements(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if unlocks == nil {
		unlocks = []models.UserAchievement{}
	}
	writeJSON(w, http.StatusOK, unlocks)
}

// CheckAchievements evaluates thresholds and returns achievements newly
// unlocked by this call. Repeating the call returns an empty list.
func (h *GoalsHandler) CheckAchievements(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	unlocked, err := h.Service.CheckAchievements(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if unlocked == nil {
		unlocked = []models.Achievement{}
	}
	writeJSON(w, http.StatusOK, unlocked)
}
