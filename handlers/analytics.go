package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cinetrack/models"
	"cinetrack/services/history"
	"cinetrack/services/stats"
)

type historyService interface {
	Append(ctx context.Context, userID int64, create models.WatchHistoryCreate) (models.WatchHistoryEntry, error)
	Query(ctx context.Context, userID int64, start, end *time.Time, contentType models.ContentType) ([]models.HistoryWithContent, error)
	Remove(ctx context.Context, userID, entryID int64) error
}

type statsService interface {
	Weekly(ctx context.Context, userID int64) (models.PeriodStats, error)
	Monthly(ctx context.Context, userID int64) (models.PeriodStats, error)
	Yearly(ctx context.Context, userID int64) (models.YearlyStats, error)
	Heatmap(ctx context.Context, userID int64) (map[string]models.HeatmapEntry, error)
}

var (
	_ historyService = (*history.Service)(nil)
	_ statsService   = (*stats.Service)(nil)
)

type AnalyticsHandler struct {
	History historyService
	Stats   statsService
}

func NewAnalyticsHandler(historySvc historyService, statsSvc statsService) *AnalyticsHandler {
	return &AnalyticsHandler{History: historySvc, Stats: statsSvc}
}

func writeHistoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, history.ErrContentIDRequired), errors.Is(err, history.ErrDurationInvalid):
		writeError(w, http.StatusBadRequest, KindValidation, err.Error())
	case errors.Is(err, history.ErrContentUnknown), errors.Is(err, history.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, KindNotFound, err.Error())
	default:
		writeInternalError(w, err)
	}
}

// parseDateParam accepts either a date ("2026-01-31") or a full RFC 3339
// timestamp.
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func (h *AnalyticsHandler) AppendHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var create models.WatchHistoryCreate
	if !decodeBody(w, r, &create) {
		return
	}
	entry, err := h.History.Append(r.Context(), user.ID, create)
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *AnalyticsHandler) QueryHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	start, err := parseDateParam(q.Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid start_date")
		return
	}
	end, err := parseDateParam(q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid end_date")
		return
	}
	contentType := models.ContentType(q.Get("content_type"))
	if contentType != "" && !contentType.Valid() {
		writeError(w, http.StatusBadRequest, KindValidation, "content_type must be movie, series or anime")
		return
	}

	rows, err := h.History.Query(r.Context(), user.ID, start, end, contentType)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if rows == nil {
		rows = []models.HistoryWithContent{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *AnalyticsHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	entryID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid history entry id")
		return
	}
	if err := h.History.Remove(r.Context(), user.ID, entryID); err != nil {
		writeHistoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AnalyticsHandler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	result, err := h.Stats.Weekly(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AnalyticsHandler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	result, err := h.Stats.Monthly(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AnalyticsHandler) YearlyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	result, err := h.Stats.Yearly(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if result.TopRated == nil {
		result.TopRated = []models.TopRatedTitle{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AnalyticsHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	heatmap, err := h.Stats.Heatmap(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, heatmap)
}
