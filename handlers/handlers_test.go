package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"cinetrack/models"
	"cinetrack/services/watchlist"
)

// withUser attaches an authenticated user the way AuthMiddleware would.
func withUser(r *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, models.User{ID: userID, IsActive: true})
	return r.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var envelope errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v (body %q)", err, rec.Body.String())
	}
	return envelope.Error
}

type fakeAuth struct {
	user models.User
	err  error
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (models.User, error) {
	return f.user, f.err
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	handler := AuthMiddleware(&fakeAuth{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without credentials")
	}))

	for _, header := range []string{"", "Bearer ", "Basic abc", "token"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status %d, want 401", header, rec.Code)
		}
		if body := decodeEnvelope(t, rec); body.Kind != KindUnauthorized {
			t.Errorf("header %q: kind %q, want %q", header, body.Kind, KindUnauthorized)
		}
	}
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	auth := &fakeAuth{err: errors.New("invalid or expired token")}
	handler := AuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with rejected token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewarePassesUser(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: 42, IsActive: true}}
	var seen int64
	handler := AuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			t.Error("no user on context")
		}
		seen = user.ID
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil)
	req.Header.Set("Authorization", "Bearer good")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != 42 {
		t.Errorf("handler saw user %d, want 42", seen)
	}
}

type fakeWatchlistService struct {
	addErr    error
	updateErr error
	items     []models.WatchlistItem
}

func (f *fakeWatchlistService) List(ctx context.Context, userID int64) ([]models.WatchlistItem, error) {
	return f.items, nil
}

func (f *fakeWatchlistService) Add(ctx context.Context, userID int64, up models.WatchlistUpsert) (models.WatchlistItem, error) {
	if f.addErr != nil {
		return models.WatchlistItem{}, f.addErr
	}
	return models.WatchlistItem{ID: 1, UserID: userID, ContentID: up.ContentID}, nil
}

func (f *fakeWatchlistService) UpdateProgress(ctx context.Context, userID, itemID int64, up models.WatchlistUpsert) (models.WatchlistItem, error) {
	if f.updateErr != nil {
		return models.WatchlistItem{}, f.updateErr
	}
	return models.WatchlistItem{ID: itemID, UserID: userID, WatchedEpisodes: up.WatchedEpisodes}, nil
}

func (f *fakeWatchlistService) Remove(ctx context.Context, userID, itemID int64) error {
	return nil
}

func TestWatchlistAddConflictEnvelope(t *testing.T) {
	h := NewWatchlistHandler(&fakeWatchlistService{addErr: watchlist.ErrAlreadyListed})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/watchlist", strings.NewReader(`{"content_id": 7}`)), 1)
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Kind != KindConflict {
		t.Errorf("kind %q, want %q", body.Kind, KindConflict)
	}
}

func TestWatchlistAddCreated(t *testing.T) {
	h := NewWatchlistHandler(&fakeWatchlistService{})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/watchlist", strings.NewReader(`{"content_id": 7}`)), 1)
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201", rec.Code)
	}
	var item models.WatchlistItem
	if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if item.ContentID != 7 {
		t.Errorf("content id %d, want 7", item.ContentID)
	}
}

func TestWatchlistAddRejectsMalformedBody(t *testing.T) {
	h := NewWatchlistHandler(&fakeWatchlistService{})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/watchlist", strings.NewReader(`{not json`)), 1)
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Kind != KindValidation {
		t.Errorf("kind %q, want %q", body.Kind, KindValidation)
	}
}

func TestWatchlistUpdateUnknownItem(t *testing.T) {
	h := NewWatchlistHandler(&fakeWatchlistService{updateErr: watchlist.ErrItemNotFound})

	req := withUser(httptest.NewRequest(http.MethodPut, "/api/v1/watchlist/9", strings.NewReader(`{"watched_episodes": 3}`)), 1)
	req = mux.SetURLVars(req, map[string]string{"id": "9"})
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestWatchlistListEmptyIsArray(t *testing.T) {
	h := NewWatchlistHandler(&fakeWatchlistService{})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil), 1)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty list body %q, want []", got)
	}
}

type fakeHistoryService struct {
	rows []models.HistoryWithContent
}

func (f *fakeHistoryService) Append(ctx context.Context, userID int64, create models.WatchHistoryCreate) (models.WatchHistoryEntry, error) {
	return models.WatchHistoryEntry{ID: 1, UserID: userID, ContentID: create.ContentID, DurationMinutes: create.DurationMinutes}, nil
}

func (f *fakeHistoryService) Query(ctx context.Context, userID int64, start, end *time.Time, contentType models.ContentType) ([]models.HistoryWithContent, error) {
	return f.rows, nil
}

func (f *fakeHistoryService) Remove(ctx context.Context, userID, entryID int64) error {
	return nil
}

type fakeStatsService struct{}

func (fakeStatsService) Weekly(ctx context.Context, userID int64) (models.PeriodStats, error) {
	return models.PeriodStats{}, nil
}

func (fakeStatsService) Monthly(ctx context.Context, userID int64) (models.PeriodStats, error) {
	return models.PeriodStats{}, nil
}

func (fakeStatsService) Yearly(ctx context.Context, userID int64) (models.YearlyStats, error) {
	return models.YearlyStats{}, nil
}

func (fakeStatsService) Heatmap(ctx context.Context, userID int64) (map[string]models.HeatmapEntry, error) {
	return map[string]models.HeatmapEntry{}, nil
}

func TestQueryHistoryRejectsBadDates(t *testing.T) {
	h := NewAnalyticsHandler(&fakeHistoryService{}, fakeStatsService{})

	for _, query := range []string{"start_date=yesterday", "end_date=31-01-2026", "content_type=documentary"} {
		req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history?"+query, nil), 1)
		rec := httptest.NewRecorder()
		h.QueryHistory(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", query, rec.Code)
		}
		if body := decodeEnvelope(t, rec); body.Kind != KindValidation {
			t.Errorf("%s: kind %q, want %q", query, body.Kind, KindValidation)
		}
	}
}

func TestQueryHistoryAcceptsBothDateForms(t *testing.T) {
	h := NewAnalyticsHandler(&fakeHistoryService{}, fakeStatsService{})

	for _, query := range []string{"start_date=2026-01-01", "start_date=2026-01-01T00:00:00Z", ""} {
		req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/history?"+query, nil), 1)
		rec := httptest.NewRecorder()
		h.QueryHistory(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d, want 200", query, rec.Code)
		}
	}
}

func TestAppendHistoryCreated(t *testing.T) {
	h := NewAnalyticsHandler(&fakeHistoryService{}, fakeStatsService{})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/analytics/history", strings.NewReader(`{"content_id": 10, "duration_minutes": 45}`)), 1)
	rec := httptest.NewRecorder()
	h.AppendHistory(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201", rec.Code)
	}
}

func TestYearlyStatsTopRatedNeverNull(t *testing.T) {
	h := NewAnalyticsHandler(&fakeHistoryService{}, fakeStatsService{})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/stats/yearly", nil), 1)
	rec := httptest.NewRecorder()
	h.YearlyStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var payload struct {
		TopRated json.RawMessage `json:"top_rated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if string(payload.TopRated) == "null" {
		t.Error("topRated serialized as null, want []")
	}
}

func TestRequireUserWithoutContext(t *testing.T) {
	h := NewWatchlistHandler(&fakeWatchlistService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}
