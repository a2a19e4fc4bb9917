package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"cinetrack/internal/database"
	"cinetrack/models"
)

type fakeStore struct {
	mu       sync.Mutex
	byTVMaze map[int64]models.Content
	nextID   int64
	upserts  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byTVMaze: make(map[int64]models.Content)}
}

func (f *fakeStore) Upsert(ctx context.Context, up models.ContentUpsert) (models.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	existing, ok := f.byTVMaze[up.TVMazeID]
	if !ok {
		f.nextID++
		existing = models.Content{ID: f.nextID, TVMazeID: up.TVMazeID}
	}
	existing.Title = up.Title
	existing.ContentType = up.ContentType
	if up.IMDBRating != nil {
		existing.IMDBRating = up.IMDBRating
	}
	if len(up.Genres) > 0 {
		existing.Genres = up.Genres
	}
	f.byTVMaze[up.TVMazeID] = existing
	return existing, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (models.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byTVMaze {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Content{}, database.ErrNotFound
}

func (f *fakeStore) GetByTVMazeID(ctx context.Context, tvmazeID int64) (models.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byTVMaze[tvmazeID]; ok {
		return c, nil
	}
	return models.Content{}, database.ErrNotFound
}

func (f *fakeStore) Search(ctx context.Context, query string, contentType models.ContentType) ([]models.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Content
	for _, c := range f.byTVMaze {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) TVMazeIDs(ctx context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id := range f.byTVMaze {
		ids = append(ids, id)
	}
	return ids, nil
}

func newTestService(t *testing.T, handler http.Handler) (*Service, *fakeStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	store := newFakeStore()
	svc := NewService(store, Options{
		BaseURL:       server.URL,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
		// Tests should not be throttled.
		RateInterval: time.Microsecond,
		RateBurst:    1000,
		CacheTTL:     time.Minute,
	})
	return svc, store
}

func TestRateLimiterConfiguredFromOptions(t *testing.T) {
	svc := NewService(newFakeStore(), Options{
		RateInterval: 100 * time.Millisecond,
		RateBurst:    3,
	})
	if got := svc.client.limiter.Limit(); got != rate.Every(100*time.Millisecond) {
		t.Errorf("limit: got %v, want %v", got, rate.Every(100*time.Millisecond))
	}
	if got := svc.client.limiter.Burst(); got != 3 {
		t.Errorf("burst: got %d, want 3", got)
	}

	// Zero values fall back to the upstream-safe defaults.
	svc = NewService(newFakeStore(), Options{})
	if got := svc.client.limiter.Limit(); got != rate.Every(500*time.Millisecond) {
		t.Errorf("default limit: got %v", got)
	}
	if got := svc.client.limiter.Burst(); got != 5 {
		t.Errorf("default burst: got %d, want 5", got)
	}
}

func TestSearchNormalizesAndPersists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/shows", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "breaking" {
			t.Errorf("unexpected query %q", got)
		}
		fmt.Fprint(w, `[
			{"score": 0.9, "show": {"id": 169, "name": "Breaking Bad", "type": "Scripted", "language": "English",
				"genres": ["Drama", "Crime"], "status": "Ended", "premiered": "2008-01-20",
				"rating": {"average": 9.2}, "summary": "<p>A chemistry teacher.</p>", "updated": 100}},
			{"score": 0.5, "show": {"id": 528, "name": "Death Note", "type": "Animation", "language": "Japanese",
				"genres": ["Anime", "Thriller"], "rating": {"average": 8.8}, "updated": 200}}
		]`)
	})

	svc, store := newTestService(t, mux)

	resp, err := svc.Search(context.Background(), "breaking", "", "")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}

	first := resp.Results[0]
	if first.Title != "Breaking Bad" || first.ContentType != models.ContentTypeSeries {
		t.Errorf("unexpected first result: %+v", first)
	}
	if first.Overview != "A chemistry teacher." {
		t.Errorf("summary tags not stripped: %q", first.Overview)
	}
	if resp.Results[1].ContentType != models.ContentTypeAnime {
		t.Errorf("expected anime classification, got %s", resp.Results[1].ContentType)
	}

	if _, err := store.GetByTVMazeID(context.Background(), 169); err != nil {
		t.Errorf("search hit was not persisted: %v", err)
	}
}

func TestSearchEmptyResultIsNotError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/shows", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	svc, _ := newTestService(t, mux)

	resp, err := svc.Search(context.Background(), "zzzzz", "", "")
	if err != nil {
		t.Fatalf("empty search should not fail: %v", err)
	}
	if len(resp.Results) != 0 || resp.TotalResults != 0 {
		t.Fatalf("expected empty response, got %+v", resp)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())
	if _, err := svc.Search(context.Background(), "  ", "", ""); !errors.Is(err, ErrQueryRequired) {
		t.Fatalf("expected ErrQueryRequired, got %v", err)
	}
}

func TestShowNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/shows/999999", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	svc, store := newTestService(t, mux)

	_, err := svc.Show(context.Background(), 999999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.upserts != 0 {
		t.Errorf("nothing should be persisted on a miss")
	}
}

func TestRetriesExhaustedMapToUpstreamUnavailable(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/shows/1", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	svc, _ := newTestService(t, mux)

	_, err := svc.Show(context.Background(), 1)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestInvalidPayloadIsRejectedWithoutCaching(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/shows/7", func(w http.ResponseWriter, r *http.Request) {
		// Name missing: the payload must be rejected.
		fmt.Fprint(w, `{"id": 7, "genres": ["Drama"]}`)
	})

	svc, store := newTestService(t, mux)

	if _, err := svc.Show(context.Background(), 7); !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
	if store.upserts != 0 {
		t.Errorf("invalid payload must not be persisted")
	}
	if _, ok := svc.cache.get("show:7"); ok {
		t.Errorf("invalid payload must not be cached")
	}
}

func TestShowDetailUsesCache(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/shows/42", func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"id": 42, "name": "Firefly", "genres": ["Science-Fiction"], "rating": {}}`)
	})

	svc, _ := newTestService(t, mux)

	for i := 0; i < 3; i++ {
		if _, err := svc.Show(context.Background(), 42); err != nil {
			t.Fatalf("show fetch %d failed: %v", i, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestShowIndexPastCapIsEmpty(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())

	shows, err := svc.ShowIndex(context.Background(), maxIndexPage+1)
	if err != nil {
		t.Fatalf("index past cap should not fail: %v", err)
	}
	if len(shows) != 0 {
		t.Fatalf("expected empty page, got %d entries", len(shows))
	}
}

func TestShowIndexPastEndIsEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/shows", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	svc, _ := newTestService(t, mux)

	shows, err := svc.ShowIndex(context.Background(), 200)
	if err != nil {
		t.Fatalf("index past end should not fail: %v", err)
	}
	if len(shows) != 0 {
		t.Fatalf("expected empty page, got %d entries", len(shows))
	}
}

func TestRefreshUpdatedOnlyTouchesStoredShows(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/updates/shows", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"169": 1700000000, "9999": 1700000001}`)
	})
	var fetched []string
	var fetchedMu sync.Mutex
	mux.HandleFunc("/shows/169", func(w http.ResponseWriter, r *http.Request) {
		fetchedMu.Lock()
		fetched = append(fetched, r.URL.Path)
		fetchedMu.Unlock()
		fmt.Fprint(w, `{"id": 169, "name": "Breaking Bad", "genres": ["Drama"], "rating": {}, "updated": 1700000000}`)
	})

	svc, store := newTestService(t, mux)
	store.byTVMaze[169] = models.Content{ID: 1, TVMazeID: 169, Title: "Breaking Bad"}
	store.byTVMaze[170] = models.Content{ID: 2, TVMazeID: 170, Title: "Unchanged"}

	refreshed, err := svc.RefreshUpdated(context.Background(), "day")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed != 1 {
		t.Fatalf("expected 1 refreshed row, got %d", refreshed)
	}
	if len(fetched) != 1 {
		t.Fatalf("expected exactly one upstream fetch, got %v", fetched)
	}
}

func TestClassifyShow(t *testing.T) {
	cases := []struct {
		name string
		show tvmazeShow
		want models.ContentType
	}{
		{"plain series", tvmazeShow{Type: "Scripted", Language: "English"}, models.ContentTypeSeries},
		{"anime genre", tvmazeShow{Genres: []string{"Anime"}}, models.ContentTypeAnime},
		{"japanese animation", tvmazeShow{Type: "Animation", Language: "Japanese"}, models.ContentTypeAnime},
		{"western animation", tvmazeShow{Type: "Animation", Language: "English"}, models.ContentTypeSeries},
	}
	for _, tc := range cases {
		if got := classifyShow(&tc.show); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestStripTags(t *testing.T) {
	in := `<p><b>Won</b> the Peabody Award.</p>`
	if got := stripTags(in); got != "Won the Peabody Award." {
		t.Errorf("stripTags: got %q", got)
	}
}
