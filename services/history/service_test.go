package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinetrack/internal/database"
	"cinetrack/models"
)

type fakeLedgerStore struct {
	entries []models.WatchHistoryEntry
	nextID  int64
}

func (f *fakeLedgerStore) Insert(ctx context.Context, entry models.WatchHistoryEntry) (models.WatchHistoryEntry, error) {
	f.nextID++
	entry.ID = f.nextID
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeLedgerStore) Query(ctx context.Context, userID int64, filter database.HistoryFilter) ([]models.HistoryWithContent, error) {
	var out []models.HistoryWithContent
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		if filter.Start != nil && e.WatchedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && !e.WatchedAt.Before(*filter.End) {
			continue
		}
		out = append(out, models.HistoryWithContent{Entry: e})
	}
	return out, nil
}

func (f *fakeLedgerStore) Delete(ctx context.Context, id, userID int64) error {
	for i, e := range f.entries {
		if e.ID == id && e.UserID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type fakeContentReader struct {
	known map[int64]models.Content
}

func (f *fakeContentReader) GetByID(ctx context.Context, id int64) (models.Content, error) {
	content, ok := f.known[id]
	if !ok {
		return models.Content{}, database.ErrNotFound
	}
	return content, nil
}

func newTestService() (*Service, *fakeLedgerStore) {
	store := &fakeLedgerStore{}
	content := &fakeContentReader{known: map[int64]models.Content{
		10: {ID: 10, Title: "Some Movie", ContentType: models.ContentTypeMovie},
	}}
	return NewService(store, content), store
}

func TestAppendValidation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name    string
		create  models.WatchHistoryCreate
		wantErr error
	}{
		{"missing content", models.WatchHistoryCreate{DurationMinutes: 30}, ErrContentIDRequired},
		{"zero duration", models.WatchHistoryCreate{ContentID: 10}, ErrDurationInvalid},
		{"negative duration", models.WatchHistoryCreate{ContentID: 10, DurationMinutes: -5}, ErrDurationInvalid},
		{"unknown content", models.WatchHistoryCreate{ContentID: 99, DurationMinutes: 30}, ErrContentUnknown},
	}
	for _, tc := range cases {
		if _, err := svc.Append(context.Background(), 1, tc.create); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestAppendDefaultsTimestamp(t *testing.T) {
	svc, _ := newTestService()

	before := time.Now().UTC()
	entry, err := svc.Append(context.Background(), 1, models.WatchHistoryCreate{ContentID: 10, DurationMinutes: 45})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	after := time.Now().UTC()

	if entry.WatchedAt.Before(before) || entry.WatchedAt.After(after) {
		t.Errorf("default watched_at %v outside [%v, %v]", entry.WatchedAt, before, after)
	}
}

func TestAppendKeepsExplicitTimestamp(t *testing.T) {
	svc, _ := newTestService()

	when := time.Date(2026, 1, 10, 21, 0, 0, 0, time.UTC)
	entry, err := svc.Append(context.Background(), 1, models.WatchHistoryCreate{
		ContentID:       10,
		DurationMinutes: 45,
		WatchedAt:       &when,
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if !entry.WatchedAt.Equal(when) {
		t.Errorf("watched_at: got %v, want %v", entry.WatchedAt, when)
	}
}

func TestRewatchAppendsSeparateRows(t *testing.T) {
	svc, store := newTestService()

	for i := 0; i < 3; i++ {
		if _, err := svc.Append(context.Background(), 1, models.WatchHistoryCreate{ContentID: 10, DurationMinutes: 90}); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}
	if len(store.entries) != 3 {
		t.Fatalf("expected 3 ledger rows, got %d", len(store.entries))
	}
}

func TestQueryBoundsRange(t *testing.T) {
	svc, _ := newTestService()

	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	for _, when := range []time.Time{jan, feb} {
		w := when
		if _, err := svc.Append(context.Background(), 1, models.WatchHistoryCreate{ContentID: 10, DurationMinutes: 30, WatchedAt: &w}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows, err := svc.Query(context.Background(), 1, &start, nil, "")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(rows) != 1 || !rows[0].Entry.WatchedAt.Equal(feb) {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestRemoveScopedToOwner(t *testing.T) {
	svc, store := newTestService()

	entry, err := svc.Append(context.Background(), 1, models.WatchHistoryCreate{ContentID: 10, DurationMinutes: 30})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if err := svc.Remove(context.Background(), 2, entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("foreign delete: got %v, want ErrEntryNotFound", err)
	}
	if err := svc.Remove(context.Background(), 1, entry.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if len(store.entries) != 0 {
		t.Errorf("ledger still holds %d rows", len(store.entries))
	}
}
