package lists

import (
	"context"
	"errors"
	"testing"

	"cinetrack/internal/database"
	"cinetrack/models"
)

// fakeListStore embeds the Store interface so tests only flesh out the
// methods they touch.
type fakeListStore struct {
	Store

	bucket  map[int64]models.BucketListItem
	ratings map[[2]int64]models.Rating
	nextID  int64
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{
		bucket:  make(map[int64]models.BucketListItem),
		ratings: make(map[[2]int64]models.Rating),
		nextID:  1,
	}
}

func (f *fakeListStore) AddBucketItem(ctx context.Context, userID, contentID int64) (models.BucketListItem, error) {
	for _, item := range f.bucket {
		if item.UserID == userID && item.ContentID == contentID {
			return models.BucketListItem{}, database.ErrConflict
		}
	}
	item := models.BucketListItem{ID: f.nextID, UserID: userID, ContentID: contentID}
	f.bucket[item.ID] = item
	f.nextID++
	return item, nil
}

func (f *fakeListStore) MarkBucketWatched(ctx context.Context, id, userID int64) error {
	item, ok := f.bucket[id]
	if !ok || item.UserID != userID {
		return database.ErrNotFound
	}
	item.IsWatched = true
	f.bucket[id] = item
	return nil
}

func (f *fakeListStore) UpsertRating(ctx context.Context, userID, contentID int64, score int) (models.Rating, error) {
	key := [2]int64{userID, contentID}
	rating, ok := f.ratings[key]
	if !ok {
		rating = models.Rating{ID: f.nextID, UserID: userID, ContentID: contentID}
		f.nextID++
	}
	rating.Rating = score
	f.ratings[key] = rating
	return rating, nil
}

func (f *fakeListStore) GetRating(ctx context.Context, userID, contentID int64) (models.Rating, error) {
	rating, ok := f.ratings[[2]int64{userID, contentID}]
	if !ok {
		return models.Rating{}, database.ErrNotFound
	}
	return rating, nil
}

type fakeContentReader struct {
	known map[int64]bool
}

func (f *fakeContentReader) GetByID(ctx context.Context, id int64) (models.Content, error) {
	if !f.known[id] {
		return models.Content{}, database.ErrNotFound
	}
	return models.Content{ID: id}, nil
}

func newTestService() (*Service, *fakeListStore) {
	store := newFakeListStore()
	return NewService(store, &fakeContentReader{known: map[int64]bool{10: true}}), store
}

func TestAddBucketItemChecksContent(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.AddBucketItem(context.Background(), 1, 0); !errors.Is(err, ErrContentIDRequired) {
		t.Errorf("zero content id: got %v", err)
	}
	if _, err := svc.AddBucketItem(context.Background(), 1, 99); !errors.Is(err, ErrContentUnknown) {
		t.Errorf("unknown content: got %v", err)
	}
}

func TestAddBucketItemDuplicateIsConflict(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.AddBucketItem(context.Background(), 1, 10); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := svc.AddBucketItem(context.Background(), 1, 10); !errors.Is(err, ErrAlreadyListed) {
		t.Fatalf("duplicate: got %v, want ErrAlreadyListed", err)
	}
}

func TestMarkBucketWatchedScopedToOwner(t *testing.T) {
	svc, store := newTestService()

	item, err := svc.AddBucketItem(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := svc.MarkBucketWatched(context.Background(), 2, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign mark: got %v, want ErrNotFound", err)
	}
	if err := svc.MarkBucketWatched(context.Background(), 1, item.ID); err != nil {
		t.Fatalf("owner mark failed: %v", err)
	}
	if !store.bucket[item.ID].IsWatched {
		t.Error("watched flag not persisted")
	}
}

func TestRateContentRange(t *testing.T) {
	svc, _ := newTestService()

	for _, score := range []int{0, -1, 11} {
		if _, err := svc.RateContent(context.Background(), 1, 10, score); !errors.Is(err, ErrRatingOutOfRange) {
			t.Errorf("score %d: got %v, want ErrRatingOutOfRange", score, err)
		}
	}
	if _, err := svc.RateContent(context.Background(), 1, 10, 1); err != nil {
		t.Errorf("score 1 rejected: %v", err)
	}
	if _, err := svc.RateContent(context.Background(), 1, 10, 10); err != nil {
		t.Errorf("score 10 rejected: %v", err)
	}
}

func TestRateContentUpsertsInPlace(t *testing.T) {
	svc, store := newTestService()

	first, err := svc.RateContent(context.Background(), 1, 10, 6)
	if err != nil {
		t.Fatalf("first rating failed: %v", err)
	}
	second, err := svc.RateContent(context.Background(), 1, 10, 9)
	if err != nil {
		t.Fatalf("re-rating failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-rating created a new row: %d vs %d", second.ID, first.ID)
	}
	if len(store.ratings) != 1 {
		t.Errorf("store holds %d ratings, want 1", len(store.ratings))
	}

	got, err := svc.GetRating(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Rating != 9 {
		t.Errorf("rating %d, want 9", got.Rating)
	}
}

func TestGetRatingMissing(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.GetRating(context.Background(), 1, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
