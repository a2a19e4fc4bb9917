package watchlist

import (
	"context"
	"errors"

	"cinetrack/internal/database"
	"cinetrack/models"
)

var (
	ErrContentIDRequired = errors.New("content_id is required")
	ErrContentUnknown    = errors.New("content does not exist")
	ErrAlreadyListed     = errors.New("content is already on the watchlist")
	ErrItemNotFound      = errors.New("watchlist item not found")
	ErrNegativeProgress  = errors.New("watched_episodes cannot be negative")
)

// WatchlistStore is the persistence surface for watchlist rows.
type WatchlistStore interface {
	Insert(ctx context.Context, userID, contentID int64, watchedEpisodes int, isCompleted bool) (models.WatchlistItem, error)
	Get(ctx context.Context, id, userID int64) (models.WatchlistItem, error)
	ListByUser(ctx context.Context, userID int64) ([]models.WatchlistItem, error)
	UpdateProgress(ctx context.Context, id, userID int64, watchedEpisodes int, isCompleted bool) (models.WatchlistItem, error)
	Delete(ctx context.Context, id, userID int64) error
}

// ContentReader resolves content rows for progress clamping.
type ContentReader interface {
	GetByID(ctx context.Context, id int64) (models.Content, error)
}

// Service manages per-user episode progress. Progress never touches the
// watch history ledger; the two are written independently.
type Service struct {
	store   WatchlistStore
	content ContentReader
}

func NewService(store WatchlistStore, content ContentReader) *Service {
	return &Service{store: store, content: content}
}

// List returns the user's watchlist, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]models.WatchlistItem, error) {
	return s.store.ListByUser(ctx, userID)
}

// Add puts content on the user's watchlist. The content must already exist
// locally, and a second add of the same content is a conflict.
func (s *Service) Add(ctx context.Context, userID int64, up models.WatchlistUpsert) (models.WatchlistItem, error) {
	if up.ContentID == 0 {
		return models.WatchlistItem{}, ErrContentIDRequired
	}
	if up.WatchedEpisodes < 0 {
		return models.WatchlistItem{}, ErrNegativeProgress
	}

	content, err := s.content.GetByID(ctx, up.ContentID)
	if errors.Is(err, database.ErrNotFound) {
		return models.WatchlistItem{}, ErrContentUnknown
	}
	if err != nil {
		return models.WatchlistItem{}, err
	}

	watched, completed := clampProgress(content, up.WatchedEpisodes, up.IsCompleted)
	item, err := s.store.Insert(ctx, userID, up.ContentID, watched, completed)
	if errors.Is(err, database.ErrConflict) {
		return models.WatchlistItem{}, ErrAlreadyListed
	}
	return item, err
}

// UpdateProgress overwrites an item's progress, clamping watched episodes to
// the known episode total. Completion follows the clamped count: set when the
// end is reached, cleared when progress moves back below it.
func (s *Service) UpdateProgress(ctx context.Context, userID, itemID int64, up models.WatchlistUpsert) (models.WatchlistItem, error) {
	if up.WatchedEpisodes < 0 {
		return models.WatchlistItem{}, ErrNegativeProgress
	}

	item, err := s.store.Get(ctx, itemID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return models.WatchlistItem{}, ErrItemNotFound
	}
	if err != nil {
		return models.WatchlistItem{}, err
	}

	content, err := s.content.GetByID(ctx, item.ContentID)
	if err != nil {
		return models.WatchlistItem{}, err
	}

	watched, completed := clampProgress(content, up.WatchedEpisodes, up.IsCompleted)
	updated, err := s.store.UpdateProgress(ctx, itemID, userID, watched, completed)
	if errors.Is(err, database.ErrNotFound) {
		return models.WatchlistItem{}, ErrItemNotFound
	}
	return updated, err
}

// Remove deletes a watchlist item. History rows referencing the content are
// untouched.
func (s *Service) Remove(ctx context.Context, userID, itemID int64) error {
	err := s.store.Delete(ctx, itemID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrItemNotFound
	}
	return err
}

// clampProgress bounds watched episodes by the total when the total is known.
// With a known total the completion flag is derived, not taken from the
// caller: true exactly when every episode is watched, so decrementing below
// the total clears it. Without a total (movies, shows still airing) the
// caller's flag is kept as-is.
func clampProgress(content models.Content, watched int, isCompleted bool) (int, bool) {
	if content.TotalEpisodes == nil || *content.TotalEpisodes <= 0 {
		return watched, isCompleted
	}
	total := *content.TotalEpisodes
	if watched > total {
		watched = total
	}
	return watched, watched == total
}
