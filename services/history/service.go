package history

import (
	"context"
	"errors"
	"time"

	"cinetrack/internal/database"
	"cinetrack/models"
)

var (
	ErrContentIDRequired = errors.New("content_id is required")
	ErrContentUnknown    = errors.New("content does not exist")
	ErrDurationInvalid   = errors.New("duration_minutes must be positive")
	ErrEntryNotFound     = errors.New("history entry not found")
)

// LedgerStore is the persistence surface for the append-only watch ledger.
type LedgerStore interface {
	Insert(ctx context.Context, entry models.WatchHistoryEntry) (models.WatchHistoryEntry, error)
	Query(ctx context.Context, userID int64, filter database.HistoryFilter) ([]models.HistoryWithContent, error)
	Delete(ctx context.Context, id, userID int64) error
}

// ContentReader verifies that logged content exists.
type ContentReader interface {
	GetByID(ctx context.Context, id int64) (models.Content, error)
}

// Service owns the watch history ledger. Every watch event is a new row;
// nothing here ever modifies watchlist progress.
type Service struct {
	store   LedgerStore
	content ContentReader
}

func NewService(store LedgerStore, content ContentReader) *Service {
	return &Service{store: store, content: content}
}

// Append logs one watch event. A missing timestamp defaults to now.
func (s *Service) Append(ctx context.Context, userID int64, create models.WatchHistoryCreate) (models.WatchHistoryEntry, error) {
	if create.ContentID == 0 {
		return models.WatchHistoryEntry{}, ErrContentIDRequired
	}
	if create.DurationMinutes <= 0 {
		return models.WatchHistoryEntry{}, ErrDurationInvalid
	}

	if _, err := s.content.GetByID(ctx, create.ContentID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.WatchHistoryEntry{}, ErrContentUnknown
		}
		return models.WatchHistoryEntry{}, err
	}

	watchedAt := time.Now().UTC()
	if create.WatchedAt != nil {
		watchedAt = create.WatchedAt.UTC()
	}

	return s.store.Insert(ctx, models.WatchHistoryEntry{
		UserID:          userID,
		ContentID:       create.ContentID,
		WatchedAt:       watchedAt,
		DurationMinutes: create.DurationMinutes,
		Platform:        create.Platform,
		EpisodeNumber:   create.EpisodeNumber,
		SeasonNumber:    create.SeasonNumber,
	})
}

// Query returns ledger rows in insertion order, optionally bounded by a date
// range and content type.
func (s *Service) Query(ctx context.Context, userID int64, start, end *time.Time, contentType models.ContentType) ([]models.HistoryWithContent, error) {
	return s.store.Query(ctx, userID, database.HistoryFilter{
		Start:       start,
		End:         end,
		ContentType: contentType,
	})
}

// Remove deletes one ledger row. Statistics recompute from what remains;
// goals already marked completed stay completed.
func (s *Service) Remove(ctx context.Context, userID, entryID int64) error {
	err := s.store.Delete(ctx, entryID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrEntryNotFound
	}
	return err
}
