package lists

import (
	"context"
	"errors"
	"strings"

	"cinetrack/internal/database"
	"cinetrack/models"
)

var (
	ErrContentIDRequired = errors.New("content_id is required")
	ErrContentUnknown    = errors.New("content does not exist")
	ErrNameRequired      = errors.New("list name is required")
	ErrAlreadyListed     = errors.New("content is already on the list")
	ErrNotFound          = errors.New("list entry not found")
	ErrRatingOutOfRange  = errors.New("rating must be between 1 and 10")
)

// Store is the persistence surface for the curation tables.
type Store interface {
	BucketItems(ctx context.Context, userID int64) ([]models.BucketListItem, error)
	AddBucketItem(ctx context.Context, userID, contentID int64) (models.BucketListItem, error)
	MarkBucketWatched(ctx context.Context, id, userID int64) error
	DeleteBucketItem(ctx context.Context, id, userID int64) error

	CustomLists(ctx context.Context, userID int64) ([]models.CustomList, error)
	GetCustomList(ctx context.Context, id, userID int64) (models.CustomList, error)
	CreateCustomList(ctx context.Context, userID int64, name, description string, isPublic bool) (models.CustomList, error)
	UpdateCustomList(ctx context.Context, id, userID int64, name, description string, isPublic bool) (models.CustomList, error)
	DeleteCustomList(ctx context.Context, id, userID int64) error
	CustomListItems(ctx context.Context, listID, userID int64) ([]models.CustomListItem, error)
	AddCustomListItem(ctx context.Context, listID, userID, contentID int64, note string) (models.CustomListItem, error)
	RemoveCustomListItem(ctx context.Context, listID, itemID, userID int64) error

	Recommendations(ctx context.Context, userID int64) ([]models.Recommendation, error)
	CreateRecommendation(ctx context.Context, userID, contentID int64, note string, isPublic bool) (models.Recommendation, error)
	DeleteRecommendation(ctx context.Context, id, userID int64) error

	ReviewsForContent(ctx context.Context, contentID, userID int64) ([]models.Review, error)
	CreateReview(ctx context.Context, userID, contentID int64, description string, isPrivate bool) (models.Review, error)
	UpdateReview(ctx context.Context, id, userID int64, description string, isPrivate bool) (models.Review, error)
	DeleteReview(ctx context.Context, id, userID int64) error

	UpsertRating(ctx context.Context, userID, contentID int64, score int) (models.Rating, error)
	GetRating(ctx context.Context, userID, contentID int64) (models.Rating, error)
	DeleteRating(ctx context.Context, userID, contentID int64) error
}

// ContentReader verifies referenced content exists before it is listed.
type ContentReader interface {
	GetByID(ctx context.Context, id int64) (models.Content, error)
}

// Service covers the curation features: bucket list, custom lists,
// recommendations, reviews and ratings.
type Service struct {
	store   Store
	content ContentReader
}

func NewService(store Store, content ContentReader) *Service {
	return &Service{store: store, content: content}
}

func (s *Service) requireContent(ctx context.Context, contentID int64) error {
	if contentID == 0 {
		return ErrContentIDRequired
	}
	if _, err := s.content.GetByID(ctx, contentID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrContentUnknown
		}
		return err
	}
	return nil
}

func (s *Service) BucketItems(ctx context.Context, userID int64) ([]models.BucketListItem, error) {
	return s.store.BucketItems(ctx, userID)
}

func (s *Service) AddBucketItem(ctx context.Context, userID, contentID int64) (models.BucketListItem, error) {
	if err := s.requireContent(ctx, contentID); err != nil {
		return models.BucketListItem{}, err
	}
	item, err := s.store.AddBucketItem(ctx, userID, contentID)
	if errors.Is(err, database.ErrConflict) {
		return models.BucketListItem{}, ErrAlreadyListed
	}
	return item, err
}

func (s *Service) MarkBucketWatched(ctx context.Context, userID, itemID int64) error {
	return mapNotFound(s.store.MarkBucketWatched(ctx, itemID, userID))
}

func (s *Service) DeleteBucketItem(ctx context.Context, userID, itemID int64) error {
	return mapNotFound(s.store.DeleteBucketItem(ctx, itemID, userID))
}

func (s *Service) CustomLists(ctx context.Context, userID int64) ([]models.CustomList, error) {
	return s.store.CustomLists(ctx, userID)
}

func (s *Service) GetCustomList(ctx context.Context, userID, listID int64) (models.CustomList, []models.CustomListItem, error) {
	list, err := s.store.GetCustomList(ctx, listID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return models.CustomList{}, nil, ErrNotFound
	}
	if err != nil {
		return models.CustomList{}, nil, err
	}
	items, err := s.store.CustomListItems(ctx, listID, userID)
	if err != nil {
		return models.CustomList{}, nil, err
	}
	return list, items, nil
}

func (s *Service) CreateCustomList(ctx context.Context, userID int64, name, description string, isPublic bool) (models.CustomList, error) {
	if strings.TrimSpace(name) == "" {
		return models.CustomList{}, ErrNameRequired
	}
	return s.store.CreateCustomList(ctx, userID, strings.TrimSpace(name), description, isPublic)
}

func (s *Service) UpdateCustomList(ctx context.Context, userID, listID int64, name, description string, isPublic bool) (models.CustomList, error) {
	if strings.TrimSpace(name) == "" {
		return models.CustomList{}, ErrNameRequired
	}
	list, err := s.store.UpdateCustomList(ctx, listID, userID, strings.TrimSpace(name), description, isPublic)
	if errors.Is(err, database.ErrNotFound) {
		return models.CustomList{}, ErrNotFound
	}
	return list, err
}

func (s *Service) DeleteCustomList(ctx context.Context, userID, listID int64) error {
	return mapNotFound(s.store.DeleteCustomList(ctx, listID, userID))
}

func (s *Service) AddCustomListItem(ctx context.Context, userID, listID, contentID int64, note string) (models.CustomListItem, error) {
	if err := s.requireContent(ctx, contentID); err != nil {
		return models.CustomListItem{}, err
	}
	item, err := s.store.AddCustomListItem(ctx, listID, userID, contentID, note)
	if errors.Is(err, database.ErrConflict) {
		return models.CustomListItem{}, ErrAlreadyListed
	}
	if errors.Is(err, database.ErrNotFound) {
		return models.CustomListItem{}, ErrNotFound
	}
	return item, err
}

func (s *Service) RemoveCustomListItem(ctx context.Context, userID, listID, itemID int64) error {
	return mapNotFound(s.store.RemoveCustomListItem(ctx, listID, itemID, userID))
}

func (s *Service) Recommendations(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	return s.store.Recommendations(ctx, userID)
}

func (s *Service) CreateRecommendation(ctx context.Context, userID, contentID int64, note string, isPublic bool) (models.Recommendation, error) {
	if err := s.requireContent(ctx, contentID); err != nil {
		return models.Recommendation{}, err
	}
	return s.store.CreateRecommendation(ctx, userID, contentID, note, isPublic)
}

func (s *Service) DeleteRecommendation(ctx context.Context, userID, recommendationID int64) error {
	return mapNotFound(s.store.DeleteRecommendation(ctx, recommendationID, userID))
}

func (s *Service) ReviewsForContent(ctx context.Context, userID, contentID int64) ([]models.Review, error) {
	return s.store.ReviewsForContent(ctx, contentID, userID)
}

func (s *Service) CreateReview(ctx context.Context, userID, contentID int64, description string, isPrivate bool) (models.Review, error) {
	if err := s.requireContent(ctx, contentID); err != nil {
		return models.Review{}, err
	}
	return s.store.CreateReview(ctx, userID, contentID, description, isPrivate)
}

func (s *Service) UpdateReview(ctx context.Context, userID, reviewID int64, description string, isPrivate bool) (models.Review, error) {
	review, err := s.store.UpdateReview(ctx, reviewID, userID, description, isPrivate)
	if errors.Is(err, database.ErrNotFound) {
		return models.Review{}, ErrNotFound
	}
	return review, err
}

func (s *Service) DeleteReview(ctx context.Context, userID, reviewID int64) error {
	return mapNotFound(s.store.DeleteReview(ctx, reviewID, userID))
}

func (s *Service) RateContent(ctx context.Context, userID, contentID int64, score int) (models.Rating, error) {
	if score < 1 || score > 10 {
		return models.Rating{}, ErrRatingOutOfRange
	}
	if err := s.requireContent(ctx, contentID); err != nil {
		return models.Rating{}, err
	}
	return s.store.UpsertRating(ctx, userID, contentID, score)
}

func (s *Service) GetRating(ctx context.Context, userID, contentID int64) (models.Rating, error) {
	rating, err := s.store.GetRating(ctx, userID, contentID)
	if errors.Is(err, database.ErrNotFound) {
		return models.Rating{}, ErrNotFound
	}
	return rating, err
}

func (s *Service) DeleteRating(ctx context.Context, userID, contentID int64) error {
	return mapNotFound(s.store.DeleteRating(ctx, userID, contentID))
}

func mapNotFound(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
