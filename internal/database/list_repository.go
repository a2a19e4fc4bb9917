package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cinetrack/models"
)

// ListRepository persists the lightweight curation tables: bucket list,
// custom lists, recommendations, reviews and ratings. They share a repository
// because each is a handful of statements with identical ownership scoping.
type ListRepository struct {
	db *sql.DB
}

func NewListRepository(db *sql.DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) BucketItems(ctx context.Context, userID int64) ([]models.BucketListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, content_id, is_watched, watched_at, created_at
		FROM bucket_list WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bucket items: %w", err)
	}
	defer rows.Close()

	var items []models.BucketListItem
	for rows.Next() {
		var (
			item      models.BucketListItem
			watchedAt sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.ContentID,
			&item.IsWatched, &watchedAt, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bucket item: %w", err)
		}
		item.WatchedAt = timePtr(watchedAt)
		item.CreatedAt = item.CreatedAt.UTC()
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ListRepository) AddBucketItem(ctx context.Context, userID, contentID int64) (models.BucketListItem, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO bucket_list (user_id, content_id, is_watched, created_at)
		VALUES (?, ?, 0, ?)`, userID, contentID, now)
	if err != nil {
		if isConstraintErr(err) {
			return models.BucketListItem{}, ErrConflict
		}
		return models.BucketListItem{}, fmt.Errorf("add bucket item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.BucketListItem{}, fmt.Errorf("add bucket item: %w", err)
	}
	return models.BucketListItem{ID: id, UserID: userID, ContentID: contentID, CreatedAt: now}, nil
}

// MarkBucketWatched flips a bucket entry to watched and stamps the time.
func (r *ListRepository) MarkBucketWatched(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bucket_list SET is_watched = 1, watched_at = ?
		WHERE id = ? AND user_id = ?`, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("mark bucket item watched: %w", err)
	}
	return requireAffected(res)
}

func (r *ListRepository) DeleteBucketItem(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM bucket_list WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete bucket item: %w", err)
	}
	return requireAffected(res)
}

func (r *ListRepository) CustomLists(ctx context.Context, userID int64) ([]models.CustomList, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, is_public, created_at, updated_at
		FROM custom_lists WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list custom lists: %w", err)
	}
	defer rows.Close()

	var lists []models.CustomList
	for rows.Next() {
		l, err := scanCustomList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *ListRepository) GetCustomList(ctx context.Context, id, userID int64) (models.CustomList, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, is_public, created_at, updated_at
		FROM custom_lists WHERE id = ? AND user_id = ?`, id, userID)
	return scanCustomList(row)
}

func (r *ListRepository) CreateCustomList(ctx context.Context, userID int64, name, description string, isPublic bool) (models.CustomList, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_lists (user_id, name, description, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, userID, name, description, isPublic, now, now)
	if err != nil {
		return models.CustomList{}, fmt.Errorf("create custom list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.CustomList{}, fmt.Errorf("create custom list: %w", err)
	}
	return r.GetCustomList(ctx, id, userID)
}

func (r *ListRepository) UpdateCustomList(ctx context.Context, id, userID int64, name, description string, isPublic bool) (models.CustomList, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE custom_lists SET name = ?, description = ?, is_public = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`, name, description, isPublic, time.Now().UTC(), id, userID)
	if err != nil {
		return models.CustomList{}, fmt.Errorf("update custom list: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return models.CustomList{}, err
	}
	return r.GetCustomList(ctx, id, userID)
}

func (r *ListRepository) DeleteCustomList(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM custom_lists WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete custom list: %w", err)
	}
	return requireAffected(res)
}

func (r *ListRepository) CustomListItems(ctx context.Context, listID, userID int64) ([]models.CustomListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.list_id, i.content_id, i.note, i.added_at
		FROM custom_list_items i
		JOIN custom_lists l ON l.id = i.list_id
		WHERE i.list_id = ? AND l.user_id = ?
		ORDER BY i.added_at, i.id`, listID, userID)
	if err != nil {
		return nil, fmt.Errorf("list custom list items: %w", err)
	}
	defer rows.Close()

	var items []models.CustomListItem
	for rows.Next() {
		var item models.CustomListItem
		if err := rows.Scan(&item.ID, &item.ListID, &item.ContentID, &item.Note, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan custom list item: %w", err)
		}
		item.AddedAt = item.AddedAt.UTC()
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddCustomListItem appends content to a list the user owns. Adding the same
// content twice yields ErrConflict; an unowned or missing list, ErrNotFound.
func (r *ListRepository) AddCustomListItem(ctx context.Context, listID, userID, contentID int64, note string) (models.CustomListItem, error) {
	if _, err := r.GetCustomList(ctx, listID, userID); err != nil {
		return models.CustomListItem{}, err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_list_items (list_id, content_id, note, added_at)
		VALUES (?, ?, ?, ?)`, listID, contentID, note, now)
	if err != nil {
		if isConstraintErr(err) {
			return models.CustomListItem{}, ErrConflict
		}
		return models.CustomListItem{}, fmt.Errorf("add custom list item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.CustomListItem{}, fmt.Errorf("add custom list item: %w", err)
	}
	return models.CustomListItem{ID: id, ListID: listID, ContentID: contentID, Note: note, AddedAt: now}, nil
}

func (r *ListRepository) RemoveCustomListItem(ctx context.Context, listID, itemID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM custom_list_items
		WHERE id = ? AND list_id = ?
		  AND list_id IN (SELECT id FROM custom_lists WHERE user_id = ?)`,
		itemID, listID, userID)
	if err != nil {
		return fmt.Errorf("remove custom list item: %w", err)
	}
	return requireAffected(res)
}

func (r *ListRepository) Recommendations(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, content_id, note, is_public, created_at
		FROM recommendations WHERE user_id = ? OR is_public = 1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ContentID, &rec.Note,
			&rec.IsPublic, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *ListRepository) CreateRecommendation(ctx context.Context, userID, contentID int64, note string, isPublic bool) (models.Recommendation, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recommendations (user_id, content_id, note, is_public, created_at)
		VALUES (?, ?, ?, ?, ?)`, userID, contentID, note, isPublic, now)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("create recommendation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("create recommendation: %w", err)
	}
	return models.Recommendation{ID: id, UserID: userID, ContentID: contentID, Note: note, IsPublic: isPublic, CreatedAt: now}, nil
}

func (r *ListRepository) DeleteRecommendation(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recommendations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recommendation: %w", err)
	}
	return requireAffected(res)
}

// ReviewsForContent returns reviews visible to the requesting user: public
// reviews from everyone plus the requester's own private ones.
func (r *ListRepository) ReviewsForContent(ctx context.Context, contentID, userID int64) ([]models.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, content_id, description, is_private, created_at, updated_at
		FROM reviews WHERE content_id = ? AND (is_private = 0 OR user_id = ?)
		ORDER BY created_at DESC, id DESC`, contentID, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var rev models.Review
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.ContentID, &rev.Description,
			&rev.IsPrivate, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		rev.CreatedAt = rev.CreatedAt.UTC()
		rev.UpdatedAt = rev.UpdatedAt.UTC()
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func (r *ListRepository) CreateReview(ctx context.Context, userID, contentID int64, description string, isPrivate bool) (models.Review, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (user_id, content_id, description, is_private, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, userID, contentID, description, isPrivate, now, now)
	if err != nil {
		return models.Review{}, fmt.Errorf("create review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Review{}, fmt.Errorf("create review: %w", err)
	}
	return models.Review{ID: id, UserID: userID, ContentID: contentID, Description: description, IsPrivate: isPrivate, CreatedAt: now, UpdatedAt: now}, nil
}

func (r *ListRepository) UpdateReview(ctx context.Context, id, userID int64, description string, isPrivate bool) (models.Review, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET description = ?, is_private = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`, description, isPrivate, time.Now().UTC(), id, userID)
	if err != nil {
		return models.Review{}, fmt.Errorf("update review: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return models.Review{}, err
	}

	var rev models.Review
	err = r.db.QueryRowContext(ctx, `
		SELECT id, user_id, content_id, description, is_private, created_at, updated_at
		FROM reviews WHERE id = ?`, id).
		Scan(&rev.ID, &rev.UserID, &rev.ContentID, &rev.Description,
			&rev.IsPrivate, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		return models.Review{}, fmt.Errorf("update review: %w", err)
	}
	rev.CreatedAt = rev.CreatedAt.UTC()
	rev.UpdatedAt = rev.UpdatedAt.UTC()
	return rev, nil
}

func (r *ListRepository) DeleteReview(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return requireAffected(res)
}

// UpsertRating writes the user's score for one content entry, replacing any
// previous score in place.
func (r *ListRepository) UpsertRating(ctx context.Context, userID, contentID int64, score int) (models.Rating, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (user_id, content_id, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, content_id) DO UPDATE SET
			rating = excluded.rating,
			updated_at = excluded.updated_at`,
		userID, contentID, score, now, now)
	if err != nil {
		return models.Rating{}, fmt.Errorf("upsert rating: %w", err)
	}
	return r.GetRating(ctx, userID, contentID)
}

func (r *ListRepository) GetRating(ctx context.Context, userID, contentID int64) (models.Rating, error) {
	var rating models.Rating
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, content_id, rating, created_at, updated_at
		FROM ratings WHERE user_id = ? AND content_id = ?`, userID, contentID).
		Scan(&rating.ID, &rating.UserID, &rating.ContentID, &rating.Rating,
			&rating.CreatedAt, &rating.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rating{}, ErrNotFound
	}
	if err != nil {
		return models.Rating{}, fmt.Errorf("get rating: %w", err)
	}
	rating.CreatedAt = rating.CreatedAt.UTC()
	rating.UpdatedAt = rating.UpdatedAt.UTC()
	return rating, nil
}

func (r *ListRepository) DeleteRating(ctx context.Context, userID, contentID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM ratings WHERE user_id = ? AND content_id = ?`, userID, contentID)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return requireAffected(res)
}

func scanCustomList(row rowScanner) (models.CustomList, error) {
	var l models.CustomList
	err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.IsPublic,
		&l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CustomList{}, ErrNotFound
	}
	if err != nil {
		return models.CustomList{}, fmt.Errorf("scan custom list: %w", err)
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return l, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
