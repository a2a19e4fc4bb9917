package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cinetrack/models"
)

const contentColumns = `id, tvmaze_id, title, content_type, imdb_id, imdb_rating,
	total_episodes, release_date, poster_url, backdrop_url, description, genres,
	language, status, runtime_minutes, episode_runtime_minutes,
	upstream_updated_at, created_at, updated_at`

// ContentRepository persists the local content catalog.
type ContentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Upsert inserts or refreshes a content row keyed by its TVMaze ID. Unknown
// fields in the payload (empty strings, nil pointers) never clobber values
// already stored, so partial payloads from list endpoints cannot erase detail
// data fetched earlier. The whole operation is a single statement, keeping
// concurrent refreshes last-writer-wins per field without torn rows.
func (r *ContentRepository) Upsert(ctx context.Context, up models.ContentUpsert) (models.Content, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO content (tvmaze_id, title, content_type, imdb_id, imdb_rating,
			total_episodes, release_date, poster_url, backdrop_url, description,
			genres, language, status, runtime_minutes, episode_runtime_minutes,
			upstream_updated_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tvmaze_id) DO UPDATE SET
			title = excluded.title,
			content_type = excluded.content_type,
			imdb_id = CASE WHEN excluded.imdb_id != '' THEN excluded.imdb_id ELSE content.imdb_id END,
			imdb_rating = COALESCE(excluded.imdb_rating, content.imdb_rating),
			total_episodes = COALESCE(excluded.total_episodes, content.total_episodes),
			release_date = COALESCE(excluded.release_date, content.release_date),
			poster_url = CASE WHEN excluded.poster_url != '' THEN excluded.poster_url ELSE content.poster_url END,
			backdrop_url = CASE WHEN excluded.backdrop_url != '' THEN excluded.backdrop_url ELSE content.backdrop_url END,
			description = CASE WHEN excluded.description != '' THEN excluded.description ELSE content.description END,
			genres = CASE WHEN excluded.genres != '' THEN excluded.genres ELSE content.genres END,
			language = CASE WHEN excluded.language != '' THEN excluded.language ELSE content.language END,
			status = CASE WHEN excluded.status != '' THEN excluded.status ELSE content.status END,
			runtime_minutes = COALESCE(excluded.runtime_minutes, content.runtime_minutes),
			episode_runtime_minutes = COALESCE(excluded.episode_runtime_minutes, content.episode_runtime_minutes),
			upstream_updated_at = MAX(excluded.upstream_updated_at, content.upstream_updated_at),
			updated_at = excluded.updated_at`,
		up.TVMazeID, up.Title, string(up.ContentType), up.IMDBID,
		nullFloat(up.IMDBRating), nullInt(up.TotalEpisodes), nullTime(up.ReleaseDate),
		up.PosterURL, up.BackdropURL, up.Description, joinGenres(up.Genres),
		up.Language, up.Status, nullInt(up.RuntimeMinutes),
		nullInt(up.EpisodeRuntimeMinutes), up.UpstreamUpdatedAt, now, now)
	if err != nil {
		return models.Content{}, fmt.Errorf("upsert content %d: %w", up.TVMazeID, err)
	}
	return r.GetByTVMazeID(ctx, up.TVMazeID)
}

// GetByID fetches a content row by its local primary key.
func (r *ContentRepository) GetByID(ctx context.Context, id int64) (models.Content, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content WHERE id = ?`, id)
	return scanContent(row)
}

// GetByTVMazeID fetches a content row by its upstream identifier.
func (r *ContentRepository) GetByTVMazeID(ctx context.Context, tvmazeID int64) (models.Content, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content WHERE tvmaze_id = ?`, tvmazeID)
	return scanContent(row)
}

// Search matches stored titles case-insensitively, optionally narrowed to a
// single content type. An empty result is not an error.
func (r *ContentRepository) Search(ctx context.Context, query string, contentType models.ContentType) ([]models.Content, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+contentColumns+` FROM content
		WHERE title LIKE '%' || ? || '%' COLLATE NOCASE
		  AND (? = '' OR content_type = ?)
		ORDER BY title`,
		query, string(contentType), string(contentType))
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}
	defer rows.Close()

	var results []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// TVMazeIDs returns every stored upstream identifier, used by the refresh
// pass to decide which rows need re-fetching.
func (r *ContentRepository) TVMazeIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tvmaze_id FROM content ORDER BY tvmaze_id`)
	if err != nil {
		return nil, fmt.Errorf("list tvmaze ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (models.Content, error) {
	var (
		c              models.Content
		contentType    string
		rating         sql.NullFloat64
		totalEpisodes  sql.NullInt64
		releaseDate    sql.NullTime
		genres         string
		runtime        sql.NullInt64
		episodeRuntime sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.TVMazeID, &c.Title, &contentType, &c.IMDBID,
		&rating, &totalEpisodes, &releaseDate, &c.PosterURL, &c.BackdropURL,
		&c.Description, &genres, &c.Language, &c.Status, &runtime,
		&episodeRuntime, &c.UpstreamUpdatedAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Content{}, ErrNotFound
	}
	if err != nil {
		return models.Content{}, fmt.Errorf("scan content: %w", err)
	}

	c.ContentType = models.ContentType(contentType)
	c.IMDBRating = floatPtr(rating)
	c.TotalEpisodes = intPtr(totalEpisodes)
	c.ReleaseDate = timePtr(releaseDate)
	c.Genres = splitGenres(genres)
	c.RuntimeMinutes = intPtr(runtime)
	c.EpisodeRuntimeMinutes = intPtr(episodeRuntime)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
