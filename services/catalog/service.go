package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"cinetrack/models"
)

// ErrQueryRequired is returned when a search is attempted without a query.
var ErrQueryRequired = errors.New("search query is required")

// ContentStore is the persistence surface the catalog writes through. Every
// successful show fetch is upserted so the rest of the system can reference
// content rows by local ID.
type ContentStore interface {
	Upsert(ctx context.Context, up models.ContentUpsert) (models.Content, error)
	GetByID(ctx context.Context, id int64) (models.Content, error)
	GetByTVMazeID(ctx context.Context, tvmazeID int64) (models.Content, error)
	Search(ctx context.Context, query string, contentType models.ContentType) ([]models.Content, error)
	TVMazeIDs(ctx context.Context) ([]int64, error)
}

// Options configures the catalog service. Zero values fall back to the
// client defaults.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	RetryAttempts  int
	RetryDelay     time.Duration
	RateInterval   time.Duration
	RateBurst      int
	CacheTTL       time.Duration
	RefreshWorkers int
}

// Service fronts the TVMaze catalog: it fetches, normalizes, caches and
// persists upstream data.
type Service struct {
	client         *client
	cache          *memoryCache
	store          ContentStore
	refreshWorkers int
}

func NewService(store ContentStore, opts Options) *Service {
	workers := opts.RefreshWorkers
	if workers < 1 {
		workers = 4
	}
	return &Service{
		client:         newClient(opts.BaseURL, opts.HTTPClient, opts.RetryAttempts, opts.RetryDelay, opts.RateInterval, opts.RateBurst),
		cache:          newMemoryCache(opts.CacheTTL),
		store:          store,
		refreshWorkers: workers,
	}
}

// Search queries TVMaze shows by title. Results are normalized, optionally
// filtered by content type and language, and each hit is written through the
// content store. No upstream match is an empty result, not an error.
func (s *Service) Search(ctx context.Context, query string, contentType models.ContentType, language string) (models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.SearchResponse{}, ErrQueryRequired
	}

	cacheKey := fmt.Sprintf("search:%s:%s:%s", query, contentType, language)
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached.(models.SearchResponse), nil
	}

	results, err := s.client.searchShows(ctx, query)
	if err != nil {
		return models.SearchResponse{}, err
	}

	summaries := make([]models.ContentSummary, 0, len(results))
	for _, r := range results {
		summary, err := normalizeSummary(r.Show)
		if err != nil {
			if errors.Is(err, ErrDataIntegrity) {
				return models.SearchResponse{}, err
			}
			continue
		}
		if contentType != "" && summary.ContentType != contentType {
			continue
		}
		if language != "" && !strings.EqualFold(summary.Language, language) {
			continue
		}
		summaries = append(summaries, summary)
		s.persistShow(ctx, r.Show)
	}

	response := models.SearchResponse{
		Results:      summaries,
		Page:         1,
		TotalPages:   1,
		TotalResults: len(summaries),
	}
	s.cache.set(cacheKey, response)
	return response, nil
}

// Show fetches the full record for one show, with episodes, seasons, cast
// and crew embedded, and writes it through the content store.
func (s *Service) Show(ctx context.Context, id int64) (models.ShowDetail, error) {
	cacheKey := fmt.Sprintf("show:%d", id)
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached.(models.ShowDetail), nil
	}

	show, err := s.client.show(ctx, id, "episodes", "seasons", "cast", "crew")
	if err != nil {
		return models.ShowDetail{}, err
	}
	detail, err := normalizeDetail(show)
	if err != nil {
		return models.ShowDetail{}, err
	}
	s.persistShow(ctx, show)
	s.cache.set(cacheKey, detail)
	return detail, nil
}

// Credits returns the cast and crew of one show.
func (s *Service) Credits(ctx context.Context, id int64) (models.Credits, error) {
	cacheKey := fmt.Sprintf("credits:%d", id)
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached.(models.Credits), nil
	}

	cast, err := s.client.showCast(ctx, id)
	if err != nil {
		return models.Credits{}, err
	}
	crew, err := s.client.showCrew(ctx, id)
	if err != nil {
		return models.Credits{}, err
	}

	credits := models.Credits{
		Cast: normalizeCast(cast),
		Crew: normalizeCrew(crew),
	}
	s.cache.set(cacheKey, credits)
	return credits, nil
}

// Similar recommends stored content sharing at least one genre with the given
// show, same content type first, highest rated first. TVMaze has no similarity
// endpoint, so this works entirely off the local catalog.
func (s *Service) Similar(ctx context.Context, id int64) ([]models.ContentSummary, error) {
	show, err := s.client.show(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := normalizeSummary(show)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.Search(ctx, "", "")
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(summary.Genres))
	for _, g := range summary.Genres {
		wanted[strings.ToLower(g)] = true
	}

	var similar []models.Content
	for _, c := range candidates {
		if c.TVMazeID == summary.TVMazeID {
			continue
		}
		for _, g := range c.Genres {
			if wanted[strings.ToLower(g)] {
				similar = append(similar, c)
				break
			}
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		if (similar[i].ContentType == summary.ContentType) != (similar[j].ContentType == summary.ContentType) {
			return similar[i].ContentType == summary.ContentType
		}
		ri, rj := ratingOrZero(similar[i].IMDBRating), ratingOrZero(similar[j].IMDBRating)
		return ri > rj
	})
	if len(similar) > 20 {
		similar = similar[:20]
	}

	out := make([]models.ContentSummary, 0, len(similar))
	for _, c := range similar {
		out = append(out, contentToSummary(c))
	}
	return out, nil
}

// Episode fetches one episode by its TVMaze ID.
func (s *Service) Episode(ctx context.Context, id int64) (models.Episode, error) {
	ep, err := s.client.episode(ctx, id)
	if err != nil {
		return models.Episode{}, err
	}
	return normalizeEpisode(ep)
}

// Person fetches one person with their acting and crew credits.
func (s *Service) Person(ctx context.Context, id int64) (models.PersonDetail, error) {
	p, err := s.client.person(ctx, id)
	if err != nil {
		return models.PersonDetail{}, err
	}
	person, err := normalizePerson(p)
	if err != nil {
		return models.PersonDetail{}, err
	}
	detail := models.PersonDetail{Person: person}

	castCredits, err := s.client.castCredits(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return models.PersonDetail{}, err
	}
	for _, credit := range castCredits {
		show, err := normalizeSummary(credit.Embedded.Show)
		if err != nil {
			continue
		}
		role := models.CastCredit{Show: show}
		if credit.Embedded.Character != nil {
			role.Character = credit.Embedded.Character.Name
		}
		detail.CastRoles = append(detail.CastRoles, role)
	}

	crewCredits, err := s.client.crewCredits(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return models.PersonDetail{}, err
	}
	for _, credit := range crewCredits {
		show, err := normalizeSummary(credit.Embedded.Show)
		if err != nil {
			continue
		}
		detail.CrewRoles = append(detail.CrewRoles, models.CrewCredit{Role: credit.Type, Show: show})
	}
	return detail, nil
}

// SearchPeople queries TVMaze people by name.
func (s *Service) SearchPeople(ctx context.Context, query string) ([]models.Person, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	results, err := s.client.searchPeople(ctx, query)
	if err != nil {
		return nil, err
	}
	people := make([]models.Person, 0, len(results))
	for i := range results {
		person, err := normalizePerson(&results[i].Person)
		if err != nil {
			continue
		}
		people = append(people, person)
	}
	return people, nil
}

// PeopleIndex pages through the TVMaze people listing. A page past the end or
// beyond the upstream cap yields an empty slice.
func (s *Service) PeopleIndex(ctx context.Context, page int) ([]models.Person, error) {
	if page < 0 || page > maxIndexPage {
		return []models.Person{}, nil
	}
	raw, err := s.client.peopleIndex(ctx, page)
	if errors.Is(err, ErrNotFound) {
		return []models.Person{}, nil
	}
	if err != nil {
		return nil, err
	}
	people := make([]models.Person, 0, len(raw))
	for i := range raw {
		person, err := normalizePerson(&raw[i])
		if err != nil {
			continue
		}
		people = append(people, person)
	}
	return people, nil
}

// ShowIndex pages through the TVMaze show listing, persisting each row. A
// page past the end or beyond the upstream cap yields an empty slice.
func (s *Service) ShowIndex(ctx context.Context, page int) ([]models.ContentSummary, error) {
	if page < 0 || page > maxIndexPage {
		return []models.ContentSummary{}, nil
	}
	shows, err := s.client.showIndex(ctx, page)
	if errors.Is(err, ErrNotFound) {
		return []models.ContentSummary{}, nil
	}
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ContentSummary, 0, len(shows))
	for i := range shows {
		summary, err := normalizeSummary(&shows[i])
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
		s.persistShow(ctx, &shows[i])
	}
	return summaries, nil
}

// Schedule returns the broadcast schedule for a country and date. Both
// parameters are optional; TVMaze defaults to the US and today.
func (s *Service) Schedule(ctx context.Context, country, date string) ([]models.ScheduleEntry, error) {
	return s.scheduleImpl(ctx, country, date, false)
}

// WebSchedule returns the streaming/web schedule for a date.
func (s *Service) WebSchedule(ctx context.Context, country, date string) ([]models.ScheduleEntry, error) {
	return s.scheduleImpl(ctx, country, date, true)
}

func (s *Service) scheduleImpl(ctx context.Context, country, date string, web bool) ([]models.ScheduleEntry, error) {
	cacheKey := fmt.Sprintf("schedule:%v:%s:%s", web, country, date)
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached.([]models.ScheduleEntry), nil
	}
	raw, err := s.client.schedule(ctx, country, date, web)
	if err != nil {
		return nil, err
	}
	entries := normalizeSchedule(raw)
	s.cache.set(cacheKey, entries)
	return entries, nil
}

// Trending approximates a trending feed from today's broadcast and web
// schedules: shows airing now, deduplicated, best rated first.
func (s *Service) Trending(ctx context.Context) ([]models.ContentSummary, error) {
	cacheKey := "trending"
	if cached, ok := s.cache.get(cacheKey); ok {
		return cached.([]models.ContentSummary), nil
	}

	broadcast, err := s.Schedule(ctx, "", "")
	if err != nil {
		return nil, err
	}
	web, err := s.WebSchedule(ctx, "", "")
	if err != nil {
		return nil, err
	}

	seen := map[int64]bool{}
	var trending []models.ContentSummary
	for _, entry := range append(broadcast, web...) {
		if seen[entry.Show.TVMazeID] {
			continue
		}
		seen[entry.Show.TVMazeID] = true
		trending = append(trending, entry.Show)
	}
	sort.SliceStable(trending, func(i, j int) bool {
		return ratingOrZero(trending[i].Rating) > ratingOrZero(trending[j].Rating)
	})
	if len(trending) > 20 {
		trending = trending[:20]
	}
	s.cache.set(cacheKey, trending)
	return trending, nil
}

// tvmazeGenres is the fixed genre vocabulary TVMaze tags shows with; there
// is no upstream endpoint to enumerate it.
var tvmazeGenres = []string{
	"Action", "Adult", "Adventure", "Anime", "Children", "Comedy", "Crime",
	"DIY", "Drama", "Espionage", "Family", "Fantasy", "Food", "History",
	"Horror", "Legal", "Medical", "Music", "Mystery", "Nature", "Romance",
	"Science-Fiction", "Sports", "Supernatural", "Thriller", "Travel", "War",
	"Western",
}

// Genres returns the known genre vocabulary with stable synthetic IDs.
func (s *Service) Genres(ctx context.Context) []models.Genre {
	genres := make([]models.Genre, len(tvmazeGenres))
	for i, name := range tvmazeGenres {
		genres[i] = models.Genre{ID: i + 1, Name: name}
	}
	return genres
}

// LookupByIMDB resolves an IMDB identifier to a show and persists it.
func (s *Service) LookupByIMDB(ctx context.Context, imdbID string) (models.ContentSummary, error) {
	show, err := s.client.lookupByIMDB(ctx, imdbID)
	if err != nil {
		return models.ContentSummary{}, err
	}
	summary, err := normalizeSummary(show)
	if err != nil {
		return models.ContentSummary{}, err
	}
	s.persistShow(ctx, show)
	return summary, nil
}

// LocalContent reads a stored content row by its local ID.
func (s *Service) LocalContent(ctx context.Context, id int64) (models.Content, error) {
	return s.store.GetByID(ctx, id)
}

// RefreshUpdated fetches the upstream change feed, intersects it with the
// locally stored shows and re-fetches each changed one through a bounded
// worker pool. Returns how many rows were refreshed. since is "day", "week"
// or "month"; empty asks upstream for the full feed.
func (s *Service) RefreshUpdated(ctx context.Context, since string) (int, error) {
	updates, err := s.client.showUpdates(ctx, since)
	if err != nil {
		return 0, err
	}
	stored, err := s.store.TVMazeIDs(ctx)
	if err != nil {
		return 0, err
	}

	var stale []int64
	for _, id := range stored {
		if _, changed := updates[id]; changed {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	var refreshed atomic.Int64
	p := pool.New().WithMaxGoroutines(s.refreshWorkers).WithContext(ctx)
	for _, id := range stale {
		id := id
		p.Go(func(ctx context.Context) error {
			show, err := s.client.show(ctx, id, "episodes")
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					log.Printf("[catalog] refresh: show %d gone upstream", id)
					return nil
				}
				return err
			}
			up, err := normalizeUpsert(show)
			if err != nil {
				log.Printf("[catalog] refresh: show %d payload rejected: %v", id, err)
				return nil
			}
			if _, err := s.store.Upsert(ctx, up); err != nil {
				return err
			}
			refreshed.Add(1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return int(refreshed.Load()), err
	}
	return int(refreshed.Load()), nil
}

// persistShow writes a fetched show through the content store. Persistence
// failures are logged, not surfaced: a storage hiccup should not break a
// read-path response that already has good data.
func (s *Service) persistShow(ctx context.Context, show *tvmazeShow) {
	up, err := normalizeUpsert(show)
	if err != nil {
		return
	}
	if _, err := s.store.Upsert(ctx, up); err != nil {
		log.Printf("[catalog] persist show %d: %v", up.TVMazeID, err)
	}
}

func contentToSummary(c models.Content) models.ContentSummary {
	summary := models.ContentSummary{
		TVMazeID:    c.TVMazeID,
		Title:       c.Title,
		ContentType: c.ContentType,
		Overview:    c.Description,
		PosterURL:   c.PosterURL,
		BackdropURL: c.BackdropURL,
		Rating:      c.IMDBRating,
		Genres:      c.Genres,
		Status:      c.Status,
		Runtime:     c.RuntimeMinutes,
		Language:    c.Language,
	}
	if c.ReleaseDate != nil {
		summary.ReleaseDate = c.ReleaseDate.Format("2006-01-02")
	}
	return summary
}

func ratingOrZero(r *float64) float64 {
	if r == nil {
		return 0
	}
	return *r
}
