package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinetrack/internal/database"
	"cinetrack/models"
	"cinetrack/services/catalog"
)

type catalogService interface {
	Search(ctx context.Context, query string, contentType models.ContentType, language string) (models.SearchResponse, error)
	Show(ctx context.Context, id int64) (models.ShowDetail, error)
	Credits(ctx context.Context, id int64) (models.Credits, error)
	Similar(ctx context.Context, id int64) ([]models.ContentSummary, error)
	Episode(ctx context.Context, id int64) (models.Episode, error)
	Person(ctx context.Context, id int64) (models.PersonDetail, error)
	SearchPeople(ctx context.Context, query string) ([]models.Person, error)
	PeopleIndex(ctx context.Context, page int) ([]models.Person, error)
	ShowIndex(ctx context.Context, page int) ([]models.ContentSummary, error)
	Schedule(ctx context.Context, country, date string) ([]models.ScheduleEntry, error)
	WebSchedule(ctx context.Context, country, date string) ([]models.ScheduleEntry, error)
	Trending(ctx context.Context) ([]models.ContentSummary, error)
	Genres(ctx context.Context) []models.Genre
	LookupByIMDB(ctx context.Context, imdbID string) (models.ContentSummary, error)
	LocalContent(ctx context.Context, id int64) (models.Content, error)
	RefreshUpdated(ctx context.Context, since string) (int, error)
}

var _ catalogService = (*catalog.Service)(nil)

type ContentHandler struct {
	Service catalogService
}

func NewContentHandler(service catalogService) *ContentHandler {
	return &ContentHandler{Service: service}
}

// writeCatalogError maps catalog sentinel errors onto the response envelope.
func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrQueryRequired):
		writeError(w, http.StatusBadRequest, KindValidation, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, KindNotFound, err.Error())
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, KindUpstreamUnavailable, "catalog upstream unavailable")
	case errors.Is(err, catalog.ErrDataIntegrity):
		writeError(w, http.StatusBadGateway, KindDataIntegrity, "catalog returned an invalid payload")
	default:
		writeInternalError(w, err)
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func (h *ContentHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contentType := models.ContentType(q.Get("type"))
	if contentType != "" && !contentType.Valid() {
		writeError(w, http.StatusBadRequest, KindValidation, "type must be movie, series or anime")
		return
	}

	response, err := h.Service.Search(r.Context(), q.Get("query"), contentType, q.Get("language"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *ContentHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid show id")
		return
	}
	detail, err := h.Service.Show(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *ContentHandler) Credits(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid show id")
		return
	}
	credits, err := h.Service.Credits(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credits)
}

func (h *ContentHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid show id")
		return
	}
	similar, err := h.Service.Similar(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	if similar == nil {
		similar = []models.ContentSummary{}
	}
	writeJSON(w, http.StatusOK, similar)
}

func (h *ContentHandler) Episode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid episode id")
		return
	}
	episode, err := h.Service.Episode(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, episode)
}

func (h *ContentHandler) Person(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid person id")
		return
	}
	person, err := h.Service.Person(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// People serves either a name search (?query=) or a page of the people
// index (?page=).
func (h *ContentHandler) People(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if query := strings.TrimSpace(q.Get("query")); query != "" {
		people, err := h.Service.SearchPeople(r.Context(), query)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, people)
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	people, err := h.Service.PeopleIndex(r.Context(), page)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, people)
}

func (h *ContentHandler) Shows(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	shows, err := h.Service.ShowIndex(r.Context(), page)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shows)
}

func (h *ContentHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.Service.Schedule(r.Context(), q.Get("country"), q.Get("date"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ContentHandler) WebSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.Service.WebSchedule(r.Context(), q.Get("country"), q.Get("date"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ContentHandler) Trending(w http.ResponseWriter, r *http.Request) {
	trending, err := h.Service.Trending(r.Context())
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trending)
}

func (h *ContentHandler) Genres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Genres(r.Context()))
}

func (h *ContentHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	imdbID := strings.TrimSpace(r.URL.Query().Get("imdb"))
	if imdbID == "" {
		writeError(w, http.StatusBadRequest, KindValidation, "imdb id is required")
		return
	}
	summary, err := h.Service.LookupByIMDB(r.Context(), imdbID)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// LocalContent serves a stored content row by its local database ID.
func (h *ContentHandler) LocalContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid content id")
		return
	}
	content, err := h.Service.LocalContent(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, KindNotFound, "content not found")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (h *ContentHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	since := r.URL.Query().Get("since")
	switch since {
	case "", "day", "week", "month":
	default:
		writeError(w, http.StatusBadRequest, KindValidation, "since must be day, week or month")
		return
	}
	refreshed, err := h.Service.RefreshUpdated(r.Context(), since)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"refreshed": refreshed})
}
