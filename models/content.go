package models

import "time"

// ContentType classifies a catalog entry.
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
	ContentTypeAnime  ContentType = "anime"
)

// Valid reports whether the content type is one of the known variants.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeMovie, ContentTypeSeries, ContentTypeAnime:
		return true
	}
	return false
}

// Content is a catalog entry persisted locally. Rows are created and updated
// exclusively through the content store upsert; external TVMaze IDs are unique.
type Content struct {
	ID                    int64       `json:"id"`
	TVMazeID              int64       `json:"tvmazeId"`
	Title                 string      `json:"title"`
	ContentType           ContentType `json:"contentType"`
	IMDBID                string      `json:"imdbId,omitempty"`
	IMDBRating            *float64    `json:"imdbRating,omitempty"`
	TotalEpisodes         *int        `json:"totalEpisodes,omitempty"`
	ReleaseDate           *time.Time  `json:"releaseDate,omitempty"`
	PosterURL             string      `json:"posterUrl,omitempty"`
	BackdropURL           string      `json:"backdropUrl,omitempty"`
	Description           string      `json:"description,omitempty"`
	Genres                []string    `json:"genres,omitempty"`
	Language              string      `json:"language,omitempty"`
	Status                string      `json:"status,omitempty"`
	RuntimeMinutes        *int        `json:"runtimeMinutes,omitempty"`
	EpisodeRuntimeMinutes *int        `json:"episodeRuntimeMinutes,omitempty"`
	UpstreamUpdatedAt     int64       `json:"-"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

// ContentUpsert is a normalized catalog record ready to be written into the
// content store. Zero/nil fields are treated as "unknown" and never clobber
// previously stored values.
type ContentUpsert struct {
	TVMazeID              int64       `json:"tvmazeId"`
	Title                 string      `json:"title"`
	ContentType           ContentType `json:"contentType"`
	IMDBID                string      `json:"imdbId,omitempty"`
	IMDBRating            *float64    `json:"imdbRating,omitempty"`
	TotalEpisodes         *int        `json:"totalEpisodes,omitempty"`
	ReleaseDate           *time.Time  `json:"releaseDate,omitempty"`
	PosterURL             string      `json:"posterUrl,omitempty"`
	BackdropURL           string      `json:"backdropUrl,omitempty"`
	Description           string      `json:"description,omitempty"`
	Genres                []string    `json:"genres,omitempty"`
	Language              string      `json:"language,omitempty"`
	Status                string      `json:"status,omitempty"`
	RuntimeMinutes        *int        `json:"runtimeMinutes,omitempty"`
	EpisodeRuntimeMinutes *int        `json:"episodeRuntimeMinutes,omitempty"`
	UpstreamUpdatedAt     int64       `json:"-"`
}

// ContentSummary is the slim search/listing shape returned to clients before a
// full detail lookup.
type ContentSummary struct {
	TVMazeID    int64       `json:"id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"type"`
	Overview    string      `json:"overview,omitempty"`
	PosterURL   string      `json:"posterUrl,omitempty"`
	BackdropURL string      `json:"backdropUrl,omitempty"`
	ReleaseDate string      `json:"releaseDate,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
	Genres      []string    `json:"genres,omitempty"`
	Status      string      `json:"status,omitempty"`
	Runtime     *int        `json:"runtime,omitempty"`
	Language    string      `json:"language,omitempty"`
}

// SearchResponse wraps search results with pagination metadata.
type SearchResponse struct {
	Results      []ContentSummary `json:"results"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"totalPages"`
	TotalResults int              `json:"totalResults"`
}

// Episode describes a single episode of a show.
type Episode struct {
	TVMazeID int64    `json:"id"`
	Name     string   `json:"name"`
	Season   int      `json:"season"`
	Number   int      `json:"number"`
	Airdate  string   `json:"airdate,omitempty"`
	Airtime  string   `json:"airtime,omitempty"`
	Runtime  *int     `json:"runtime,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

// Season describes one season of a show.
type Season struct {
	TVMazeID     int64  `json:"id"`
	Number       int    `json:"number"`
	EpisodeOrder *int   `json:"episodeOrder,omitempty"`
	PremiereDate string `json:"premiereDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
}

// Person is a cast or crew member from the catalog.
type Person struct {
	TVMazeID int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
	Birthday string `json:"birthday,omitempty"`
	Deathday string `json:"deathday,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Country  string `json:"country,omitempty"`
}

// CastMember links a person to the character they play.
type CastMember struct {
	Person    Person `json:"person"`
	Character string `json:"character,omitempty"`
}

// CrewMember links a person to their crew role.
type CrewMember struct {
	Person Person `json:"person"`
	Role   string `json:"role,omitempty"`
}

// CastCredit is one acting credit on a person's filmography.
type CastCredit struct {
	Character string         `json:"character,omitempty"`
	Show      ContentSummary `json:"show"`
}

// CrewCredit is one crew credit on a person's filmography.
type CrewCredit struct {
	Role string         `json:"role,omitempty"`
	Show ContentSummary `json:"show"`
}

// PersonDetail is a person with their credits attached.
type PersonDetail struct {
	Person
	CastRoles []CastCredit `json:"castRoles,omitempty"`
	CrewRoles []CrewCredit `json:"crewRoles,omitempty"`
}

// Credits bundles cast and crew for a show.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// ShowDetail is the full record for a single show, assembled from several
// catalog endpoints.
type ShowDetail struct {
	ContentSummary
	Network          string             `json:"network,omitempty"`
	WebChannel       string             `json:"webChannel,omitempty"`
	ScheduleTime     string             `json:"scheduleTime,omitempty"`
	ScheduleDays     []string           `json:"scheduleDays,omitempty"`
	Premiered        string             `json:"premiered,omitempty"`
	Ended            string             `json:"ended,omitempty"`
	Externals        map[string]string  `json:"externals,omitempty"`
	EpisodesBySeason map[int][]Episode  `json:"episodes,omitempty"`
	Seasons          []Season           `json:"seasons,omitempty"`
	Cast             []CastMember       `json:"cast,omitempty"`
	Crew             []CrewMember       `json:"crew,omitempty"`
	UpstreamUpdated  int64              `json:"updated,omitempty"`
}

// ScheduleEntry is one airing slot from the broadcast or web schedule.
type ScheduleEntry struct {
	TVMazeID int64          `json:"id"`
	Airtime  string         `json:"airtime,omitempty"`
	Airstamp string         `json:"airstamp,omitempty"`
	Runtime  *int           `json:"runtime,omitempty"`
	Show     ContentSummary `json:"show"`
}

// Genre is a catalog genre with a synthetic identifier.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
