package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.tvmaze.com"

// TVMaze hard-caps page-indexed listings; anything past this is a guaranteed
// 404.
const maxIndexPage = 250

// errTransient marks failures worth retrying. Anything not wrapped with it
// aborts the retry loop immediately.
var errTransient = errors.New("transient upstream failure")

type client struct {
	baseURL  string
	httpc    *http.Client
	limiter  *rate.Limiter
	attempts uint
	delay    time.Duration
}

func newClient(baseURL string, httpc *http.Client, attempts int, delay, rateInterval time.Duration, rateBurst int) *client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if attempts < 1 {
		attempts = 3
	}
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	// TVMaze allows roughly 20 requests per 10 seconds per IP.
	if rateInterval <= 0 {
		rateInterval = 500 * time.Millisecond
	}
	if rateBurst < 1 {
		rateBurst = 5
	}
	return &client{
		baseURL:  baseURL,
		httpc:    httpc,
		limiter:  rate.NewLimiter(rate.Every(rateInterval), rateBurst),
		attempts: uint(attempts),
		delay:    delay,
	}
}

// getJSON performs a rate-limited GET with bounded exponential-backoff
// retries. 429, 5xx and transport errors retry; 404 maps to ErrNotFound and
// other 4xx fail immediately. Exhausted retries surface as
// ErrUpstreamUnavailable.
func (c *client) getJSON(ctx context.Context, endpoint string, query url.Values, v any) error {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	err := retry.Do(func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Unrecoverable(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", errTransient, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return retry.Unrecoverable(ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("%w: %s returned %s", errTransient, endpoint, resp.Status)
		case resp.StatusCode >= 400:
			return retry.Unrecoverable(fmt.Errorf("tvmaze request %s failed: %s", endpoint, resp.Status))
		}

		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return retry.Unrecoverable(fmt.Errorf("decode %s response: %w", endpoint, err))
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errTransient) }),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, errTransient) {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return err
}

// TVMaze wire shapes. Only the fields the normalizer reads are declared.

type tvmazeShow struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Language       string   `json:"language"`
	Genres         []string `json:"genres"`
	Status         string   `json:"status"`
	Runtime        *int     `json:"runtime"`
	AverageRuntime *int     `json:"averageRuntime"`
	Premiered      string   `json:"premiered"`
	Ended          string   `json:"ended"`
	Schedule       struct {
		Time string   `json:"time"`
		Days []string `json:"days"`
	} `json:"schedule"`
	Rating struct {
		Average *float64 `json:"average"`
	} `json:"rating"`
	Network *struct {
		Name string `json:"name"`
	} `json:"network"`
	WebChannel *struct {
		Name string `json:"name"`
	} `json:"webChannel"`
	Externals struct {
		TVRage  *int64 `json:"tvrage"`
		TheTVDB *int64 `json:"thetvdb"`
		IMDB    string `json:"imdb"`
	} `json:"externals"`
	Image    *tvmazeImage `json:"image"`
	Summary  string       `json:"summary"`
	Updated  int64        `json:"updated"`
	Embedded struct {
		Episodes []tvmazeEpisode     `json:"episodes"`
		Seasons  []tvmazeSeason      `json:"seasons"`
		Cast     []tvmazeCastMember  `json:"cast"`
		Crew     []tvmazeCrewMember  `json:"crew"`
	} `json:"_embedded"`
}

type tvmazeImage struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

type tvmazeSearchResult struct {
	Score float64     `json:"score"`
	Show  *tvmazeShow `json:"show"`
}

type tvmazeEpisode struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Number  int    `json:"number"`
	Airdate string `json:"airdate"`
	Airtime string `json:"airtime"`
	Runtime *int   `json:"runtime"`
	Rating  struct {
		Average *float64 `json:"average"`
	} `json:"rating"`
	Image   *tvmazeImage `json:"image"`
	Summary string       `json:"summary"`
}

type tvmazeSeason struct {
	ID           int64  `json:"id"`
	Number       int    `json:"number"`
	EpisodeOrder *int   `json:"episodeOrder"`
	PremiereDate string `json:"premiereDate"`
	EndDate      string `json:"endDate"`
}

type tvmazePerson struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country *struct {
		Name string `json:"name"`
	} `json:"country"`
	Birthday string       `json:"birthday"`
	Deathday string       `json:"deathday"`
	Gender   string       `json:"gender"`
	Image    *tvmazeImage `json:"image"`
}

type tvmazeCastMember struct {
	Person    tvmazePerson `json:"person"`
	Character struct {
		Name string `json:"name"`
	} `json:"character"`
}

type tvmazeCrewMember struct {
	Type   string       `json:"type"`
	Person tvmazePerson `json:"person"`
}

type tvmazeCastCredit struct {
	Embedded struct {
		Show      *tvmazeShow `json:"show"`
		Character *struct {
			Name string `json:"name"`
		} `json:"character"`
	} `json:"_embedded"`
}

type tvmazeCrewCredit struct {
	Type     string `json:"type"`
	Embedded struct {
		Show *tvmazeShow `json:"show"`
	} `json:"_embedded"`
}

type tvmazeScheduleEntry struct {
	ID       int64       `json:"id"`
	Airtime  string      `json:"airtime"`
	Airstamp string      `json:"airstamp"`
	Runtime  *int        `json:"runtime"`
	Show     *tvmazeShow `json:"show"`
	Embedded struct {
		Show *tvmazeShow `json:"show"`
	} `json:"_embedded"`
}

func (e *tvmazeScheduleEntry) show() *tvmazeShow {
	if e.Show != nil {
		return e.Show
	}
	return e.Embedded.Show
}

func (c *client) searchShows(ctx context.Context, query string) ([]tvmazeSearchResult, error) {
	var results []tvmazeSearchResult
	q := url.Values{"q": {query}}
	if err := c.getJSON(ctx, "/search/shows", q, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *client) show(ctx context.Context, id int64, embeds ...string) (*tvmazeShow, error) {
	q := url.Values{}
	for _, e := range embeds {
		q.Add("embed[]", e)
	}
	var show tvmazeShow
	if err := c.getJSON(ctx, fmt.Sprintf("/shows/%d", id), q, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

func (c *client) showIndex(ctx context.Context, page int) ([]tvmazeShow, error) {
	var shows []tvmazeShow
	q := url.Values{"page": {fmt.Sprint(page)}}
	if err := c.getJSON(ctx, "/shows", q, &shows); err != nil {
		return nil, err
	}
	return shows, nil
}

func (c *client) episode(ctx context.Context, id int64) (*tvmazeEpisode, error) {
	var ep tvmazeEpisode
	if err := c.getJSON(ctx, fmt.Sprintf("/episodes/%d", id), nil, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

func (c *client) showCast(ctx context.Context, id int64) ([]tvmazeCastMember, error) {
	var cast []tvmazeCastMember
	if err := c.getJSON(ctx, fmt.Sprintf("/shows/%d/cast", id), nil, &cast); err != nil {
		return nil, err
	}
	return cast, nil
}

func (c *client) showCrew(ctx context.Context, id int64) ([]tvmazeCrewMember, error) {
	var crew []tvmazeCrewMember
	if err := c.getJSON(ctx, fmt.Sprintf("/shows/%d/crew", id), nil, &crew); err != nil {
		return nil, err
	}
	return crew, nil
}

func (c *client) person(ctx context.Context, id int64) (*tvmazePerson, error) {
	var p tvmazePerson
	if err := c.getJSON(ctx, fmt.Sprintf("/people/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *client) peopleIndex(ctx context.Context, page int) ([]tvmazePerson, error) {
	var people []tvmazePerson
	q := url.Values{"page": {fmt.Sprint(page)}}
	if err := c.getJSON(ctx, "/people", q, &people); err != nil {
		return nil, err
	}
	return people, nil
}

func (c *client) searchPeople(ctx context.Context, query string) ([]struct {
	Score  float64      `json:"score"`
	Person tvmazePerson `json:"person"`
}, error) {
	var results []struct {
		Score  float64      `json:"score"`
		Person tvmazePerson `json:"person"`
	}
	q := url.Values{"q": {query}}
	if err := c.getJSON(ctx, "/search/people", q, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *client) castCredits(ctx context.Context, personID int64) ([]tvmazeCastCredit, error) {
	var credits []tvmazeCastCredit
	q := url.Values{"embed[]": {"show", "character"}}
	if err := c.getJSON(ctx, fmt.Sprintf("/people/%d/castcredits", personID), q, &credits); err != nil {
		return nil, err
	}
	return credits, nil
}

func (c *client) crewCredits(ctx context.Context, personID int64) ([]tvmazeCrewCredit, error) {
	var credits []tvmazeCrewCredit
	q := url.Values{"embed": {"show"}}
	if err := c.getJSON(ctx, fmt.Sprintf("/people/%d/crewcredits", personID), q, &credits); err != nil {
		return nil, err
	}
	return credits, nil
}

func (c *client) schedule(ctx context.Context, country, date string, web bool) ([]tvmazeScheduleEntry, error) {
	endpoint := "/schedule"
	if web {
		endpoint = "/schedule/web"
	}
	q := url.Values{}
	if country != "" {
		q.Set("country", country)
	}
	if date != "" {
		q.Set("date", date)
	}
	var entries []tvmazeScheduleEntry
	if err := c.getJSON(ctx, endpoint, q, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *client) lookupByIMDB(ctx context.Context, imdbID string) (*tvmazeShow, error) {
	var show tvmazeShow
	q := url.Values{"imdb": {imdbID}}
	if err := c.getJSON(ctx, "/lookup/shows", q, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// showUpdates returns TVMaze show IDs mapped to their last-modified epoch.
// since is "day", "week" or "month"; empty means the full map.
func (c *client) showUpdates(ctx context.Context, since string) (map[int64]int64, error) {
	q := url.Values{}
	if since != "" {
		q.Set("since", since)
	}
	raw := map[string]int64{}
	if err := c.getJSON(ctx, "/updates/shows", q, &raw); err != nil {
		return nil, err
	}
	updates := make(map[int64]int64, len(raw))
	for idStr, stamp := range raw {
		var id int64
		if _, err := fmt.Sscanf(idStr, "%d", &id); err == nil {
			updates[id] = stamp
		}
	}
	return updates, nil
}
