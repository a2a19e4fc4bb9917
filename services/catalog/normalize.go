package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"cinetrack/models"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// stripTags removes the HTML markup TVMaze embeds in summaries.
func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// classifyShow maps a TVMaze show onto a content type. TVMaze carries no
// movies, so classification only distinguishes anime from plain series: an
// explicit Anime genre wins, and Japanese animation counts as anime too.
func classifyShow(show *tvmazeShow) models.ContentType {
	for _, g := range show.Genres {
		if strings.EqualFold(g, "anime") {
			return models.ContentTypeAnime
		}
	}
	if strings.EqualFold(show.Type, "animation") && strings.EqualFold(show.Language, "japanese") {
		return models.ContentTypeAnime
	}
	return models.ContentTypeSeries
}

func imageURL(img *tvmazeImage) (medium, original string) {
	if img == nil {
		return "", ""
	}
	return img.Medium, img.Original
}

func showRuntime(show *tvmazeShow) *int {
	if show.Runtime != nil {
		return show.Runtime
	}
	return show.AverageRuntime
}

// normalizeSummary validates and flattens a show payload into the listing
// shape. A payload without an ID or name is rejected as ErrDataIntegrity.
func normalizeSummary(show *tvmazeShow) (models.ContentSummary, error) {
	if show == nil || show.ID == 0 || strings.TrimSpace(show.Name) == "" {
		return models.ContentSummary{}, ErrDataIntegrity
	}
	poster, backdrop := imageURL(show.Image)
	return models.ContentSummary{
		TVMazeID:    show.ID,
		Title:       show.Name,
		ContentType: classifyShow(show),
		Overview:    stripTags(show.Summary),
		PosterURL:   poster,
		BackdropURL: backdrop,
		ReleaseDate: show.Premiered,
		Rating:      show.Rating.Average,
		Genres:      show.Genres,
		Status:      show.Status,
		Runtime:     showRuntime(show),
		Language:    show.Language,
	}, nil
}

// normalizeUpsert builds the content-store record for a show payload.
func normalizeUpsert(show *tvmazeShow) (models.ContentUpsert, error) {
	summary, err := normalizeSummary(show)
	if err != nil {
		return models.ContentUpsert{}, err
	}

	var releaseDate *time.Time
	if t, err := time.Parse("2006-01-02", show.Premiered); err == nil {
		t = t.UTC()
		releaseDate = &t
	}

	var totalEpisodes *int
	if n := len(show.Embedded.Episodes); n > 0 {
		totalEpisodes = &n
	}

	return models.ContentUpsert{
		TVMazeID:              show.ID,
		Title:                 show.Name,
		ContentType:           summary.ContentType,
		IMDBID:                show.Externals.IMDB,
		IMDBRating:            show.Rating.Average,
		TotalEpisodes:         totalEpisodes,
		ReleaseDate:           releaseDate,
		PosterURL:             summary.PosterURL,
		BackdropURL:           summary.BackdropURL,
		Description:           summary.Overview,
		Genres:                show.Genres,
		Language:              show.Language,
		Status:                show.Status,
		RuntimeMinutes:        show.Runtime,
		EpisodeRuntimeMinutes: show.AverageRuntime,
		UpstreamUpdatedAt:     show.Updated,
	}, nil
}

func normalizeEpisode(ep *tvmazeEpisode) (models.Episode, error) {
	if ep == nil || ep.ID == 0 {
		return models.Episode{}, ErrDataIntegrity
	}
	_, original := imageURL(ep.Image)
	return models.Episode{
		TVMazeID: ep.ID,
		Name:     ep.Name,
		Season:   ep.Season,
		Number:   ep.Number,
		Airdate:  ep.Airdate,
		Airtime:  ep.Airtime,
		Runtime:  ep.Runtime,
		Rating:   ep.Rating.Average,
		ImageURL: original,
		Summary:  stripTags(ep.Summary),
	}, nil
}

func normalizeSeason(s tvmazeSeason) models.Season {
	return models.Season{
		TVMazeID:     s.ID,
		Number:       s.Number,
		EpisodeOrder: s.EpisodeOrder,
		PremiereDate: s.PremiereDate,
		EndDate:      s.EndDate,
	}
}

func normalizePerson(p *tvmazePerson) (models.Person, error) {
	if p == nil || p.ID == 0 || strings.TrimSpace(p.Name) == "" {
		return models.Person{}, ErrDataIntegrity
	}
	medium, _ := imageURL(p.Image)
	person := models.Person{
		TVMazeID: p.ID,
		Name:     p.Name,
		ImageURL: medium,
		Birthday: p.Birthday,
		Deathday: p.Deathday,
		Gender:   p.Gender,
	}
	if p.Country != nil {
		person.Country = p.Country.Name
	}
	return person, nil
}

func normalizeCast(cast []tvmazeCastMember) []models.CastMember {
	members := make([]models.CastMember, 0, len(cast))
	for _, m := range cast {
		person, err := normalizePerson(&m.Person)
		if err != nil {
			continue
		}
		members = append(members, models.CastMember{
			Person:    person,
			Character: m.Character.Name,
		})
	}
	return members
}

func normalizeCrew(crew []tvmazeCrewMember) []models.CrewMember {
	members := make([]models.CrewMember, 0, len(crew))
	for _, m := range crew {
		person, err := normalizePerson(&m.Person)
		if err != nil {
			continue
		}
		members = append(members, models.CrewMember{
			Person: person,
			Role:   m.Type,
		})
	}
	return members
}

// normalizeDetail assembles the full show record from an embedded payload.
func normalizeDetail(show *tvmazeShow) (models.ShowDetail, error) {
	summary, err := normalizeSummary(show)
	if err != nil {
		return models.ShowDetail{}, err
	}

	detail := models.ShowDetail{
		ContentSummary:  summary,
		ScheduleTime:    show.Schedule.Time,
		ScheduleDays:    show.Schedule.Days,
		Premiered:       show.Premiered,
		Ended:           show.Ended,
		UpstreamUpdated: show.Updated,
	}
	if show.Network != nil {
		detail.Network = show.Network.Name
	}
	if show.WebChannel != nil {
		detail.WebChannel = show.WebChannel.Name
	}

	externals := map[string]string{}
	if show.Externals.IMDB != "" {
		externals["imdb"] = show.Externals.IMDB
	}
	if show.Externals.TheTVDB != nil {
		externals["thetvdb"] = fmt.Sprint(*show.Externals.TheTVDB)
	}
	if show.Externals.TVRage != nil {
		externals["tvrage"] = fmt.Sprint(*show.Externals.TVRage)
	}
	if len(externals) > 0 {
		detail.Externals = externals
	}

	if len(show.Embedded.Episodes) > 0 {
		bySeason := map[int][]models.Episode{}
		for i := range show.Embedded.Episodes {
			ep, err := normalizeEpisode(&show.Embedded.Episodes[i])
			if err != nil {
				continue
			}
			bySeason[ep.Season] = append(bySeason[ep.Season], ep)
		}
		detail.EpisodesBySeason = bySeason
	}
	for _, s := range show.Embedded.Seasons {
		detail.Seasons = append(detail.Seasons, normalizeSeason(s))
	}
	detail.Cast = normalizeCast(show.Embedded.Cast)
	detail.Crew = normalizeCrew(show.Embedded.Crew)
	return detail, nil
}

func normalizeSchedule(entries []tvmazeScheduleEntry) []models.ScheduleEntry {
	out := make([]models.ScheduleEntry, 0, len(entries))
	for i := range entries {
		show := entries[i].show()
		summary, err := normalizeSummary(show)
		if err != nil {
			continue
		}
		out = append(out, models.ScheduleEntry{
			TVMazeID: entries[i].ID,
			Airtime:  entries[i].Airtime,
			Airstamp: entries[i].Airstamp,
			Runtime:  entries[i].Runtime,
			Show:     summary,
		})
	}
	return out
}
