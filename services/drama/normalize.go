package drama

import (
	"fmt"
	"strconv"
	"strings"

	"dramastream/models"
	"dramastream/utils"
)

// The upstream API has shipped several incompatible schema revisions; the same
// logical field appears under different names depending on which revision a
// given endpoint happens to run. Each field below carries an ordered candidate
// list, evaluated first-non-empty-wins, so the full set of tolerated shapes is
// auditable in one place instead of being scattered through the mapping code.
var (
	cardIDFields       = []string{"bookId", "id", "code"}
	cardNameFields     = []string{"bookName", "name", "title"}
	coverFields        = []string{"cover", "bookCover", "coverWap", "coverUrl", "cover_url", "bookPic", "img"}
	synopsisFields     = []string{"introduction", "summary", "synopsis", "abstract"}
	popularityFields   = []string{"playCountDisplay", "playCount", "views", "hot"}
	rankObjectFields   = []string{"rankVo", "rank"}
	rankValueFields    = []string{"hot", "hotCount", "num"}
	episodeCountFields = []string{"chapterCount", "episodes", "totalChapterNum"}
	shelfDateFields    = []string{"shelfTime", "onlineTime", "publishTime"}
	cornerFields       = []string{"cornerName", "corner", "markName"}
	tagListFields      = []string{"tags", "tagNames", "labels"}

	viewCountFields   = []string{"playCount", "viewCount", "views"}
	followCountFields = []string{"followCount", "favorites", "inLibraryCount"}
	performerFields   = []string{"performerList", "performers", "actors"}
	recommendFields   = []string{"recommendList", "recommends", "relatedList"}

	chapterListFields   = []string{"chapterList", "chapters", "list"}
	episodeIDFields     = []string{"chapterId", "id"}
	episodeIndexFields  = []string{"chapterIndex", "index", "episode"}
	episodeNameFields   = []string{"chapterName", "name", "title"}
	episodeVideoFields  = []string{"videoPath", "mp4", "playUrl", "videoUrl"}
	episodeHLSFields    = []string{"m3u8", "m3u8Url", "hlsUrl"}
	episodeCoverFields  = []string{"chapterImg", "cover", "img"}
	durationFields      = []string{"duration", "videoDuration", "seconds"}
	expiresInFields     = []string{"expires_in", "expiresIn"}
	episodeLockedFields = []string{"isCharge", "locked", "lock"}
)

// NormalizeListEnvelope unwraps a raw listing payload to its item slice. The
// upstream returns either a bare array or an object wrapping the array under
// one of a few known keys; property presence is checked in a fixed order and
// the first array found wins. Anything else yields an empty slice.
func NormalizeListEnvelope(raw any) []any {
	if items := asSlice(raw); items != nil {
		return items
	}
	m := asMap(raw)
	if m == nil {
		return nil
	}
	for _, key := range []string{"data", "list", "items"} {
		if items := asSlice(m[key]); items != nil {
			return items
		}
	}
	return nil
}

// NormalizeCard maps one raw listing item to a CatalogCard. Missing fields
// default to zero values; the caller is responsible for dropping cards whose
// resolved id came back empty.
func NormalizeCard(item any) models.CatalogCard {
	m := asMap(item)
	card := models.CatalogCard{
		ID:           firstString(m, cardIDFields),
		Name:         firstString(m, cardNameFields),
		CoverURL:     utils.AbsoluteImageURL(firstString(m, coverFields)),
		Synopsis:     firstString(m, synopsisFields),
		Popularity:   firstString(m, popularityFields),
		Tags:         stringList(firstSlice(m, tagListFields)),
		EpisodeCount: firstInt(m, episodeCountFields),
		ShelfDate:    firstString(m, shelfDateFields),
		CornerBadge:  firstString(m, cornerFields),
	}
	if card.Popularity == "" {
		for _, f := range rankObjectFields {
			if rank := asMap(m[f]); rank != nil {
				if v := firstString(rank, rankValueFields); v != "" {
					card.Popularity = v
					break
				}
			}
		}
	}
	return card
}

// NormalizeCards unwraps a listing payload and maps every item with a
// resolvable id to a card. Items without an id are dropped: downstream
// routing keys on it and a card that cannot link anywhere is dead weight.
func NormalizeCards(raw any) []models.CatalogCard {
	items := NormalizeListEnvelope(raw)
	cards := make([]models.CatalogCard, 0, len(items))
	for _, item := range items {
		card := NormalizeCard(item)
		if card.ID == "" {
			continue
		}
		cards = append(cards, card)
	}
	return cards
}

// NormalizeDetail maps a raw detail payload to a TitleDetail. The book object
// lives at data.book on current upstream versions and at the top-level book
// key on older ones.
func NormalizeDetail(raw any) models.TitleDetail {
	m := asMap(raw)
	book := asMap(asMap(m["data"])["book"])
	if book == nil {
		book = asMap(m["book"])
	}

	detail := models.TitleDetail{
		ID:           firstString(book, cardIDFields),
		Name:         firstString(book, cardNameFields),
		CoverURL:     utils.AbsoluteImageURL(firstString(book, coverFields)),
		Synopsis:     firstString(book, synopsisFields),
		ViewCount:    firstInt(book, viewCountFields),
		FollowCount:  firstInt(book, followCountFields),
		EpisodeCount: firstInt(book, episodeCountFields),
		Tags:         detailTags(book),
		Performers:   normalizePerformers(firstSlice(book, performerFields)),
		Recommended:  []models.CatalogCard{},
	}
	for _, item := range firstSlice(book, recommendFields) {
		card := NormalizeCard(item)
		if card.ID == "" {
			continue
		}
		detail.Recommended = append(detail.Recommended, card)
	}
	return detail
}

// detailTags prefers the primary tags field and falls back to the secondary
// name only when the primary is absent or empty.
func detailTags(book map[string]any) []string {
	for _, f := range tagListFields {
		if tags := stringList(asSlice(book[f])); len(tags) > 0 {
			return tags
		}
	}
	return []string{}
}

func normalizePerformers(items []any) []models.Performer {
	out := make([]models.Performer, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		p := models.Performer{
			Name:      firstString(m, []string{"name", "stageName"}),
			AvatarURL: utils.AbsoluteImageURL(firstString(m, []string{"avatar", "avatarUrl"})),
			Role:      firstString(m, []string{"role", "character"}),
		}
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// NormalizeEpisodes maps a raw episode payload to the episode sequence.
// Entries whose resolved id is empty are dropped unconditionally; playback
// routing keys on the chapter id, so an id-less entry is unreachable anyway.
// Upstream order is preserved; the index field is informational only.
func NormalizeEpisodes(raw any) []models.Episode {
	items := episodeList(raw)
	episodes := make([]models.Episode, 0, len(items))
	for i, item := range items {
		m := asMap(item)
		id := firstString(m, episodeIDFields)
		if id == "" {
			continue
		}

		index := episodeIndex(m, i)
		name := firstString(m, episodeNameFields)
		if name == "" {
			name = fmt.Sprintf("EP %d", index+1)
		}

		hls := firstString(m, episodeHLSFields)
		episodes = append(episodes, models.Episode{
			ID:         id,
			Index:      index,
			IndexLabel: fmt.Sprintf("%03d", index+1),
			Name:       name,
			Unlocked:   episodeUnlocked(m),
			Duration:   firstInt(m, durationFields),
			VideoURL:   firstString(m, episodeVideoFields),
			HLSUrl:     hls,
			HasHLS:     hls != "",
			CoverURL:   utils.AbsoluteImageURL(firstString(m, episodeCoverFields)),
			ExpiresIn:  firstInt(m, expiresInFields),
		})
	}
	return episodes
}

// episodeIndex resolves the episode's declared index, honoring an explicit
// zero, and falls back to the payload position when no field declares one.
func episodeIndex(m map[string]any, position int) int {
	for _, f := range episodeIndexFields {
		v, ok := m[f]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			if t >= 0 {
				return int(t)
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n >= 0 {
				return n
			}
		}
	}
	return position
}

// episodeList locates the chapter array. Nesting varies by upstream version:
// a bare array, under data.book, under book, under data, or at the top level.
func episodeList(raw any) []any {
	if items := asSlice(raw); items != nil {
		return items
	}
	m := asMap(raw)
	if m == nil {
		return nil
	}
	containers := []map[string]any{
		asMap(asMap(m["data"])["book"]),
		asMap(m["book"]),
		asMap(m["data"]),
		m,
	}
	for _, c := range containers {
		if c == nil {
			continue
		}
		for _, f := range chapterListFields {
			if items := asSlice(c[f]); items != nil {
				return items
			}
		}
	}
	return asSlice(m["data"])
}

// episodeUnlocked resolves the lock state: a positive unlock flag wins, then
// inverted lock/charge flags. Absent everything, an episode is playable.
func episodeUnlocked(m map[string]any) bool {
	if v, ok := m["unlock"]; ok {
		return asBool(v)
	}
	for _, f := range episodeLockedFields {
		if v, ok := m[f]; ok {
			return !asBool(v)
		}
	}
	return true
}

// PlaybackSources exposes the playable variants of an episode as {label, url}
// pairs plus a best-effort default. The direct file is preferred over the
// playlist; an episode with neither yields an empty list and an empty best
// value rather than an error.
func PlaybackSources(ep models.Episode) ([]models.PlaybackSource, string) {
	sources := []models.PlaybackSource{}
	if ep.VideoURL != "" {
		sources = append(sources, models.PlaybackSource{Label: "MP4", URL: ep.VideoURL})
	}
	if ep.HLSUrl != "" {
		sources = append(sources, models.PlaybackSource{Label: "HLS", URL: ep.HLSUrl})
	}
	best := ""
	if len(sources) > 0 {
		best = sources[0].URL
	}
	return sources, best
}

// ---- loose JSON accessors ----

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// asString coerces scalar JSON values to their display string. Numbers keep
// their shortest representation ("1100000", not "1.1e+06").
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asInt coerces a JSON value to a non-negative int; absent, malformed, and
// negative values all come back 0.
func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0
		}
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil || n < 0 {
			return 0
		}
		return n
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t == "1" || strings.EqualFold(t, "true")
	default:
		return false
	}
}

func firstString(m map[string]any, fields []string) string {
	for _, f := range fields {
		if s := asString(m[f]); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(m map[string]any, fields []string) int {
	for _, f := range fields {
		if _, ok := m[f]; !ok {
			continue
		}
		if n := asInt(m[f]); n > 0 {
			return n
		}
	}
	return 0
}

func firstSlice(m map[string]any, fields []string) []any {
	for _, f := range fields {
		if s := asSlice(m[f]); s != nil {
			return s
		}
	}
	return nil
}

func stringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
