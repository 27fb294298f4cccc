package models

// CatalogCard is the summary record for one title used in grid/list UI.
type CatalogCard struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	CoverURL     string   `json:"coverUrl"`
	Synopsis     string   `json:"synopsis"`
	Popularity   string   `json:"popularity"`            // free-form display value, e.g. "1.1M"
	Tags         []string `json:"tags"`
	EpisodeCount int      `json:"episodeCount"`
	ShelfDate    string   `json:"shelfDate,omitempty"`   // opaque upstream date string
	CornerBadge  string   `json:"cornerBadge,omitempty"` // e.g. "HOT", "NEW"
}

// Performer is an opaque cast record passed through from upstream.
type Performer struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      string `json:"role,omitempty"`
}

// TitleDetail is the full record for one title.
type TitleDetail struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CoverURL     string        `json:"coverUrl"`
	Synopsis     string        `json:"synopsis"`
	ViewCount    int           `json:"viewCount"`
	FollowCount  int           `json:"followCount"`
	EpisodeCount int           `json:"episodeCount"`
	Tags         []string      `json:"tags"`
	Performers   []Performer   `json:"performers"`
	Recommended  []CatalogCard `json:"recommended"`
}

// Episode is a single playable unit within a title.
type Episode struct {
	ID          string `json:"id"`
	Index       int    `json:"index"`
	IndexLabel  string `json:"indexLabel"` // zero-padded, e.g. "007"
	Name        string `json:"name"`
	Unlocked    bool   `json:"unlocked"`
	Duration    int    `json:"duration"` // seconds
	VideoURL    string `json:"videoUrl"` // direct MP4, may be empty
	HLSUrl      string `json:"hlsUrl"`   // segmented playlist, may be empty
	HasHLS      bool   `json:"hasHls"`
	CoverURL    string `json:"coverUrl,omitempty"`
	ExpiresIn   int    `json:"expiresIn,omitempty"` // seconds until signed URLs expire, 0 if unknown
}

// PlaybackSource is one playable variant of an episode.
type PlaybackSource struct {
	Label string `json:"label"` // "MP4" | "HLS"
	URL   string `json:"url"`
}

// Playback is the playback view for one episode: the episode itself plus the
// playable source variants and a best-effort default pick.
type Playback struct {
	BookID  string           `json:"bookId"`
	Episode Episode          `json:"episode"`
	Sources []PlaybackSource `json:"sources"`
	Best    string           `json:"best"` // empty when no source is playable
}

// HomePage is the fan-out payload for the landing page. Sections that failed
// upstream degrade to empty slices rather than failing the whole page.
type HomePage struct {
	VIP      []CatalogCard `json:"vip"`
	DubIndo  []CatalogCard `json:"dubindo"`
	Random   []CatalogCard `json:"random"`
	ForYou   []CatalogCard `json:"foryou"`
	Latest   []CatalogCard `json:"latest"`
	Trending []CatalogCard `json:"trending"`
	Hero     *CatalogCard  `json:"hero,omitempty"`
}
