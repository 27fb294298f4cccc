package drama

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"dramastream/models"
)

// Upstream endpoint paths.
const (
	epLatest      = "/latest"
	epTrending    = "/trending"
	epForYou      = "/foryou"
	epRandom      = "/randomdrama"
	epVIP         = "/vip"
	epDubIndo     = "/dubindo"
	epSearch      = "/search"
	epDetail      = "/detail"
	epAllEpisodes = "/allepisode"
)

// ErrEpisodeNotFound is returned by Playback when the requested chapter does
// not exist in the title's episode list.
var ErrEpisodeNotFound = errors.New("episode not found")

// Options are the tunables of the fetch layer. The upstream's observed
// latency and flakiness vary wildly between deployments, so none of these are
// hardcoded; zero values fall back to the defaults below.
type Options struct {
	Timeout        time.Duration // per upstream call
	Retries        uint          // additional attempts after the first
	Backoff        time.Duration // linear backoff base
	DefaultTTL     time.Duration // cache TTL when the response carries no hint
	PlayTTLCeiling time.Duration // upper bound for signed-URL payload caching
	PlayTTLFloor   time.Duration // lower bound for signed-URL payload caching
	CoverTTL       time.Duration // dedicated cover cache TTL
	CoverRepairMax int           // cards repaired per listing, also concurrency bound
}

func (o *Options) fillDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = 3 * time.Minute
	}
	if o.PlayTTLCeiling <= 0 {
		o.PlayTTLCeiling = 2 * time.Minute
	}
	if o.PlayTTLFloor <= 0 {
		o.PlayTTLFloor = 5 * time.Second
	}
	if o.CoverTTL <= 0 {
		o.CoverTTL = 30 * time.Minute
	}
	if o.CoverRepairMax <= 0 {
		o.CoverRepairMax = 6
	}
}

// Service is the normalized fetch layer over the upstream drama API: cache
// lookup first, then a retried client call, then normalization. All returned
// structures are fresh snapshots; callers must not mutate them.
type Service struct {
	client *Client
	cache  *Cache
	opts   Options

	// covers is keyed by book id and reused across listing repairs so a title
	// with a broken listing cover costs one detail fetch, not one per page.
	covers *Cache
}

// NewService wires the fetch layer. cache may be shared for tests; pass nil
// to get a fresh one.
func NewService(client *Client, cache *Cache, opts Options) *Service {
	opts.fillDefaults()
	if cache == nil {
		cache = NewCache()
	}
	return &Service{
		client: client,
		cache:  cache,
		opts:   opts,
		covers: NewCache(),
	}
}

// NewServiceFromConfig is the production constructor.
func NewServiceFromConfig(baseURL, token string, requireToken bool, opts Options) *Service {
	opts.fillDefaults()
	return NewService(NewClient(baseURL, token, requireToken, &http.Client{Timeout: opts.Timeout + 5*time.Second}), nil, opts)
}

// fetch returns the raw payload for endpoint+params, serving from cache when
// possible and writing through on a miss. The retry policy only re-attempts
// transient failures; a precondition failure or 4xx surfaces immediately.
func (s *Service) fetch(ctx context.Context, endpoint string, params map[string]string) (any, error) {
	key := CacheKey(endpoint, params)
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	raw, err := withRetry(ctx, func() (any, error) {
		return s.client.FetchJSON(ctx, endpoint, params, s.opts.Timeout)
	}, s.opts.Retries, s.opts.Backoff)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, raw, s.responseTTL(endpoint, raw))
	return raw, nil
}

// responseTTL resolves how long a payload may be served from cache. A
// positive ttl hint in the payload wins. Otherwise the episode endpoint, whose
// video URLs are signed and expire on the upstream's clock, is bounded by
// min(ceiling, max(floor, declared expires_in)); everything else gets the
// default.
func (s *Service) responseTTL(endpoint string, raw any) time.Duration {
	if hint := asInt(asMap(raw)["ttl"]); hint > 0 {
		return time.Duration(hint) * time.Second
	}
	if endpoint != epAllEpisodes {
		return s.opts.DefaultTTL
	}

	ttl := s.opts.PlayTTLCeiling
	if declared := minDeclaredExpiry(raw); declared > 0 {
		bounded := declared
		if bounded < s.opts.PlayTTLFloor {
			bounded = s.opts.PlayTTLFloor
		}
		if bounded < ttl {
			ttl = bounded
		}
	}
	if ttl > s.opts.DefaultTTL {
		ttl = s.opts.DefaultTTL
	}
	return ttl
}

// minDeclaredExpiry finds the soonest positive expires_in across the payload's
// episodes, in seconds converted to a duration. Zero means no declaration.
func minDeclaredExpiry(raw any) time.Duration {
	min := 0
	for _, ep := range NormalizeEpisodes(raw) {
		if ep.ExpiresIn <= 0 {
			continue
		}
		if min == 0 || ep.ExpiresIn < min {
			min = ep.ExpiresIn
		}
	}
	return time.Duration(min) * time.Second
}

// listing fetches and normalizes a card listing, then runs the bounded cover
// repair pass.
func (s *Service) listing(ctx context.Context, endpoint string, params map[string]string) ([]models.CatalogCard, error) {
	raw, err := s.fetch(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return s.RepairCovers(ctx, NormalizeCards(raw)), nil
}

// Latest returns the newest titles.
func (s *Service) Latest(ctx context.Context) ([]models.CatalogCard, error) {
	return s.listing(ctx, epLatest, nil)
}

// Trending returns the currently trending titles.
func (s *Service) Trending(ctx context.Context) ([]models.CatalogCard, error) {
	return s.listing(ctx, epTrending, nil)
}

// ForYou returns the upstream's recommendation rail.
func (s *Service) ForYou(ctx context.Context) ([]models.CatalogCard, error) {
	return s.listing(ctx, epForYou, nil)
}

// Random returns a random selection of titles.
func (s *Service) Random(ctx context.Context) ([]models.CatalogCard, error) {
	return s.listing(ctx, epRandom, nil)
}

// VIP returns the premium shelf.
func (s *Service) VIP(ctx context.Context) ([]models.CatalogCard, error) {
	return s.listing(ctx, epVIP, nil)
}

// DubIndo returns one page of the dubbed catalog for a classify bucket
// ("terbaru", "terpopuler", ...). Page numbers start at 1.
func (s *Service) DubIndo(ctx context.Context, classify string, page int) ([]models.CatalogCard, error) {
	if classify == "" {
		classify = "terbaru"
	}
	if page < 1 {
		page = 1
	}
	return s.listing(ctx, epDubIndo, map[string]string{
		"classify": classify,
		"page":     strconv.Itoa(page),
	})
}

// Search returns titles matching query. An empty query is a no-op, not an
// upstream call.
func (s *Service) Search(ctx context.Context, query string) ([]models.CatalogCard, error) {
	if query == "" {
		return []models.CatalogCard{}, nil
	}
	return s.listing(ctx, epSearch, map[string]string{"query": query})
}

// Detail returns the full record for one title.
func (s *Service) Detail(ctx context.Context, bookID string) (*models.TitleDetail, error) {
	if bookID == "" {
		return nil, &PreconditionError{Reason: "book id is required"}
	}
	raw, err := s.fetch(ctx, epDetail, map[string]string{"bookId": bookID})
	if err != nil {
		return nil, err
	}
	detail := NormalizeDetail(raw)
	return &detail, nil
}

// Episodes returns the episode list for one title, in upstream order.
func (s *Service) Episodes(ctx context.Context, bookID string) ([]models.Episode, error) {
	if bookID == "" {
		return nil, &PreconditionError{Reason: "book id is required"}
	}
	raw, err := s.fetch(ctx, epAllEpisodes, map[string]string{"bookId": bookID})
	if err != nil {
		return nil, err
	}
	return NormalizeEpisodes(raw), nil
}

// Playback resolves one episode of a title to its playable source variants.
// chapterID selects the episode; an empty chapterID means the first episode.
func (s *Service) Playback(ctx context.Context, bookID, chapterID string) (*models.Playback, error) {
	episodes, err := s.Episodes(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(episodes) == 0 {
		return nil, ErrEpisodeNotFound
	}

	var ep *models.Episode
	if chapterID == "" {
		ep = &episodes[0]
	} else {
		for i := range episodes {
			if episodes[i].ID == chapterID {
				ep = &episodes[i]
				break
			}
		}
	}
	if ep == nil {
		return nil, ErrEpisodeNotFound
	}

	sources, best := PlaybackSources(*ep)
	return &models.Playback{
		BookID:  bookID,
		Episode: *ep,
		Sources: sources,
		Best:    best,
	}, nil
}

// Home fans out across all landing-page sections concurrently. A failed
// branch degrades to an empty section rather than failing the page; the hero
// is the first trending card, else the first latest, else the first VIP.
func (s *Service) Home(ctx context.Context) *models.HomePage {
	page := &models.HomePage{
		VIP:      []models.CatalogCard{},
		DubIndo:  []models.CatalogCard{},
		Random:   []models.CatalogCard{},
		ForYou:   []models.CatalogCard{},
		Latest:   []models.CatalogCard{},
		Trending: []models.CatalogCard{},
	}

	sections := []struct {
		name  string
		fetch func(context.Context) ([]models.CatalogCard, error)
		dst   *[]models.CatalogCard
	}{
		{"vip", s.VIP, &page.VIP},
		{"dubindo", func(ctx context.Context) ([]models.CatalogCard, error) { return s.DubIndo(ctx, "terbaru", 1) }, &page.DubIndo},
		{"random", s.Random, &page.Random},
		{"foryou", s.ForYou, &page.ForYou},
		{"latest", s.Latest, &page.Latest},
		{"trending", s.Trending, &page.Trending},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, sec := range sections {
		wg.Add(1)
		go func(name string, fetch func(context.Context) ([]models.CatalogCard, error), dst *[]models.CatalogCard) {
			defer wg.Done()
			cards, err := fetch(ctx)
			if err != nil {
				log.Printf("[drama] home section %s failed: %v", name, err)
				return
			}
			mu.Lock()
			*dst = cards
			mu.Unlock()
		}(sec.name, sec.fetch, sec.dst)
	}
	wg.Wait()

	for _, candidates := range [][]models.CatalogCard{page.Trending, page.Latest, page.VIP} {
		if len(candidates) > 0 {
			hero := candidates[0]
			page.Hero = &hero
			break
		}
	}
	return page
}
