package handlers

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"dramastream/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageMeta is the per-page head metadata (title, description, canonical URL,
// OG image) the layout template renders.
type PageMeta struct {
	SiteName    string
	Tagline     string
	Title       string
	Description string
	URL         string
	Image       string
}

// PagesHandler renders the server-side pages. It shares the dramaService with
// the JSON API; page handlers follow the same degradation policy (listing
// pages render empty sections, detail/watch pages render a not-found page).
type PagesHandler struct {
	Service  dramaService
	SiteName string
	Tagline  string
	BaseURL  string // canonical base; derived from the request when empty

	mu    sync.Mutex
	pages map[string]*template.Template
}

func NewPagesHandler(s dramaService, siteName, tagline, baseURL string) *PagesHandler {
	return &PagesHandler{
		Service:  s,
		SiteName: siteName,
		Tagline:  tagline,
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		pages:    make(map[string]*template.Template),
	}
}

// page lazily parses layout+page template pairs and memoizes them.
func (h *PagesHandler) page(name string) (*template.Template, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.pages[name]; ok {
		return t, nil
	}
	t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
	if err != nil {
		return nil, err
	}
	h.pages[name] = t
	return t, nil
}

func (h *PagesHandler) render(w http.ResponseWriter, status int, name string, data any) {
	t, err := h.page(name)
	if err != nil {
		log.Printf("[pages] parse %s: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("[pages] render %s: %v", name, err)
	}
}

// baseURL resolves the canonical site base, preferring configuration and
// falling back to forwarded/request headers the way reverse proxies set them.
func (h *PagesHandler) baseURL(r *http.Request) string {
	if h.BaseURL != "" {
		return h.BaseURL
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return proto + "://" + host
}

func (h *PagesHandler) meta(r *http.Request, title, description, path, image string) PageMeta {
	m := PageMeta{
		SiteName:    h.SiteName,
		Tagline:     h.Tagline,
		Title:       h.SiteName + " • " + h.Tagline,
		Description: description,
		URL:         h.baseURL(r) + path,
		Image:       image,
	}
	if title != "" {
		m.Title = title + " • " + h.SiteName
	}
	if m.Description == "" {
		m.Description = h.SiteName + " — " + h.Tagline
	}
	return m
}

// truncateDescription caps a meta description at max bytes without splitting
// a multi-byte rune at the cut.
func truncateDescription(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// rail is one titled card strip on the home page.
type rail struct {
	Title string
	Cards []models.CatalogCard
}

type homePageData struct {
	Meta  PageMeta
	Hero  *models.CatalogCard
	Rails []rail
}

func (h *PagesHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	page := h.Service.Home(r.Context())
	var image string
	if page.Hero != nil {
		image = page.Hero.CoverURL
	}
	h.render(w, http.StatusOK, "home", homePageData{
		Meta: h.meta(r, "", "Trending, latest and recommended short dramas.", "/", image),
		Hero: page.Hero,
		Rails: []rail{
			{"Trending", page.Trending},
			{"Latest", page.Latest},
			{"For You", page.ForYou},
			{"VIP", page.VIP},
			{"Dub Indo", page.DubIndo},
			{"Random Picks", page.Random},
		},
	})
}

type browsePageData struct {
	Meta     PageMeta
	Classify string
	Cards    []models.CatalogCard
}

func (h *PagesHandler) BrowsePage(w http.ResponseWriter, r *http.Request) {
	classify := strings.TrimSpace(r.URL.Query().Get("classify"))
	if classify == "" {
		classify = "terbaru"
	}

	cards, err := h.Service.DubIndo(r.Context(), classify, 1)
	if err != nil {
		log.Printf("[pages] browse %s failed: %v", classify, err)
		cards = []models.CatalogCard{}
	}
	h.render(w, http.StatusOK, "browse", browsePageData{
		Meta:     h.meta(r, "Browse "+classify, "Browse the dubbed catalog.", "/browse?classify="+url.QueryEscape(classify), ""),
		Classify: classify,
		Cards:    cards,
	})
}

type searchPageData struct {
	Meta  PageMeta
	Query string
	Cards []models.CatalogCard
}

func (h *PagesHandler) SearchPage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	cards := []models.CatalogCard{}
	if query != "" {
		var err error
		cards, err = h.Service.Search(r.Context(), query)
		if err != nil {
			log.Printf("[pages] search %q failed: %v", query, err)
			cards = []models.CatalogCard{}
		}
	}

	title := "Search"
	path := "/search"
	if query != "" {
		title = "Search: " + query
		path = "/search?q=" + url.QueryEscape(query)
	}
	h.render(w, http.StatusOK, "search", searchPageData{
		Meta:  h.meta(r, title, "Find a title.", path, ""),
		Query: query,
		Cards: cards,
	})
}

type detailPageData struct {
	Meta     PageMeta
	Detail   *models.TitleDetail
	Episodes []models.Episode
}

func (h *PagesHandler) DetailPage(w http.ResponseWriter, r *http.Request) {
	bookID := strings.TrimSpace(mux.Vars(r)["bookID"])
	if bookID == "" {
		h.NotFoundPage(w, r)
		return
	}

	detail, episodes, err := h.detailWithEpisodes(r, bookID)
	if err != nil || detail.ID == "" {
		h.NotFoundPage(w, r)
		return
	}

	description := truncateDescription(detail.Synopsis, 160)
	h.render(w, http.StatusOK, "detail", detailPageData{
		Meta:     h.meta(r, detail.Name, description, "/detail/"+url.PathEscape(bookID), detail.CoverURL),
		Detail:   detail,
		Episodes: episodes,
	})
}

type watchPageData struct {
	Meta      PageMeta
	Detail    *models.TitleDetail
	Episodes  []models.Episode
	Current   models.Episode
	Playback  *models.Playback
	ChapterID string
}

func (h *PagesHandler) WatchPage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookID := strings.TrimSpace(vars["bookID"])
	chapterID := strings.TrimSpace(vars["chapterID"])
	if bookID == "" {
		h.NotFoundPage(w, r)
		return
	}

	detail, episodes, err := h.detailWithEpisodes(r, bookID)
	if err != nil {
		h.NotFoundPage(w, r)
		return
	}
	playback, err := h.Service.Playback(r.Context(), bookID, chapterID)
	if err != nil {
		h.NotFoundPage(w, r)
		return
	}

	h.render(w, http.StatusOK, "watch", watchPageData{
		Meta:      h.meta(r, detail.Name+" — "+playback.Episode.Name, "Watch "+detail.Name+".", "/watch/"+url.PathEscape(bookID)+"/"+url.PathEscape(playback.Episode.ID), detail.CoverURL),
		Detail:    detail,
		Episodes:  episodes,
		Current:   playback.Episode,
		Playback:  playback,
		ChapterID: playback.Episode.ID,
	})
}

// detailWithEpisodes fetches the detail record and episode list concurrently,
// the two being independent upstream calls for the same screen.
func (h *PagesHandler) detailWithEpisodes(r *http.Request, bookID string) (*models.TitleDetail, []models.Episode, error) {
	var (
		wg       sync.WaitGroup
		detail   *models.TitleDetail
		episodes []models.Episode
		detErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		detail, detErr = h.Service.Detail(r.Context(), bookID)
	}()
	go func() {
		defer wg.Done()
		eps, err := h.Service.Episodes(r.Context(), bookID)
		if err != nil {
			log.Printf("[pages] episodes for %s failed: %v", bookID, err)
			eps = []models.Episode{}
		}
		episodes = eps
	}()
	wg.Wait()

	if detErr != nil {
		return nil, nil, detErr
	}
	return detail, episodes, nil
}

type notFoundPageData struct {
	Meta PageMeta
}

func (h *PagesHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "404", notFoundPageData{
		Meta: h.meta(r, "Not found", "", r.URL.Path, ""),
	})
}

// Register wires the page routes onto the router.
func (h *PagesHandler) Register(r *mux.Router) {
	r.HandleFunc("/", h.HomePage).Methods(http.MethodGet)
	r.HandleFunc("/browse", h.BrowsePage).Methods(http.MethodGet)
	r.HandleFunc("/search", h.SearchPage).Methods(http.MethodGet)
	r.HandleFunc("/detail/{bookID}", h.DetailPage).Methods(http.MethodGet)
	r.HandleFunc("/watch/{bookID}/{chapterID}", h.WatchPage).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(h.NotFoundPage)
}
