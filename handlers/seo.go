package handlers

import (
	"encoding/xml"
	"net/http"

	"github.com/gorilla/mux"

	"dramastream/models"
)

// SEOHandler serves robots.txt and a dynamic sitemap built from the current
// home-page sections. It shares the PagesHandler purely for base-URL
// resolution.
type SEOHandler struct {
	Service dramaService
	Pages   *PagesHandler
}

func NewSEOHandler(s dramaService, pages *PagesHandler) *SEOHandler {
	return &SEOHandler{Service: s, Pages: pages}
}

func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("User-agent: *\nAllow: /\nSitemap: " + h.Pages.baseURL(r) + "/sitemap.xml\n"))
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap emits the static routes plus one detail URL per distinct title
// currently visible on the home sections. Sections that failed upstream have
// already degraded to empty, so a flaky upstream shrinks the sitemap instead
// of erroring it.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	base := h.Pages.baseURL(r)
	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: base + "/", ChangeFreq: "daily", Priority: "1.0"},
			{Loc: base + "/browse?classify=terbaru", ChangeFreq: "daily", Priority: "0.8"},
		},
	}

	page := h.Service.Home(r.Context())
	seen := make(map[string]bool)
	for _, section := range [][]models.CatalogCard{page.VIP, page.Latest, page.Trending, page.ForYou} {
		for _, card := range section {
			if seen[card.ID] {
				continue
			}
			seen[card.ID] = true
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        base + "/detail/" + card.ID,
				ChangeFreq: "weekly",
				Priority:   "0.7",
			})
		}
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	enc.Encode(set)
}

// Register wires the SEO routes onto the router.
func (h *SEOHandler) Register(r *mux.Router) {
	r.HandleFunc("/robots.txt", h.Robots).Methods(http.MethodGet)
	r.HandleFunc("/sitemap.xml", h.Sitemap).Methods(http.MethodGet)
}
