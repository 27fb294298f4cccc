package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"dramastream/models"
	"dramastream/services/drama"
)

// dramaService is the slice of the fetch layer the handlers consume.
type dramaService interface {
	Home(context.Context) *models.HomePage
	DubIndo(context.Context, string, int) ([]models.CatalogCard, error)
	Search(context.Context, string) ([]models.CatalogCard, error)
	Detail(context.Context, string) (*models.TitleDetail, error)
	Episodes(context.Context, string) ([]models.Episode, error)
	Playback(context.Context, string, string) (*models.Playback, error)
}

var _ dramaService = (*drama.Service)(nil)

// CatalogHandler serves the JSON API the front end polls. Listing endpoints
// degrade to empty data on upstream failure; detail and playback endpoints
// return an explicit error status instead, since "unavailable" and "empty"
// mean different things on those screens.
type CatalogHandler struct {
	Service dramaService
}

func NewCatalogHandler(s dramaService) *CatalogHandler {
	return &CatalogHandler{Service: s}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Home returns all landing-page sections. Individual section failures have
// already degraded to empty slices inside the fan-out, so this always 200s.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Home(r.Context()))
}

// DubIndoResponse wraps one browse page with its query echo.
type DubIndoResponse struct {
	Classify string               `json:"classify"`
	Page     int                  `json:"page"`
	Data     []models.CatalogCard `json:"data"`
	Error    string               `json:"error,omitempty"`
}

func (h *CatalogHandler) DubIndo(w http.ResponseWriter, r *http.Request) {
	classify := strings.TrimSpace(r.URL.Query().Get("classify"))
	if classify == "" {
		classify = "terbaru"
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	resp := DubIndoResponse{Classify: classify, Page: page, Data: []models.CatalogCard{}}
	cards, err := h.Service.DubIndo(r.Context(), classify, page)
	if err != nil {
		resp.Error = "dubindo_fetch_failed"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Data = cards
	writeJSON(w, http.StatusOK, resp)
}

// SearchResponse wraps search results with the query echo.
type SearchResponse struct {
	Query string               `json:"query"`
	Data  []models.CatalogCard `json:"data"`
	Error string               `json:"error,omitempty"`
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	resp := SearchResponse{Query: query, Data: []models.CatalogCard{}}
	if query == "" {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	cards, err := h.Service.Search(r.Context(), query)
	if err != nil {
		resp.Error = "search_failed"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Data = cards
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	bookID := strings.TrimSpace(mux.Vars(r)["bookID"])
	if bookID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "book id is required"})
		return
	}

	detail, err := h.Service.Detail(r.Context(), bookID)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "detail_unavailable"})
		return
	}
	if detail.ID == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *CatalogHandler) Episodes(w http.ResponseWriter, r *http.Request) {
	bookID := strings.TrimSpace(mux.Vars(r)["bookID"])
	if bookID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "book id is required"})
		return
	}

	episodes, err := h.Service.Episodes(r.Context(), bookID)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "episodes_unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookId": bookID, "data": episodes})
}

func (h *CatalogHandler) Play(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookID := strings.TrimSpace(vars["bookID"])
	chapterID := strings.TrimSpace(vars["chapterID"])
	if bookID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "book id is required"})
		return
	}

	playback, err := h.Service.Playback(r.Context(), bookID, chapterID)
	if err != nil {
		if errors.Is(err, drama.ErrEpisodeNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "play_unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, playback)
}

// Register wires the JSON API routes onto the router.
func (h *CatalogHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/home", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/api/dubindo", h.DubIndo).Methods(http.MethodGet)
	r.HandleFunc("/api/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/detail/{bookID}", h.Detail).Methods(http.MethodGet)
	r.HandleFunc("/api/episodes/{bookID}", h.Episodes).Methods(http.MethodGet)
	r.HandleFunc("/api/play/{bookID}/{chapterID}", h.Play).Methods(http.MethodGet)
}
