package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/artsearch/server/internal/middleware"
	"github.com/artsearch/server/internal/models"
	"github.com/artsearch/server/internal/services"
	"github.com/go-chi/chi/v5"
)

// SearchHandler handles search session API endpoints
type SearchHandler struct {
	searchService *services.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// Search starts a new search session and returns its first page. Any
// previous session for the user is cleared first.
// @Summary Start a search
// @Description Start a new search session for public-domain artworks and return the first result page. Clears any previous session first.
// @Tags search
// @Accept json
// @Produce json
// @Param request body models.SearchRequest true "Search term"
// @Success 200 {object} models.PageResult "First result page"
// @Failure 400 {object} models.ErrorResponse "Empty term or invalid body"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 502 {object} models.ErrorResponse "Artwork catalog unavailable"
// @Security ApiKeyAuth
// @Router /api/search [post]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.searchService.ClearSearch(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear previous search")
		return
	}

	result, err := h.searchService.ResolvePage(r.Context(), user.ID, req.Term, 1)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetPage returns one page of the active search
// @Summary Get a result page
// @Description Return one page of the active search, fetching it from the remote catalog only if it has not been cached yet. Pages past the end resolve to the last page.
// @Tags search
// @Produce json
// @Param page path int true "Page number (1-based)"
// @Success 200 {object} models.PageResult "Result page"
// @Failure 400 {object} models.ErrorResponse "Invalid page number"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 404 {object} models.ErrorResponse "No active search"
// @Failure 502 {object} models.ErrorResponse "Artwork catalog unavailable"
// @Security ApiKeyAuth
// @Router /api/search/pages/{page} [get]
func (h *SearchHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	active, err := h.searchService.ActiveSearch(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load search")
		return
	}
	if active == nil {
		writeError(w, http.StatusNotFound, "No active search")
		return
	}

	result, err := h.searchService.ResolvePage(r.Context(), user.ID, active.Term, page)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Navigate moves within the active search's pages by direction command
// @Summary Navigate result pages
// @Description Move within the active search's pages by direction command (next, prev, first, last). Movement past either edge stays on that edge.
// @Tags search
// @Accept json
// @Produce json
// @Param request body models.NavigateRequest true "Direction and current page"
// @Success 200 {object} models.PageResult "Target page"
// @Failure 400 {object} models.ErrorResponse "Invalid direction or page"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 404 {object} models.ErrorResponse "No active search"
// @Failure 502 {object} models.ErrorResponse "Artwork catalog unavailable"
// @Security ApiKeyAuth
// @Router /api/search/navigate [post]
func (h *SearchHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dir, err := services.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid navigation direction")
		return
	}
	if req.CurrentPage < 1 {
		writeError(w, http.StatusBadRequest, "Invalid current page")
		return
	}

	active, err := h.searchService.ActiveSearch(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load search")
		return
	}
	if active == nil {
		writeError(w, http.StatusNotFound, "No active search")
		return
	}

	target := services.Advance(req.CurrentPage, active.TotalPages, dir)
	result, err := h.searchService.ResolvePage(r.Context(), user.ID, active.Term, target)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Clear ends the active search session
// @Summary Clear the search
// @Description End the active search session, dropping its cached pages and any artwork rows no longer referenced. A no-op when no search is active.
// @Tags search
// @Success 204 "Search cleared"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 500 {object} models.ErrorResponse "Server error"
// @Security ApiKeyAuth
// @Router /api/search [delete]
func (h *SearchHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.searchService.ClearSearch(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear search")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SearchHandler) writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEmptyTerm):
		writeError(w, http.StatusBadRequest, "Search term is required")
	case errors.Is(err, models.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, "Invalid page number")
	case errors.Is(err, models.ErrActiveSearchExists):
		writeError(w, http.StatusConflict, "Another search is already active")
	case errors.Is(err, services.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, "Artwork catalog is unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "Search failed")
	}
}
