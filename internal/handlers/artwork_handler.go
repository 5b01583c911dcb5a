package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/artsearch/server/internal/middleware"
	"github.com/artsearch/server/internal/models"
	"github.com/artsearch/server/internal/services"
	"github.com/go-chi/chi/v5"
)

// ArtworkHandler handles artwork detail API endpoints
type ArtworkHandler struct {
	artworkService *services.ArtworkService
}

// NewArtworkHandler creates a new ArtworkHandler
func NewArtworkHandler(artworkService *services.ArtworkService) *ArtworkHandler {
	return &ArtworkHandler{
		artworkService: artworkService,
	}
}

// Get returns an artwork by its catalog ID, enriched with detail fields
// on first access
// @Summary Get artwork details
// @Description Return a cached artwork by its catalog ID. Detail fields (image URL, artist, date, alt text) are fetched from the remote catalog on first access; a failed fetch serves the stored row.
// @Tags artworks
// @Produce json
// @Param externalID path int true "Catalog artwork ID"
// @Success 200 {object} models.Artwork "Artwork row"
// @Failure 400 {object} models.ErrorResponse "Invalid artwork ID"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 404 {object} models.ErrorResponse "Artwork not found"
// @Security ApiKeyAuth
// @Router /api/artworks/{externalID} [get]
func (h *ArtworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	externalID, err := strconv.ParseInt(chi.URLParam(r, "externalID"), 10, 64)
	if err != nil || externalID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid artwork ID")
		return
	}

	artwork, err := h.artworkService.Enrich(r.Context(), externalID)
	if err != nil {
		if errors.Is(err, models.ErrArtworkNotFound) {
			writeError(w, http.StatusNotFound, "Artwork not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load artwork")
		return
	}

	writeJSON(w, http.StatusOK, artwork)
}
