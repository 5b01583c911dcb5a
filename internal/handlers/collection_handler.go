package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/artsearch/server/internal/middleware"
	"github.com/artsearch/server/internal/models"
	"github.com/artsearch/server/internal/services"
	"github.com/go-chi/chi/v5"
)

// CollectionHandler handles collection API endpoints
type CollectionHandler struct {
	collectionService *services.CollectionService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collectionService *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
	}
}

// ListCollections returns the user's collections
// @Summary List collections
// @Description Return the user's collections with per-collection work counts, newest first.
// @Tags collections
// @Produce json
// @Success 200 {object} models.CollectionListResponse "Collections"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Security ApiKeyAuth
// @Router /api/collections [get]
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	collections, err := h.collectionService.ListCollections(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list collections")
		return
	}

	writeJSON(w, http.StatusOK, models.CollectionListResponse{Collections: collections})
}

// CreateCollection creates a new empty collection
// @Summary Create a collection
// @Description Create a new empty collection. Titles are unique per user.
// @Tags collections
// @Accept json
// @Produce json
// @Param request body models.CreateCollectionRequest true "Collection title"
// @Success 201 {object} models.Collection "Created collection"
// @Failure 400 {object} models.ErrorResponse "Missing title"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 409 {object} models.ErrorResponse "Title already in use"
// @Security ApiKeyAuth
// @Router /api/collections [post]
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	collection, err := h.collectionService.CreateCollection(r.Context(), user.ID, req.Title)
	if err != nil {
		h.writeCollectionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, collection)
}

// DeleteCollection deletes a collection and its saved artworks
// @Summary Delete a collection
// @Description Delete a collection and its memberships, discarding artwork rows left unreferenced.
// @Tags collections
// @Param id path string true "Collection ID"
// @Success 204 "Collection deleted"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 403 {object} models.ErrorResponse "Not the collection owner"
// @Failure 404 {object} models.ErrorResponse "Collection not found"
// @Security ApiKeyAuth
// @Router /api/collections/{id} [delete]
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	collectionID := chi.URLParam(r, "id")
	if err := h.collectionService.DeleteCollection(r.Context(), user.ID, collectionID); err != nil {
		h.writeCollectionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetArtworks returns the artworks saved in a collection
// @Summary List collection artworks
// @Description Return the artworks saved in a collection, oldest first.
// @Tags collections
// @Produce json
// @Param id path string true "Collection ID"
// @Success 200 {array} models.Artwork "Member artworks"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 403 {object} models.ErrorResponse "Not the collection owner"
// @Failure 404 {object} models.ErrorResponse "Collection not found"
// @Security ApiKeyAuth
// @Router /api/collections/{id}/artworks [get]
func (h *CollectionHandler) GetArtworks(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	collectionID := chi.URLParam(r, "id")
	artworks, err := h.collectionService.GetArtworks(r.Context(), user.ID, collectionID)
	if err != nil {
		h.writeCollectionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, artworks)
}

// AddArtwork saves an artwork into a collection, creating the
// collection by title if it does not exist yet
// @Summary Save an artwork
// @Description Save an artwork into a collection, addressed by collection ID or by title (created on first use). Saving an artwork already in the collection is a no-op.
// @Tags collections
// @Accept json
// @Produce json
// @Param request body models.AddToCollectionRequest true "Artwork and target collection"
// @Success 200 {object} models.Collection "Target collection"
// @Failure 400 {object} models.ErrorResponse "Missing artwork ID"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 403 {object} models.ErrorResponse "Not the collection owner"
// @Failure 404 {object} models.ErrorResponse "Artwork or collection not found"
// @Security ApiKeyAuth
// @Router /api/collections/artworks [post]
func (h *CollectionHandler) AddArtwork(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.AddToCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ArtworkID == "" {
		writeError(w, http.StatusBadRequest, "Artwork ID is required")
		return
	}

	collection, err := h.collectionService.AddToCollection(r.Context(), user.ID, &req)
	if err != nil {
		h.writeCollectionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collection)
}

// RemoveArtwork removes one artwork from a collection
// @Summary Remove an artwork
// @Description Remove one artwork from a collection, discarding its row if nothing references it anymore. Other collections are unaffected.
// @Tags collections
// @Param id path string true "Collection ID"
// @Param artworkID path string true "Artwork row ID"
// @Success 204 "Artwork removed"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid API key"
// @Failure 403 {object} models.ErrorResponse "Not the collection owner"
// @Failure 404 {object} models.ErrorResponse "Collection or membership not found"
// @Security ApiKeyAuth
// @Router /api/collections/{id}/artworks/{artworkID} [delete]
func (h *CollectionHandler) RemoveArtwork(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	collectionID := chi.URLParam(r, "id")
	artworkID := chi.URLParam(r, "artworkID")
	if err := h.collectionService.RemoveFromCollection(r.Context(), user.ID, collectionID, artworkID); err != nil {
		h.writeCollectionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CollectionHandler) writeCollectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrCollectionNotFound):
		writeError(w, http.StatusNotFound, "Collection not found")
	case errors.Is(err, models.ErrArtworkNotFound):
		writeError(w, http.StatusNotFound, "Artwork not found")
	case errors.Is(err, models.ErrCollectionAccessDenied):
		writeError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, models.ErrCollectionTitleExists):
		writeError(w, http.StatusConflict, "A collection with that title already exists")
	case errors.Is(err, models.ErrCollectionTitleRequired):
		writeError(w, http.StatusBadRequest, "Collection title is required")
	default:
		writeError(w, http.StatusInternalServerError, "Collection operation failed")
	}
}
