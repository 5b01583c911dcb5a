package models

import "time"

// SearchRequest starts a new search.
type SearchRequest struct {
	Term string `json:"term"`
}

// NavigateRequest moves within the active search's result pages.
type NavigateRequest struct {
	Direction   string `json:"direction"`
	CurrentPage int    `json:"currentPage"`
}

// PageResult is one resolved page of an active search.
type PageResult struct {
	Term       string     `json:"term"`
	PageNumber int        `json:"pageNumber"`
	TotalPages int        `json:"totalPages"`
	Artworks   []*Artwork `json:"artworks"`
}

// CreateCollectionRequest creates a collection explicitly.
type CreateCollectionRequest struct {
	Title string `json:"title"`
}

// AddToCollectionRequest saves an artwork into a collection. Exactly one
// of CollectionID (existing collection) or Title (resolve-or-create, the
// caller defaults it to the search term) should be set.
type AddToCollectionRequest struct {
	ArtworkID    string `json:"artworkId"`
	CollectionID string `json:"collectionId,omitempty"`
	Title        string `json:"title,omitempty"`
}

// CollectionListResponse lists a user's collections.
type CollectionListResponse struct {
	Collections []*Collection `json:"collections"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
