package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection is a named set of saved artworks, unique per (user, title).
type Collection struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`

	// Computed, not stored directly
	WorkCount int `json:"workCount,omitempty"`
}

// NewCollection creates a new collection.
func NewCollection(userID, title string) (*Collection, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrCollectionUserRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrCollectionTitleRequired
	}

	return &Collection{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CollectedWork relates a user's collection to a cached artwork. The
// (user, collection, artwork) triple is unique; rows for the same artwork
// in different collections are independent of each other.
type CollectedWork struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	ArtworkID    string    `json:"artworkId"`
	CollectionID string    `json:"collectionId"`
	AddedAt      time.Time `json:"addedAt"`
}

// NewCollectedWork creates a membership row.
func NewCollectedWork(userID, artworkID, collectionID string) *CollectedWork {
	return &CollectedWork{
		ID:           uuid.New().String(),
		UserID:       userID,
		ArtworkID:    artworkID,
		CollectionID: collectionID,
		AddedAt:      time.Now().UTC(),
	}
}

// Errors
type CollectionError struct {
	Message string
}

func (e CollectionError) Error() string {
	return e.Message
}

var (
	ErrCollectionNotFound      = CollectionError{"collection not found"}
	ErrCollectionTitleRequired = CollectionError{"collection title is required"}
	ErrCollectionUserRequired  = CollectionError{"user ID is required"}
	ErrCollectionTitleExists   = CollectionError{"a collection with that title already exists"}
	ErrCollectionAccessDenied  = CollectionError{"access denied to collection"}
)
