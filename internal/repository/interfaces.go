package repository

import (
	"context"

	"github.com/artsearch/server/internal/models"
)

// ArtworkRepo defines persistence operations for cached artwork rows.
type ArtworkRepo interface {
	GetByID(ctx context.Context, id string) (*models.Artwork, error)
	GetByExternalID(ctx context.Context, externalID int64) (*models.Artwork, error)
	// UpsertIfAbsent inserts the artwork unless a row with the same
	// external id exists, and returns the canonical row either way.
	// It never overwrites an existing row.
	UpsertIfAbsent(ctx context.Context, artwork *models.Artwork) (*models.Artwork, error)
	UpdateDetails(ctx context.Context, externalID int64, imageURL, artistInfo, dateInfo, altText *string) error
	// SweepUnreferenced deletes every artwork referenced by neither a
	// search page nor a collected work, returning the rows removed.
	SweepUnreferenced(ctx context.Context) (int64, error)
}

// SearchRepo defines persistence operations for active search sessions.
type SearchRepo interface {
	GetByUser(ctx context.Context, userID string) (*models.Search, error)
	Add(ctx context.Context, search *models.Search) error
	DeleteByUser(ctx context.Context, userID string) error
}

// SearchPageRepo defines persistence operations for page index entries.
type SearchPageRepo interface {
	HasPage(ctx context.Context, searchID string, pageNumber int) (bool, error)
	AddEntries(ctx context.Context, entries []*models.SearchPage) error
	GetArtworksForPage(ctx context.Context, searchID string, pageNumber int) ([]*models.Artwork, error)
	DeleteBySearch(ctx context.Context, searchID string) error
}

// CollectionRepo defines persistence operations for collections.
type CollectionRepo interface {
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	GetByUserAndTitle(ctx context.Context, userID, title string) (*models.Collection, error)
	GetAllForUser(ctx context.Context, userID string) ([]*models.Collection, error)
	Add(ctx context.Context, collection *models.Collection) error
	Delete(ctx context.Context, id string) error
}

// CollectedWorkRepo defines persistence operations for membership rows.
type CollectedWorkRepo interface {
	Exists(ctx context.Context, userID, collectionID, artworkID string) (bool, error)
	Add(ctx context.Context, work *models.CollectedWork) error
	Remove(ctx context.Context, userID, collectionID, artworkID string) error
	GetArtworksForCollection(ctx context.Context, userID, collectionID string) ([]*models.Artwork, error)
}

// UserRepo defines the identity lookups the middleware needs.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*models.User, error)
	Add(ctx context.Context, user *models.User) error
}
