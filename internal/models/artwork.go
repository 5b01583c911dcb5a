package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// artworkPageBaseURL is the canonical public display page for an artwork.
const artworkPageBaseURL = "https://www.artic.edu/artworks"

// imageURLSuffix selects the fixed size/format variant served by the
// museum's IIIF image service.
const imageURLSuffix = "/full/843,/0/default.jpg"

// Artwork is a locally cached row for an artwork from the remote catalog.
// A row exists only while at least one search page or collection
// membership references it; the detail columns stay nil until the artwork
// has been enriched from the detail endpoint.
type Artwork struct {
	ID             string    `json:"id"`
	ExternalID     int64     `json:"externalId"`
	Title          string    `json:"title"`
	ArtworkPageURL string    `json:"artworkPageUrl"`
	AltText        *string   `json:"altText,omitempty"`
	ImageURL       *string   `json:"imageUrl,omitempty"`
	ArtistInfo     *string   `json:"artistInfo,omitempty"`
	DateInfo       *string   `json:"dateInfo,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewArtwork creates an artwork row from a search result summary. The
// display page URL is derived from the external id; detail fields are
// filled later by enrichment.
func NewArtwork(externalID int64, title string) (*Artwork, error) {
	if externalID <= 0 {
		return nil, ErrInvalidExternalID
	}

	return &Artwork{
		ID:             uuid.New().String(),
		ExternalID:     externalID,
		Title:          strings.TrimSpace(title),
		ArtworkPageURL: fmt.Sprintf("%s/%d", artworkPageBaseURL, externalID),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// ComposeImageURL builds the full display image URL from the IIIF base
// URL and an image identifier. Returns "" when either part is missing.
func ComposeImageURL(iiifBaseURL, imageID string) string {
	if iiifBaseURL == "" || imageID == "" {
		return ""
	}
	return strings.TrimSuffix(iiifBaseURL, "/") + "/" + imageID + imageURLSuffix
}

// IsEnriched reports whether the detail fields have been filled in.
func (a *Artwork) IsEnriched() bool {
	return a.ImageURL != nil
}

// Errors
type ArtworkError struct {
	Message string
}

func (e ArtworkError) Error() string {
	return e.Message
}

var (
	ErrArtworkNotFound   = ArtworkError{"artwork not found"}
	ErrInvalidExternalID = ArtworkError{"external artwork id must be positive"}
)
