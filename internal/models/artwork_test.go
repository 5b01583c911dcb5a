package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArtwork(t *testing.T) {
	t.Run("derives the display page URL", func(t *testing.T) {
		artwork, err := NewArtwork(16568, "  Water Lilies  ")
		require.NoError(t, err)

		assert.NotEmpty(t, artwork.ID)
		assert.Equal(t, int64(16568), artwork.ExternalID)
		assert.Equal(t, "Water Lilies", artwork.Title)
		assert.Equal(t, "https://www.artic.edu/artworks/16568", artwork.ArtworkPageURL)
		assert.False(t, artwork.IsEnriched())
	})

	t.Run("rejects non-positive external ids", func(t *testing.T) {
		_, err := NewArtwork(0, "Untitled")
		assert.ErrorIs(t, err, ErrInvalidExternalID)

		_, err = NewArtwork(-5, "Untitled")
		assert.ErrorIs(t, err, ErrInvalidExternalID)
	})
}

func TestComposeImageURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		imageID string
		want    string
	}{
		{"composes the full URL", "https://www.artic.edu/iiif/2", "abc-123", "https://www.artic.edu/iiif/2/abc-123/full/843,/0/default.jpg"},
		{"trims a trailing slash on the base", "https://www.artic.edu/iiif/2/", "abc-123", "https://www.artic.edu/iiif/2/abc-123/full/843,/0/default.jpg"},
		{"empty base yields nothing", "", "abc-123", ""},
		{"empty image id yields nothing", "https://www.artic.edu/iiif/2", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeImageURL(tt.base, tt.imageID))
		})
	}
}

func TestArtworkIsEnriched(t *testing.T) {
	artwork, err := NewArtwork(101, "Water Lilies")
	require.NoError(t, err)
	assert.False(t, artwork.IsEnriched())

	url := "https://www.artic.edu/iiif/2/abc/full/843,/0/default.jpg"
	artwork.ImageURL = &url
	assert.True(t, artwork.IsEnriched())
}
