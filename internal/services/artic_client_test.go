package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticClient_SearchPage(t *testing.T) {
	t.Run("parses a result page", func(t *testing.T) {
		var gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"pagination": {"total_pages": 42},
				"data": [
					{"id": 16568, "title": "Water Lilies"},
					{"id": 14598, "title": "The Beach at Sainte-Adresse"}
				]
			}`))
		}))
		defer server.Close()

		client := NewArticClient(server.URL, server.URL, 5*time.Second)
		result, err := client.SearchPage(context.Background(), "monet", 2)
		require.NoError(t, err)

		assert.Equal(t, 42, result.TotalPages)
		require.Len(t, result.Items, 2)
		assert.Equal(t, int64(16568), result.Items[0].ExternalID)
		assert.Equal(t, "Water Lilies", result.Items[0].Title)

		assert.Contains(t, gotQuery, "q=monet")
		assert.Contains(t, gotQuery, "page=2")
		// Only public-domain works are requested
		assert.Contains(t, gotQuery, "is_public_domain%5D=true")
	})

	t.Run("maps a server error to the upstream sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewArticClient(server.URL, server.URL, 5*time.Second)
		_, err := client.SearchPage(context.Background(), "monet", 1)
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})

	t.Run("maps a connection failure to the upstream sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewArticClient(server.URL, server.URL, time.Second)
		_, err := client.SearchPage(context.Background(), "monet", 1)
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})
}

func TestArticClient_ArtworkDetail(t *testing.T) {
	t.Run("parses a detail record", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"data": {
					"image_id": "abc-123",
					"artist_display": "Claude Monet (French, 1840-1926)",
					"date_display": "1906",
					"thumbnail": {"alt_text": "A pond with water lilies"}
				},
				"config": {"iiif_url": "https://www.artic.edu/iiif/2"}
			}`))
		}))
		defer server.Close()

		client := NewArticClient(server.URL, server.URL, 5*time.Second)
		detail, err := client.ArtworkDetail(context.Background(), 16568)
		require.NoError(t, err)

		assert.Equal(t, "/16568", gotPath)
		assert.Equal(t, "https://www.artic.edu/iiif/2", detail.IIIFBaseURL)
		assert.Equal(t, "abc-123", detail.ImageID)
		require.NotNil(t, detail.ArtistInfo)
		assert.Equal(t, "Claude Monet (French, 1840-1926)", *detail.ArtistInfo)
		require.NotNil(t, detail.AltText)
		assert.Equal(t, "A pond with water lilies", *detail.AltText)
	})

	t.Run("tolerates missing image and thumbnail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"data": {"image_id": null, "artist_display": null, "date_display": null},
				"config": {"iiif_url": "https://www.artic.edu/iiif/2"}
			}`))
		}))
		defer server.Close()

		client := NewArticClient(server.URL, server.URL, 5*time.Second)
		detail, err := client.ArtworkDetail(context.Background(), 999)
		require.NoError(t, err)

		assert.Empty(t, detail.ImageID)
		assert.Nil(t, detail.ArtistInfo)
		assert.Nil(t, detail.AltText)
	})
}
