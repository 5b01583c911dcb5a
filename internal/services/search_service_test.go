package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artsearch/server/internal/models"
	"github.com/artsearch/server/internal/repository"
)

// fakeCatalog stubs the remote catalog for both search and detail calls
type fakeCatalog struct {
	totalPages  int
	pages       map[int][]SearchItem
	details     map[int64]*ArtworkDetail
	searchCalls int
	detailCalls int
	failSearch  bool
	failDetail  bool
}

func (f *fakeCatalog) SearchPage(ctx context.Context, term string, page int) (*SearchResult, error) {
	f.searchCalls++
	if f.failSearch {
		return nil, ErrUpstreamUnavailable
	}
	return &SearchResult{Items: f.pages[page], TotalPages: f.totalPages}, nil
}

func (f *fakeCatalog) ArtworkDetail(ctx context.Context, externalID int64) (*ArtworkDetail, error) {
	f.detailCalls++
	if f.failDetail {
		return nil, ErrUpstreamUnavailable
	}
	detail, ok := f.details[externalID]
	if !ok {
		return nil, ErrUpstreamUnavailable
	}
	return detail, nil
}

type searchTestEnv struct {
	db          *sql.DB
	user        *models.User
	gateway     *fakeCatalog
	search      *SearchService
	artworkRepo *repository.ArtworkRepository
	pageRepo    *repository.SearchPageRepository
}

func setupSearchTest(t *testing.T, gateway *fakeCatalog) *searchTestEnv {
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	user, err := models.NewUser("monet.fan@example.com", "Monet Fan")
	require.NoError(t, err)
	require.NoError(t, repository.NewUserRepository(db).Add(context.Background(), user))

	artworkRepo := repository.NewArtworkRepository(db)
	pageRepo := repository.NewSearchPageRepository(db)
	svc := NewSearchService(db, repository.NewSearchRepository(db), pageRepo, artworkRepo, gateway)

	return &searchTestEnv{
		db:          db,
		user:        user,
		gateway:     gateway,
		search:      svc,
		artworkRepo: artworkRepo,
		pageRepo:    pageRepo,
	}
}

func catalogItems(ids ...int64) []SearchItem {
	items := make([]SearchItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, SearchItem{ExternalID: id, Title: fmt.Sprintf("Artwork %d", id)})
	}
	return items
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestSearchService_ResolvePage(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches and caches the first page", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 3,
			pages:      map[int][]SearchItem{1: catalogItems(101, 102, 103)},
		})

		result, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)
		assert.Equal(t, "monet", result.Term)
		assert.Equal(t, 1, result.PageNumber)
		assert.Equal(t, 3, result.TotalPages)
		require.Len(t, result.Artworks, 3)
		assert.Equal(t, int64(101), result.Artworks[0].ExternalID)
		assert.Equal(t, "Artwork 101", result.Artworks[0].Title)
		assert.Equal(t, "https://www.artic.edu/artworks/101", result.Artworks[0].ArtworkPageURL)
		assert.Equal(t, 1, env.gateway.searchCalls)

		// Second request for the same page must come from the local store
		again, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, env.gateway.searchCalls)
		require.Len(t, again.Artworks, 3)
		for i := range result.Artworks {
			assert.Equal(t, result.Artworks[i].ExternalID, again.Artworks[i].ExternalID)
		}
	})

	t.Run("rejects an empty term", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{totalPages: 1})

		_, err := env.search.ResolvePage(ctx, env.user.ID, "   ", 1)
		assert.ErrorIs(t, err, models.ErrEmptyTerm)
		assert.Equal(t, 0, env.gateway.searchCalls)
	})

	t.Run("rejects a different term while one is active", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 2,
			pages:      map[int][]SearchItem{1: catalogItems(101)},
		})

		_, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)

		_, err = env.search.ResolvePage(ctx, env.user.ID, "vermeer", 1)
		assert.ErrorIs(t, err, models.ErrActiveSearchExists)
	})

	t.Run("resolves page requests past the end to the last page", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 3,
			pages: map[int][]SearchItem{
				1: catalogItems(101),
				3: catalogItems(301),
			},
		})

		_, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)

		result, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 99)
		require.NoError(t, err)
		assert.Equal(t, 3, result.PageNumber)
		require.Len(t, result.Artworks, 1)
		assert.Equal(t, int64(301), result.Artworks[0].ExternalID)
	})

	t.Run("caps the stored page count", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 500,
			pages:      map[int][]SearchItem{1: catalogItems(101)},
		})

		result, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)
		assert.Equal(t, models.MaxTotalPages, result.TotalPages)
	})

	t.Run("rejects page numbers below one", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{totalPages: 1})

		_, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 0)
		assert.ErrorIs(t, err, models.ErrInvalidPage)
	})

	t.Run("upstream failure leaves no session behind", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{failSearch: true})

		_, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)

		active, err := env.search.ActiveSearch(ctx, env.user.ID)
		require.NoError(t, err)
		assert.Nil(t, active)
		assert.Equal(t, 0, countRows(t, env.db, "artworks"))
		assert.Equal(t, 0, countRows(t, env.db, "search_pages"))
	})

	t.Run("shares one artwork row across pages", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 2,
			pages: map[int][]SearchItem{
				1: catalogItems(101, 102),
				2: catalogItems(102, 201),
			},
		})

		_, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)
		page2, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 2)
		require.NoError(t, err)

		require.Len(t, page2.Artworks, 2)
		assert.Equal(t, 3, countRows(t, env.db, "artworks"))
		assert.Equal(t, 4, countRows(t, env.db, "search_pages"))
	})

	t.Run("refetches a page that returned no results", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 2,
			pages:      map[int][]SearchItem{1: catalogItems(101)},
		})

		_, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)

		// Page 2 has no items, so nothing is indexed for it and each
		// request goes back to the catalog.
		empty, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 2)
		require.NoError(t, err)
		assert.Empty(t, empty.Artworks)
		assert.Equal(t, 2, env.gateway.searchCalls)

		_, err = env.search.ResolvePage(ctx, env.user.ID, "monet", 2)
		require.NoError(t, err)
		assert.Equal(t, 3, env.gateway.searchCalls)
	})

	t.Run("preserves the catalog's result order", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 1,
			pages:      map[int][]SearchItem{1: catalogItems(105, 101, 103, 104, 102)},
		})

		result, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)

		order := make([]int64, 0, len(result.Artworks))
		for _, a := range result.Artworks {
			order = append(order, a.ExternalID)
		}
		assert.Equal(t, []int64{105, 101, 103, 104, 102}, order)
	})
}

func TestSearchService_ClearSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the session and its artworks", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 1,
			pages:      map[int][]SearchItem{1: catalogItems(101, 102)},
		})

		_, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)

		require.NoError(t, env.search.ClearSearch(ctx, env.user.ID))

		active, err := env.search.ActiveSearch(ctx, env.user.ID)
		require.NoError(t, err)
		assert.Nil(t, active)
		assert.Equal(t, 0, countRows(t, env.db, "searches"))
		assert.Equal(t, 0, countRows(t, env.db, "search_pages"))
		assert.Equal(t, 0, countRows(t, env.db, "artworks"))
	})

	t.Run("keeps collected artworks", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 1,
			pages:      map[int][]SearchItem{1: catalogItems(101, 102)},
		})

		result, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)

		// Pin the first artwork by saving it into a collection
		collection, err := models.NewCollection(env.user.ID, "monet")
		require.NoError(t, err)
		require.NoError(t, repository.NewCollectionRepository(env.db).Add(ctx, collection))
		work := models.NewCollectedWork(env.user.ID, result.Artworks[0].ID, collection.ID)
		require.NoError(t, repository.NewCollectedWorkRepository(env.db).Add(ctx, work))

		require.NoError(t, env.search.ClearSearch(ctx, env.user.ID))

		assert.Equal(t, 1, countRows(t, env.db, "artworks"))
		kept, err := env.artworkRepo.GetByExternalID(ctx, 101)
		require.NoError(t, err)
		require.NotNil(t, kept)
	})

	t.Run("is a no-op without an active search", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{totalPages: 1})
		assert.NoError(t, env.search.ClearSearch(ctx, env.user.ID))
	})

	t.Run("allows a new term after clearing", func(t *testing.T) {
		env := setupSearchTest(t, &fakeCatalog{
			totalPages: 1,
			pages:      map[int][]SearchItem{1: catalogItems(101)},
		})

		_, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
		require.NoError(t, err)
		require.NoError(t, env.search.ClearSearch(ctx, env.user.ID))

		result, err := env.search.ResolvePage(ctx, env.user.ID, "vermeer", 1)
		require.NoError(t, err)
		assert.Equal(t, "vermeer", result.Term)
	})
}

// TestSearchService_BrowseAndCollect walks a whole session: search, page
// forward and back, save one artwork, clear, search again.
func TestSearchService_BrowseAndCollect(t *testing.T) {
	ctx := context.Background()
	env := setupSearchTest(t, &fakeCatalog{
		totalPages: 2,
		pages: map[int][]SearchItem{
			1: catalogItems(101, 102, 103),
			2: catalogItems(201, 202),
		},
	})

	page1, err := env.search.ResolvePage(ctx, env.user.ID, "monet", 1)
	require.NoError(t, err)
	require.Len(t, page1.Artworks, 3)
	assert.Equal(t, 1, env.gateway.searchCalls)

	// Page forward
	next := Advance(page1.PageNumber, page1.TotalPages, DirectionNext)
	page2, err := env.search.ResolvePage(ctx, env.user.ID, "monet", next)
	require.NoError(t, err)
	assert.Equal(t, 2, page2.PageNumber)
	require.Len(t, page2.Artworks, 2)
	assert.Equal(t, 2, env.gateway.searchCalls)

	// Back to page one: served from the local store
	prev := Advance(page2.PageNumber, page2.TotalPages, DirectionPrev)
	back, err := env.search.ResolvePage(ctx, env.user.ID, "monet", prev)
	require.NoError(t, err)
	assert.Equal(t, 1, back.PageNumber)
	assert.Equal(t, 2, env.gateway.searchCalls)
	assert.Equal(t, int64(101), back.Artworks[0].ExternalID)

	// Save one artwork, clear the search
	collections := NewCollectionService(env.db,
		repository.NewCollectionRepository(env.db),
		repository.NewCollectedWorkRepository(env.db),
		env.artworkRepo,
	)
	saved, err := collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
		ArtworkID: back.Artworks[1].ID,
		Title:     "monet",
	})
	require.NoError(t, err)
	assert.Equal(t, "monet", saved.Title)

	require.NoError(t, env.search.ClearSearch(ctx, env.user.ID))
	assert.Equal(t, 1, countRows(t, env.db, "artworks"))

	// A fresh search for a new term starts clean
	fresh, err := env.search.ResolvePage(ctx, env.user.ID, "vermeer", 1)
	require.NoError(t, err)
	assert.Equal(t, "vermeer", fresh.Term)

	// The saved artwork is still retrievable through its collection
	works, err := collections.GetArtworks(ctx, env.user.ID, saved.ID)
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, int64(102), works[0].ExternalID)
}

func TestSearchService_ErrorWrapping(t *testing.T) {
	env := setupSearchTest(t, &fakeCatalog{failSearch: true})

	_, err := env.search.ResolvePage(context.Background(), env.user.ID, "monet", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}
