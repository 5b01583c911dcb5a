package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artsearch/server/internal/models"
	"github.com/artsearch/server/internal/repository"
)

type collectionTestEnv struct {
	db          *sql.DB
	user        *models.User
	other       *models.User
	collections *CollectionService
	artworkRepo *repository.ArtworkRepository
}

func setupCollectionTest(t *testing.T) *collectionTestEnv {
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)

	user, err := models.NewUser("curator@example.com", "Curator")
	require.NoError(t, err)
	require.NoError(t, userRepo.Add(ctx, user))

	other, err := models.NewUser("visitor@example.com", "Visitor")
	require.NoError(t, err)
	require.NoError(t, userRepo.Add(ctx, other))

	artworkRepo := repository.NewArtworkRepository(db)
	svc := NewCollectionService(db,
		repository.NewCollectionRepository(db),
		repository.NewCollectedWorkRepository(db),
		artworkRepo,
	)

	return &collectionTestEnv{
		db:          db,
		user:        user,
		other:       other,
		collections: svc,
		artworkRepo: artworkRepo,
	}
}

// seedArtwork inserts a cached artwork row directly
func (env *collectionTestEnv) seedArtwork(t *testing.T, externalID int64, title string) *models.Artwork {
	artwork, err := models.NewArtwork(externalID, title)
	require.NoError(t, err)
	stored, err := env.artworkRepo.UpsertIfAbsent(context.Background(), artwork)
	require.NoError(t, err)
	return stored
}

func TestCollectionService_CreateCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an empty collection", func(t *testing.T) {
		env := setupCollectionTest(t)

		collection, err := env.collections.CreateCollection(ctx, env.user.ID, "impressionists")
		require.NoError(t, err)
		assert.Equal(t, "impressionists", collection.Title)
		assert.Equal(t, env.user.ID, collection.UserID)
		assert.NotEmpty(t, collection.ID)
	})

	t.Run("rejects a duplicate title for the same user", func(t *testing.T) {
		env := setupCollectionTest(t)

		_, err := env.collections.CreateCollection(ctx, env.user.ID, "impressionists")
		require.NoError(t, err)

		_, err = env.collections.CreateCollection(ctx, env.user.ID, "impressionists")
		assert.ErrorIs(t, err, models.ErrCollectionTitleExists)
	})

	t.Run("allows the same title for different users", func(t *testing.T) {
		env := setupCollectionTest(t)

		_, err := env.collections.CreateCollection(ctx, env.user.ID, "impressionists")
		require.NoError(t, err)

		_, err = env.collections.CreateCollection(ctx, env.other.ID, "impressionists")
		assert.NoError(t, err)
	})

	t.Run("rejects an empty title", func(t *testing.T) {
		env := setupCollectionTest(t)

		_, err := env.collections.CreateCollection(ctx, env.user.ID, "   ")
		assert.ErrorIs(t, err, models.ErrCollectionTitleRequired)
	})
}

func TestCollectionService_AddToCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the collection by title on first save", func(t *testing.T) {
		env := setupCollectionTest(t)
		artwork := env.seedArtwork(t, 101, "Water Lilies")

		collection, err := env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID: artwork.ID,
			Title:     "monet",
		})
		require.NoError(t, err)
		assert.Equal(t, "monet", collection.Title)

		works, err := env.collections.GetArtworks(ctx, env.user.ID, collection.ID)
		require.NoError(t, err)
		require.Len(t, works, 1)
		assert.Equal(t, int64(101), works[0].ExternalID)
	})

	t.Run("reuses an existing collection with the same title", func(t *testing.T) {
		env := setupCollectionTest(t)
		first := env.seedArtwork(t, 101, "Water Lilies")
		second := env.seedArtwork(t, 102, "Haystacks")

		c1, err := env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID: first.ID, Title: "monet",
		})
		require.NoError(t, err)
		c2, err := env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID: second.ID, Title: "monet",
		})
		require.NoError(t, err)
		assert.Equal(t, c1.ID, c2.ID)

		works, err := env.collections.GetArtworks(ctx, env.user.ID, c1.ID)
		require.NoError(t, err)
		assert.Len(t, works, 2)
	})

	t.Run("saving the same artwork twice is a no-op", func(t *testing.T) {
		env := setupCollectionTest(t)
		artwork := env.seedArtwork(t, 101, "Water Lilies")
		req := &models.AddToCollectionRequest{ArtworkID: artwork.ID, Title: "monet"}

		collection, err := env.collections.AddToCollection(ctx, env.user.ID, req)
		require.NoError(t, err)
		_, err = env.collections.AddToCollection(ctx, env.user.ID, req)
		require.NoError(t, err)

		works, err := env.collections.GetArtworks(ctx, env.user.ID, collection.ID)
		require.NoError(t, err)
		assert.Len(t, works, 1)
	})

	t.Run("saves into an existing collection by ID", func(t *testing.T) {
		env := setupCollectionTest(t)
		artwork := env.seedArtwork(t, 101, "Water Lilies")

		collection, err := env.collections.CreateCollection(ctx, env.user.ID, "favorites")
		require.NoError(t, err)

		_, err = env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID:    artwork.ID,
			CollectionID: collection.ID,
		})
		require.NoError(t, err)

		works, err := env.collections.GetArtworks(ctx, env.user.ID, collection.ID)
		require.NoError(t, err)
		assert.Len(t, works, 1)
	})

	t.Run("rejects saving into another user's collection", func(t *testing.T) {
		env := setupCollectionTest(t)
		artwork := env.seedArtwork(t, 101, "Water Lilies")

		collection, err := env.collections.CreateCollection(ctx, env.other.ID, "theirs")
		require.NoError(t, err)

		_, err = env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID:    artwork.ID,
			CollectionID: collection.ID,
		})
		assert.ErrorIs(t, err, models.ErrCollectionAccessDenied)
	})

	t.Run("rejects an unknown artwork", func(t *testing.T) {
		env := setupCollectionTest(t)

		_, err := env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID: "no-such-artwork",
			Title:     "monet",
		})
		assert.ErrorIs(t, err, models.ErrArtworkNotFound)
	})
}

func TestCollectionService_RemoveFromCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the artwork and sweeps it when unreferenced", func(t *testing.T) {
		env := setupCollectionTest(t)
		artwork := env.seedArtwork(t, 101, "Water Lilies")

		collection, err := env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID: artwork.ID, Title: "monet",
		})
		require.NoError(t, err)

		require.NoError(t, env.collections.RemoveFromCollection(ctx, env.user.ID, collection.ID, artwork.ID))

		works, err := env.collections.GetArtworks(ctx, env.user.ID, collection.ID)
		require.NoError(t, err)
		assert.Empty(t, works)
		assert.Equal(t, 0, countRows(t, env.db, "artworks"))
	})

	t.Run("keeps the artwork while another collection references it", func(t *testing.T) {
		env := setupCollectionTest(t)
		artwork := env.seedArtwork(t, 101, "Water Lilies")

		first, err := env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID: artwork.ID, Title: "monet",
		})
		require.NoError(t, err)
		_, err = env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID: artwork.ID, Title: "favorites",
		})
		require.NoError(t, err)

		require.NoError(t, env.collections.RemoveFromCollection(ctx, env.user.ID, first.ID, artwork.ID))

		assert.Equal(t, 1, countRows(t, env.db, "artworks"))
	})

	t.Run("rejects removing an artwork that is not in the collection", func(t *testing.T) {
		env := setupCollectionTest(t)
		artwork := env.seedArtwork(t, 101, "Water Lilies")

		collection, err := env.collections.CreateCollection(ctx, env.user.ID, "empty")
		require.NoError(t, err)

		err = env.collections.RemoveFromCollection(ctx, env.user.ID, collection.ID, artwork.ID)
		assert.ErrorIs(t, err, models.ErrArtworkNotFound)
	})
}

func TestCollectionService_DeleteCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the collection and sweeps its artworks", func(t *testing.T) {
		env := setupCollectionTest(t)
		artwork := env.seedArtwork(t, 101, "Water Lilies")

		collection, err := env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID: artwork.ID, Title: "monet",
		})
		require.NoError(t, err)

		require.NoError(t, env.collections.DeleteCollection(ctx, env.user.ID, collection.ID))

		assert.Equal(t, 0, countRows(t, env.db, "collections"))
		assert.Equal(t, 0, countRows(t, env.db, "collected_works"))
		assert.Equal(t, 0, countRows(t, env.db, "artworks"))
	})

	t.Run("cascades and sweeps on a fresh pooled connection", func(t *testing.T) {
		env := setupCollectionTest(t)
		artwork := env.seedArtwork(t, 101, "Water Lilies")

		collection, err := env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
			ArtworkID: artwork.ID, Title: "monet",
		})
		require.NoError(t, err)

		// Hold the connection the schema was created on so the delete
		// below has to run on a different pooled connection. Foreign
		// keys must still be enforced there for the membership cascade.
		pinned, err := env.db.Conn(ctx)
		require.NoError(t, err)
		defer pinned.Close()

		var fkEnabled int
		spare, err := env.db.Conn(ctx)
		require.NoError(t, err)
		require.NoError(t, spare.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fkEnabled))
		require.NoError(t, spare.Close())
		assert.Equal(t, 1, fkEnabled)

		require.NoError(t, env.collections.DeleteCollection(ctx, env.user.ID, collection.ID))

		assert.Equal(t, 0, countRows(t, env.db, "collected_works"))
		assert.Equal(t, 0, countRows(t, env.db, "artworks"))
	})

	t.Run("rejects deleting another user's collection", func(t *testing.T) {
		env := setupCollectionTest(t)

		collection, err := env.collections.CreateCollection(ctx, env.other.ID, "theirs")
		require.NoError(t, err)

		err = env.collections.DeleteCollection(ctx, env.user.ID, collection.ID)
		assert.ErrorIs(t, err, models.ErrCollectionAccessDenied)
	})

	t.Run("rejects deleting a missing collection", func(t *testing.T) {
		env := setupCollectionTest(t)

		err := env.collections.DeleteCollection(ctx, env.user.ID, "no-such-collection")
		assert.ErrorIs(t, err, models.ErrCollectionNotFound)
	})
}

func TestCollectionService_ListCollections(t *testing.T) {
	ctx := context.Background()
	env := setupCollectionTest(t)
	artwork := env.seedArtwork(t, 101, "Water Lilies")

	_, err := env.collections.CreateCollection(ctx, env.user.ID, "empty")
	require.NoError(t, err)
	_, err = env.collections.AddToCollection(ctx, env.user.ID, &models.AddToCollectionRequest{
		ArtworkID: artwork.ID, Title: "monet",
	})
	require.NoError(t, err)
	_, err = env.collections.CreateCollection(ctx, env.other.ID, "not mine")
	require.NoError(t, err)

	collections, err := env.collections.ListCollections(ctx, env.user.ID)
	require.NoError(t, err)
	require.Len(t, collections, 2)

	byTitle := make(map[string]int)
	for _, c := range collections {
		byTitle[c.Title] = c.WorkCount
	}
	assert.Equal(t, 0, byTitle["empty"])
	assert.Equal(t, 1, byTitle["monet"])
}
