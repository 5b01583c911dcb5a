package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/artsearch/server/internal/models"
	"github.com/artsearch/server/internal/observability"
	"github.com/artsearch/server/internal/repository"
)

// CollectionService handles saved-artwork collection business logic.
// Saving an artwork pins it: a collected row survives search clears and
// sweeps until its last collection membership is removed.
type CollectionService struct {
	db             *sql.DB
	collectionRepo repository.CollectionRepo
	workRepo       repository.CollectedWorkRepo
	artworkRepo    repository.ArtworkRepo
	metrics        *observability.SearchMetrics
	logger         *observability.Logger
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(
	db *sql.DB,
	collectionRepo repository.CollectionRepo,
	workRepo repository.CollectedWorkRepo,
	artworkRepo repository.ArtworkRepo,
) *CollectionService {
	return &CollectionService{
		db:             db,
		collectionRepo: collectionRepo,
		workRepo:       workRepo,
		artworkRepo:    artworkRepo,
		logger:         observability.GetLogger().WithField("component", "collection_service"),
	}
}

// SetMetrics attaches business metrics recording
func (s *CollectionService) SetMetrics(m *observability.SearchMetrics) {
	s.metrics = m
}

// CreateCollection creates a new empty collection. Titles are unique per
// user; a duplicate returns models.ErrCollectionTitleExists.
func (s *CollectionService) CreateCollection(ctx context.Context, userID, title string) (*models.Collection, error) {
	collection, err := models.NewCollection(userID, strings.TrimSpace(title))
	if err != nil {
		return nil, err
	}

	existing, err := s.collectionRepo.GetByUserAndTitle(ctx, userID, collection.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection title: %w", err)
	}
	if existing != nil {
		return nil, models.ErrCollectionTitleExists
	}

	if err := s.collectionRepo.Add(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	s.logger.WithContext(ctx).Infof("Created collection %q for user %s", collection.Title, userID)
	return collection, nil
}

// ListCollections returns the user's collections, newest first
func (s *CollectionService) ListCollections(ctx context.Context, userID string) ([]*models.Collection, error) {
	return s.collectionRepo.GetAllForUser(ctx, userID)
}

// GetArtworks returns the artworks saved in a collection, oldest first
func (s *CollectionService) GetArtworks(ctx context.Context, userID, collectionID string) ([]*models.Artwork, error) {
	if _, err := s.ownedCollection(ctx, userID, collectionID); err != nil {
		return nil, err
	}
	return s.workRepo.GetArtworksForCollection(ctx, userID, collectionID)
}

// AddToCollection saves an artwork into a collection. The target is
// either an existing collection by ID, or a collection resolved by
// title and created on first use. Saving an artwork that is already in
// the collection is a no-op.
func (s *CollectionService) AddToCollection(ctx context.Context, userID string, req *models.AddToCollectionRequest) (*models.Collection, error) {
	ctx, span := observability.StartServiceSpan(ctx, "collection", "add_work")
	defer span.End()
	span.SetAttributes(observability.UserID(userID))

	artwork, err := s.artworkRepo.GetByID(ctx, req.ArtworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load artwork: %w", err)
	}
	if artwork == nil {
		return nil, models.ErrArtworkNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txCollectionRepo := repository.NewCollectionRepository(tx)
	txWorkRepo := repository.NewCollectedWorkRepository(tx)

	var collection *models.Collection
	switch {
	case req.CollectionID != "":
		collection, err = txCollectionRepo.GetByID(ctx, req.CollectionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load collection: %w", err)
		}
		if collection == nil {
			return nil, models.ErrCollectionNotFound
		}
		if collection.UserID != userID {
			return nil, models.ErrCollectionAccessDenied
		}
	default:
		title := strings.TrimSpace(req.Title)
		collection, err = txCollectionRepo.GetByUserAndTitle(ctx, userID, title)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve collection: %w", err)
		}
		if collection == nil {
			collection, err = models.NewCollection(userID, title)
			if err != nil {
				return nil, err
			}
			if err := txCollectionRepo.Add(ctx, collection); err != nil {
				return nil, fmt.Errorf("failed to create collection: %w", err)
			}
		}
	}

	work := models.NewCollectedWork(userID, artwork.ID, collection.ID)
	if err := txWorkRepo.Add(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to save artwork: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordCollectionSave(ctx)
	}
	s.logger.WithContext(ctx).Infof("Saved artwork %d to collection %q", artwork.ExternalID, collection.Title)

	observability.SetSuccess(span)
	return collection, nil
}

// RemoveFromCollection removes one artwork from a collection, then
// discards the artwork row if nothing references it anymore.
func (s *CollectionService) RemoveFromCollection(ctx context.Context, userID, collectionID, artworkID string) error {
	if _, err := s.ownedCollection(ctx, userID, collectionID); err != nil {
		return err
	}

	exists, err := s.workRepo.Exists(ctx, userID, collectionID, artworkID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !exists {
		return models.ErrArtworkNotFound
	}

	if err := s.workRepo.Remove(ctx, userID, collectionID, artworkID); err != nil {
		return fmt.Errorf("failed to remove artwork: %w", err)
	}

	s.sweep(ctx)
	return nil
}

// DeleteCollection deletes a collection and its memberships, then
// discards artwork rows left unreferenced.
func (s *CollectionService) DeleteCollection(ctx context.Context, userID, collectionID string) error {
	if _, err := s.ownedCollection(ctx, userID, collectionID); err != nil {
		return err
	}

	if err := s.collectionRepo.Delete(ctx, collectionID); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	s.logger.WithContext(ctx).Infof("Deleted collection %s for user %s", collectionID, userID)
	s.sweep(ctx)
	return nil
}

// ownedCollection loads a collection and verifies ownership
func (s *CollectionService) ownedCollection(ctx context.Context, userID, collectionID string) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	if collection == nil {
		return nil, models.ErrCollectionNotFound
	}
	if collection.UserID != userID {
		return nil, models.ErrCollectionAccessDenied
	}
	return collection, nil
}

func (s *CollectionService) sweep(ctx context.Context) {
	removed, err := s.artworkRepo.SweepUnreferenced(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Warnf("Artwork sweep failed: %v", err)
		return
	}
	if removed > 0 {
		s.logger.WithContext(ctx).Infof("Swept %d unreferenced artworks", removed)
	}
	if s.metrics != nil {
		s.metrics.RecordSweep(ctx, removed)
	}
}
