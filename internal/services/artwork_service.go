package services

import (
	"context"
	"fmt"

	"github.com/artsearch/server/internal/models"
	"github.com/artsearch/server/internal/observability"
	"github.com/artsearch/server/internal/repository"
)

// ArtworkService handles artwork detail lookups and enrichment
type ArtworkService struct {
	artworkRepo repository.ArtworkRepo
	gateway     DetailGateway
	metrics     *observability.SearchMetrics
	logger      *observability.Logger
}

// NewArtworkService creates a new ArtworkService
func NewArtworkService(artworkRepo repository.ArtworkRepo, gateway DetailGateway) *ArtworkService {
	return &ArtworkService{
		artworkRepo: artworkRepo,
		gateway:     gateway,
		logger:      observability.GetLogger().WithField("component", "artwork_service"),
	}
}

// SetMetrics attaches business metrics recording
func (s *ArtworkService) SetMetrics(m *observability.SearchMetrics) {
	s.metrics = m
}

// Enrich returns the artwork with externalID, filling in the detail
// fields (image URL, artist, date, alt text) from the remote catalog on
// first access. An already enriched row is returned as is. When the
// remote lookup fails the stored row is returned unmodified; enrichment
// is retried on the next access.
func (s *ArtworkService) Enrich(ctx context.Context, externalID int64) (*models.Artwork, error) {
	ctx, span := observability.StartServiceSpan(ctx, "artwork", "enrich")
	defer span.End()
	span.SetAttributes(observability.ArtworkID(externalID))

	artwork, err := s.artworkRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load artwork: %w", err)
	}
	if artwork == nil {
		return nil, models.ErrArtworkNotFound
	}
	if artwork.IsEnriched() {
		observability.SetSuccess(span)
		return artwork, nil
	}

	detail, err := s.gateway.ArtworkDetail(ctx, externalID)
	if s.metrics != nil {
		s.metrics.RecordGatewayCall(ctx, "detail", err == nil)
	}
	if err != nil {
		s.logger.WithContext(ctx).Warnf("Enrichment failed for artwork %d, serving stored row: %v", externalID, err)
		return artwork, nil
	}

	var imageURL *string
	if composed := models.ComposeImageURL(detail.IIIFBaseURL, detail.ImageID); composed != "" {
		imageURL = &composed
	}

	if err := s.artworkRepo.UpdateDetails(ctx, externalID, imageURL, detail.ArtistInfo, detail.DateInfo, detail.AltText); err != nil {
		return nil, fmt.Errorf("failed to store artwork details: %w", err)
	}

	enriched, err := s.artworkRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload artwork: %w", err)
	}
	if enriched == nil {
		return nil, models.ErrArtworkNotFound
	}

	observability.SetSuccess(span)
	return enriched, nil
}
