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

// SearchService manages search sessions and the cached page index.
// Fetched pages are written once and reread from the local store; the
// remote catalog is only consulted for pages not yet cached.
type SearchService struct {
	db          *sql.DB
	searchRepo  repository.SearchRepo
	pageRepo    repository.SearchPageRepo
	artworkRepo repository.ArtworkRepo
	gateway     SearchGateway
	metrics     *observability.SearchMetrics
	logger      *observability.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(
	db *sql.DB,
	searchRepo repository.SearchRepo,
	pageRepo repository.SearchPageRepo,
	artworkRepo repository.ArtworkRepo,
	gateway SearchGateway,
) *SearchService {
	return &SearchService{
		db:          db,
		searchRepo:  searchRepo,
		pageRepo:    pageRepo,
		artworkRepo: artworkRepo,
		gateway:     gateway,
		logger:      observability.GetLogger().WithField("component", "search_service"),
	}
}

// SetMetrics attaches business metrics recording
func (s *SearchService) SetMetrics(m *observability.SearchMetrics) {
	s.metrics = m
}

// ActiveSearch returns the user's current search session, or nil if none exists
func (s *SearchService) ActiveSearch(ctx context.Context, userID string) (*models.Search, error) {
	return s.searchRepo.GetByUser(ctx, userID)
}

// ResolvePage returns one page of results for term, reading from the
// local page index when the page was fetched before and consulting the
// remote catalog otherwise. A user has at most one search session; a
// request for a different term while one is active returns
// models.ErrActiveSearchExists. Page numbers beyond the session's page
// count resolve to the last page.
func (s *SearchService) ResolvePage(ctx context.Context, userID, term string, page int) (*models.PageResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "search", "resolve_page")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, models.ErrEmptyTerm
	}
	if page < 1 {
		return nil, models.ErrInvalidPage
	}
	span.SetAttributes(observability.UserID(userID), observability.SearchTerm(term), observability.PageNumber(page))

	active, err := s.searchRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load search session: %w", err)
	}
	if active != nil && active.Term != term {
		return nil, models.ErrActiveSearchExists
	}

	if active != nil {
		if page > active.TotalPages {
			page = active.TotalPages
		}
		cached, err := s.pageRepo.HasPage(ctx, active.ID, page)
		if err != nil {
			return nil, fmt.Errorf("failed to check page index: %w", err)
		}
		if cached {
			s.recordLookup(ctx, true)
			return s.readPage(ctx, active, page)
		}
	}
	s.recordLookup(ctx, false)

	result, err := s.fetchPage(ctx, term, page)
	if err != nil {
		return nil, err
	}

	if active == nil {
		active, err = models.NewSearch(userID, term, result.TotalPages)
		if err != nil {
			return nil, err
		}
		// The upstream page count is only learned on the first fetch,
		// so the clamp can kick in after the fact for a deep first page.
		if page > active.TotalPages {
			page = active.TotalPages
			result, err = s.fetchPage(ctx, term, page)
			if err != nil {
				return nil, err
			}
		}
		if err := s.storePage(ctx, active, page, result.Items, true); err != nil {
			return nil, err
		}
	} else {
		if err := s.storePage(ctx, active, page, result.Items, false); err != nil {
			return nil, err
		}
	}

	observability.SetSuccess(span)
	return s.readPage(ctx, active, page)
}

// ClearSearch removes the user's search session and its page index,
// then discards artwork rows no longer referenced anywhere. Clearing
// when no session exists is a no-op.
func (s *SearchService) ClearSearch(ctx context.Context, userID string) error {
	ctx, span := observability.StartServiceSpan(ctx, "search", "clear_search")
	defer span.End()
	span.SetAttributes(observability.UserID(userID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txSearchRepo := repository.NewSearchRepository(tx)
	txPageRepo := repository.NewSearchPageRepository(tx)

	active, err := txSearchRepo.GetByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load search session: %w", err)
	}
	if active == nil {
		return nil
	}

	if err := txPageRepo.DeleteBySearch(ctx, active.ID); err != nil {
		return fmt.Errorf("failed to delete page index: %w", err)
	}
	if err := txSearchRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete search session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.WithContext(ctx).Infof("Cleared search %q for user %s", active.Term, userID)
	s.sweep(ctx)

	observability.SetSuccess(span)
	return nil
}

// fetchPage asks the remote catalog for one page of results
func (s *SearchService) fetchPage(ctx context.Context, term string, page int) (*SearchResult, error) {
	result, err := s.gateway.SearchPage(ctx, term, page)
	if s.metrics != nil {
		s.metrics.RecordGatewayCall(ctx, "search", err == nil)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// storePage persists fetched results in a single transaction: the
// session row if new, the artwork rows, and the page index entries.
// Nothing is written when any step fails.
func (s *SearchService) storePage(ctx context.Context, search *models.Search, page int, items []SearchItem, newSearch bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txSearchRepo := repository.NewSearchRepository(tx)
	txPageRepo := repository.NewSearchPageRepository(tx)
	txArtworkRepo := repository.NewArtworkRepository(tx)

	if newSearch {
		if err := txSearchRepo.Add(ctx, search); err != nil {
			return fmt.Errorf("failed to store search session: %w", err)
		}
	}

	entries := make([]*models.SearchPage, 0, len(items))
	for i, item := range items {
		artwork, err := models.NewArtwork(item.ExternalID, item.Title)
		if err != nil {
			s.logger.WithContext(ctx).Warnf("Skipping invalid result on page %d: %v", page, err)
			continue
		}
		canonical, err := txArtworkRepo.UpsertIfAbsent(ctx, artwork)
		if err != nil {
			return fmt.Errorf("failed to store artwork %d: %w", item.ExternalID, err)
		}
		entries = append(entries, models.NewSearchPage(search.ID, canonical.ID, page, i))
	}

	// A page with no results writes no index entries, so HasPage stays
	// false for it and a repeat request fetches it again.
	if err := txPageRepo.AddEntries(ctx, entries); err != nil {
		return fmt.Errorf("failed to store page index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.WithContext(ctx).Debugf("Cached page %d of %q (%d artworks)", page, search.Term, len(entries))
	return nil
}

// readPage assembles a PageResult from the local store
func (s *SearchService) readPage(ctx context.Context, search *models.Search, page int) (*models.PageResult, error) {
	artworks, err := s.pageRepo.GetArtworksForPage(ctx, search.ID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return &models.PageResult{
		Term:       search.Term,
		PageNumber: page,
		TotalPages: search.TotalPages,
		Artworks:   artworks,
	}, nil
}

func (s *SearchService) recordLookup(ctx context.Context, hit bool) {
	if s.metrics != nil {
		s.metrics.RecordPageLookup(ctx, hit)
	}
}

// sweep discards artwork rows referenced by no page index entry and no
// collection. Failures are logged, not propagated: the rows are garbage
// and a later sweep will get them.
func (s *SearchService) sweep(ctx context.Context) {
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
