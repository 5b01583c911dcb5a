package repository

import (
	"context"

	"github.com/artsearch/server/internal/models"
)

// SearchPageRepository implements SearchPageRepo for PostgreSQL/SQLite
type SearchPageRepository struct {
	db DBTX
}

// NewSearchPageRepository creates a new SearchPageRepository
func NewSearchPageRepository(db DBTX) *SearchPageRepository {
	return &SearchPageRepository{db: db}
}

func (r *SearchPageRepository) HasPage(ctx context.Context, searchID string, pageNumber int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM search_pages WHERE search_id = $1 AND page_number = $2)`
	err := r.db.QueryRowContext(ctx, query, searchID, pageNumber).Scan(&exists)
	return exists, err
}

// AddEntries writes the page index entries for one fetched page. The
// conflict clause makes a duplicate populate a no-op: entries are
// immutable once created.
func (r *SearchPageRepository) AddEntries(ctx context.Context, entries []*models.SearchPage) error {
	query := `INSERT INTO search_pages (id, search_id, artwork_id, page_number, position)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (search_id, page_number, artwork_id) DO NOTHING`

	for _, e := range entries {
		if _, err := r.db.ExecContext(ctx, query, e.ID, e.SearchID, e.ArtworkID, e.PageNumber, e.Position); err != nil {
			return err
		}
	}
	return nil
}

// GetArtworksForPage returns the cached artworks for one page of a
// search, in their original result order.
func (r *SearchPageRepository) GetArtworksForPage(ctx context.Context, searchID string, pageNumber int) ([]*models.Artwork, error) {
	query := `SELECT a.id, a.external_id, a.title, a.artwork_page_url, a.alt_text,
			  a.image_url, a.artist_info, a.date_info, a.created_at
			  FROM artworks a
			  INNER JOIN search_pages sp ON sp.artwork_id = a.id
			  WHERE sp.search_id = $1 AND sp.page_number = $2
			  ORDER BY sp.position ASC`

	rows, err := r.db.QueryContext(ctx, query, searchID, pageNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artworks []*models.Artwork
	for rows.Next() {
		var a models.Artwork
		if err := rows.Scan(
			&a.ID, &a.ExternalID, &a.Title, &a.ArtworkPageURL, &a.AltText,
			&a.ImageURL, &a.ArtistInfo, &a.DateInfo, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		artworks = append(artworks, &a)
	}
	return artworks, rows.Err()
}

func (r *SearchPageRepository) DeleteBySearch(ctx context.Context, searchID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM search_pages WHERE search_id = $1`, searchID)
	return err
}
