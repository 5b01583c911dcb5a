package repository

import (
	"context"
	"database/sql"

	"github.com/artsearch/server/internal/models"
)

const artworkColumns = `id, external_id, title, artwork_page_url, alt_text,
			  image_url, artist_info, date_info, created_at`

// ArtworkRepository implements ArtworkRepo for PostgreSQL/SQLite
type ArtworkRepository struct {
	db DBTX
}

// NewArtworkRepository creates a new ArtworkRepository
func NewArtworkRepository(db DBTX) *ArtworkRepository {
	return &ArtworkRepository{db: db}
}

func (r *ArtworkRepository) GetByID(ctx context.Context, id string) (*models.Artwork, error) {
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *ArtworkRepository) GetByExternalID(ctx context.Context, externalID int64) (*models.Artwork, error) {
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE external_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, externalID))
}

// UpsertIfAbsent inserts the artwork unless the external id is already
// cached, then returns the canonical row. Existing rows are never
// overwritten, so titles seen in earlier searches stay stable.
func (r *ArtworkRepository) UpsertIfAbsent(ctx context.Context, artwork *models.Artwork) (*models.Artwork, error) {
	query := `INSERT INTO artworks (id, external_id, title, artwork_page_url, created_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (external_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		artwork.ID, artwork.ExternalID, artwork.Title, artwork.ArtworkPageURL, artwork.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return r.GetByExternalID(ctx, artwork.ExternalID)
}

// UpdateDetails fills the enrichment columns in place. Nil values are
// written as NULL, not defaulted.
func (r *ArtworkRepository) UpdateDetails(ctx context.Context, externalID int64, imageURL, artistInfo, dateInfo, altText *string) error {
	query := `UPDATE artworks SET image_url = $1, artist_info = $2, date_info = $3, alt_text = $4
			  WHERE external_id = $5`

	_, err := r.db.ExecContext(ctx, query, imageURL, artistInfo, dateInfo, altText, externalID)
	return err
}

// SweepUnreferenced removes artworks no longer held by any search page or
// collected work, in a single pass over the table.
func (r *ArtworkRepository) SweepUnreferenced(ctx context.Context) (int64, error) {
	query := `DELETE FROM artworks
			  WHERE id NOT IN (SELECT artwork_id FROM search_pages)
			  AND id NOT IN (SELECT artwork_id FROM collected_works)`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ArtworkRepository) scanOne(row *sql.Row) (*models.Artwork, error) {
	var a models.Artwork
	err := row.Scan(
		&a.ID, &a.ExternalID, &a.Title, &a.ArtworkPageURL, &a.AltText,
		&a.ImageURL, &a.ArtistInfo, &a.DateInfo, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
