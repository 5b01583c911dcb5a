package repository

import (
	"context"

	"github.com/artsearch/server/internal/models"
)

// CollectedWorkRepository implements CollectedWorkRepo for PostgreSQL/SQLite
type CollectedWorkRepository struct {
	db DBTX
}

// NewCollectedWorkRepository creates a new CollectedWorkRepository
func NewCollectedWorkRepository(db DBTX) *CollectedWorkRepository {
	return &CollectedWorkRepository{db: db}
}

func (r *CollectedWorkRepository) Exists(ctx context.Context, userID, collectionID, artworkID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM collected_works
			  WHERE user_id = $1 AND collection_id = $2 AND artwork_id = $3)`
	err := r.db.QueryRowContext(ctx, query, userID, collectionID, artworkID).Scan(&exists)
	return exists, err
}

// Add inserts a membership row. The conflict clause keeps the insert
// idempotent for the same (user, collection, artwork) triple.
func (r *CollectedWorkRepository) Add(ctx context.Context, work *models.CollectedWork) error {
	query := `INSERT INTO collected_works (id, user_id, artwork_id, collection_id, added_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_id, collection_id, artwork_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		work.ID, work.UserID, work.ArtworkID, work.CollectionID, work.AddedAt,
	)
	return err
}

func (r *CollectedWorkRepository) Remove(ctx context.Context, userID, collectionID, artworkID string) error {
	query := `DELETE FROM collected_works
			  WHERE user_id = $1 AND collection_id = $2 AND artwork_id = $3`
	_, err := r.db.ExecContext(ctx, query, userID, collectionID, artworkID)
	return err
}

// GetArtworksForCollection returns the member artworks of a collection,
// oldest saved first.
func (r *CollectedWorkRepository) GetArtworksForCollection(ctx context.Context, userID, collectionID string) ([]*models.Artwork, error) {
	query := `SELECT a.id, a.external_id, a.title, a.artwork_page_url, a.alt_text,
			  a.image_url, a.artist_info, a.date_info, a.created_at
			  FROM artworks a
			  INNER JOIN collected_works cw ON cw.artwork_id = a.id
			  WHERE cw.user_id = $1 AND cw.collection_id = $2
			  ORDER BY cw.added_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, collectionID)
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
