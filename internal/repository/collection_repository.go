package repository

import (
	"context"
	"database/sql"

	"github.com/artsearch/server/internal/models"
)

// CollectionRepository implements CollectionRepo for PostgreSQL/SQLite
type CollectionRepository struct {
	db DBTX
}

// NewCollectionRepository creates a new CollectionRepository
func NewCollectionRepository(db DBTX) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	query := `SELECT id, user_id, title, created_at FROM collections WHERE id = $1`

	var c models.Collection
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepository) GetByUserAndTitle(ctx context.Context, userID, title string) (*models.Collection, error) {
	query := `SELECT id, user_id, title, created_at FROM collections
			  WHERE user_id = $1 AND title = $2`

	var c models.Collection
	err := r.db.QueryRowContext(ctx, query, userID, title).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepository) GetAllForUser(ctx context.Context, userID string) ([]*models.Collection, error) {
	query := `SELECT c.id, c.user_id, c.title, c.created_at,
			  (SELECT COUNT(*) FROM collected_works WHERE collection_id = c.id) as work_count
			  FROM collections c WHERE c.user_id = $1 ORDER BY c.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []*models.Collection
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.WorkCount); err != nil {
			return nil, err
		}
		collections = append(collections, &c)
	}
	return collections, rows.Err()
}

func (r *CollectionRepository) Add(ctx context.Context, collection *models.Collection) error {
	query := `INSERT INTO collections (id, user_id, title, created_at)
			  VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		collection.ID, collection.UserID, collection.Title, collection.CreatedAt,
	)
	return err
}

// Delete removes the collection; membership rows go with it via the
// foreign key cascade.
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	return err
}
