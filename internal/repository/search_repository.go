package repository

import (
	"context"
	"database/sql"

	"github.com/artsearch/server/internal/models"
)

// SearchRepository implements SearchRepo for PostgreSQL/SQLite
type SearchRepository struct {
	db DBTX
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db DBTX) *SearchRepository {
	return &SearchRepository{db: db}
}

// GetByUser returns the user's active search, or nil if none exists.
func (r *SearchRepository) GetByUser(ctx context.Context, userID string) (*models.Search, error) {
	query := `SELECT id, user_id, term, total_pages, created_at
			  FROM searches WHERE user_id = $1`

	var s models.Search
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.Term, &s.TotalPages, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Add inserts the search. The UNIQUE constraint on user_id backs up the
// one-session-per-user invariant enforced at the service level.
func (r *SearchRepository) Add(ctx context.Context, search *models.Search) error {
	query := `INSERT INTO searches (id, user_id, term, total_pages, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		search.ID, search.UserID, search.Term, search.TotalPages, search.CreatedAt,
	)
	return err
}

func (r *SearchRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM searches WHERE user_id = $1`, userID)
	return err
}
