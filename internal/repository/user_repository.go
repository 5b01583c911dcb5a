package repository

import (
	"context"
	"database/sql"

	"github.com/artsearch/server/internal/models"
)

// UserRepository implements UserRepo for PostgreSQL/SQLite
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, display_name, api_key_hash, created_at, is_active
			  FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*models.User, error) {
	query := `SELECT id, email, display_name, api_key_hash, created_at, is_active
			  FROM users WHERE api_key_hash = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, hash))
}

func (r *UserRepository) Add(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, display_name, api_key_hash, created_at, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.DisplayName, user.APIKeyHash, user.CreatedAt, user.IsActive,
	)
	return err
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.APIKeyHash, &u.CreatedAt, &u.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
