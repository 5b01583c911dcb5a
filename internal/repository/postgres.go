package repository

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// NewPostgresDB creates and initializes a PostgreSQL database connection
func NewPostgresDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createPostgresTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		display_name TEXT NOT NULL,
		api_key_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_users_api_key_hash ON users(api_key_hash);

	CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		term TEXT NOT NULL,
		total_pages INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS artworks (
		id TEXT PRIMARY KEY,
		external_id BIGINT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		artwork_page_url TEXT NOT NULL,
		alt_text TEXT,
		image_url TEXT,
		artist_info TEXT,
		date_info TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_artworks_external_id ON artworks(external_id);

	CREATE TABLE IF NOT EXISTS search_pages (
		id TEXT PRIMARY KEY,
		search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
		artwork_id TEXT NOT NULL REFERENCES artworks(id),
		page_number INTEGER NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		UNIQUE(search_id, page_number, artwork_id)
	);

	CREATE INDEX IF NOT EXISTS idx_search_pages_search_id ON search_pages(search_id);
	CREATE INDEX IF NOT EXISTS idx_search_pages_artwork_id ON search_pages(artwork_id);

	CREATE TABLE IF NOT EXISTS collections (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, title)
	);

	CREATE INDEX IF NOT EXISTS idx_collections_user_id ON collections(user_id);

	CREATE TABLE IF NOT EXISTS collected_works (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		artwork_id TEXT NOT NULL REFERENCES artworks(id),
		collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		added_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, collection_id, artwork_id)
	);

	CREATE INDEX IF NOT EXISTS idx_collected_works_collection_id ON collected_works(collection_id);
	CREATE INDEX IF NOT EXISTS idx_collected_works_artwork_id ON collected_works(artwork_id);
	`

	_, err := db.Exec(schema)
	return err
}
