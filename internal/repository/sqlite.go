package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes a SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	// foreign_keys is a per-connection pragma; setting it in the DSN
	// makes the driver apply it on every pooled connection, so cascades
	// hold no matter which connection serves a statement.
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// Create tables
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- Users table (identity only; registration lives elsewhere)
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		display_name TEXT NOT NULL,
		api_key_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_users_api_key_hash ON users(api_key_hash);

	-- Active search sessions: at most one per user
	CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		term TEXT NOT NULL,
		total_pages INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Cached artwork rows from the remote catalog
	CREATE TABLE IF NOT EXISTS artworks (
		id TEXT PRIMARY KEY,
		external_id INTEGER UNIQUE NOT NULL,
		title TEXT NOT NULL,
		artwork_page_url TEXT NOT NULL,
		alt_text TEXT,
		image_url TEXT,
		artist_info TEXT,
		date_info TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_artworks_external_id ON artworks(external_id);

	-- Page index: which artworks appear on which page of a search
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

	-- Collections table
	CREATE TABLE IF NOT EXISTS collections (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, title)
	);

	CREATE INDEX IF NOT EXISTS idx_collections_user_id ON collections(user_id);

	-- Collected works (junction table)
	CREATE TABLE IF NOT EXISTS collected_works (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		artwork_id TEXT NOT NULL REFERENCES artworks(id),
		collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, collection_id, artwork_id)
	);

	CREATE INDEX IF NOT EXISTS idx_collected_works_collection_id ON collected_works(collection_id);
	CREATE INDEX IF NOT EXISTS idx_collected_works_artwork_id ON collected_works(artwork_id);
	`

	_, err := db.Exec(schema)
	return err
}
