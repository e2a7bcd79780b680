package data

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// Store is the local DuckDB database backing user settings and the saved
// library. It is a plain key/value + bookkeeping collaborator; all reading
// state lives in the in-memory caches and on the server.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key VARCHAR PRIMARY KEY,
			value VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS library (
			manga_id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			cover_url VARCHAR,
			content_rating INTEGER NOT NULL DEFAULT 0,
			added_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetSetting returns the stored value for key, or def when absent.
func (s *Store) GetSetting(key, def string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores value under key. An empty value removes the key.
func (s *Store) SetSetting(key, value string) error {
	if value == "" {
		_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// LibraryEntry is a manga the user has saved locally.
type LibraryEntry struct {
	MangaID       string
	Title         string
	CoverURL      string
	ContentRating ContentRating
	AddedAt       time.Time
}

func (s *Store) SaveToLibrary(entry LibraryEntry) error {
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO library (manga_id, title, cover_url, content_rating, added_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (manga_id) DO UPDATE SET
			title = excluded.title,
			cover_url = excluded.cover_url,
			content_rating = excluded.content_rating`,
		entry.MangaID, entry.Title, entry.CoverURL, int(entry.ContentRating), entry.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to save manga %s: %w", entry.MangaID, err)
	}
	return nil
}

func (s *Store) ListLibrary() ([]LibraryEntry, error) {
	rows, err := s.db.Query(
		`SELECT manga_id, title, COALESCE(cover_url, ''), content_rating, added_at
		 FROM library ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	defer rows.Close()

	var entries []LibraryEntry
	for rows.Next() {
		var e LibraryEntry
		var rating int
		if err := rows.Scan(&e.MangaID, &e.Title, &e.CoverURL, &rating, &e.AddedAt); err != nil {
			return nil, err
		}
		e.ContentRating = ContentRating(rating)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) RemoveFromLibrary(mangaID string) error {
	_, err := s.db.Exec(`DELETE FROM library WHERE manga_id = ?`, mangaID)
	return err
}

// LibraryIDs returns the manga IDs of every saved entry, used to seed the
// batch progress cache.
func (s *Store) LibraryIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT manga_id FROM library`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
