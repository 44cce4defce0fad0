package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLite is a settings backend for installs that already ship a SQLite database.
type SQLite struct {
	kv

	db *sql.DB
}

func sqlitePath(dir string) string {
	return filepath.Join(dir, "settings.db")
}

// NewSQLite opens or creates a SQLite settings database at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't handle multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &SQLite{db: db}
	s.docs = s

	return s, nil
}

// Ping checks the database connection.
func (s *SQLite) Ping() error {
	return s.db.Ping()
}

func (s *SQLite) view(root string) ([]byte, error) {
	var value string

	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, root).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	return []byte(value), nil
}

func (s *SQLite) update(root string, fn func(doc []byte) ([]byte, error)) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		value   string
		current []byte
	)

	switch scanErr := tx.QueryRow(`SELECT value FROM settings WHERE key = ?`, root).Scan(&value); {
	case scanErr == nil:
		current = []byte(value)
	case !errors.Is(scanErr, sql.ErrNoRows):
		return fmt.Errorf("reading %s: %w", root, scanErr)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if next == nil {
		_, err = tx.Exec(`DELETE FROM settings WHERE key = ?`, root)
	} else {
		_, err = tx.Exec(`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			root, string(next), time.Now().UTC())
	}

	if err != nil {
		return fmt.Errorf("writing %s: %w", root, err)
	}

	return tx.Commit()
}

func (s *SQLite) close() error {
	return s.db.Close()
}
