package credential

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS credentials (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updatedAt REAL NOT NULL
	);
`

// SQLite stores the credential in a local SQLite file.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLite opens (creating if needed) the credential database at path.
func OpenSQLite(path string, log zerolog.Logger) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, log: log}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save replaces any stored credential.
func (s *SQLite) Save(token string) {
	_, err := s.db.Exec(`
		INSERT INTO credentials (name, value, updatedAt) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updatedAt = excluded.updatedAt
	`, Key, token, unixNow())
	if err != nil {
		s.log.Warn().Err(err).Msg("save credential")
	}
}

// Read returns the stored credential, if any.
func (s *SQLite) Read() (string, bool) {
	var token string
	err := s.db.QueryRow(`SELECT value FROM credentials WHERE name = ?`, Key).Scan(&token)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn().Err(err).Msg("read credential")
		}
		return "", false
	}
	return token, true
}

// Clear removes the stored credential.
func (s *SQLite) Clear() {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE name = ?`, Key); err != nil {
		s.log.Warn().Err(err).Msg("clear credential")
	}
}

func unixNow() float64 {
	now := time.Now()
	return float64(now.UnixNano()) / 1e9
}
