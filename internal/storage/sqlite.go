package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Tiliavir/flex/internal/ledger"
)

// sqliteMigrations are applied in order on open; each is idempotent.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS ledgers (
		name       TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}

// SQLiteStore keeps every ledger as one row holding its JSON encoding.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens or creates the database at path and applies migrations.
// ":memory:" opens a private in-memory database.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage error opening %s: %w", path, err)
	}
	// One connection: keeps :memory: databases shared and serialises writers.
	db.SetMaxOpenConns(1)
	for _, stmt := range sqliteMigrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage error migrating %s: %w", path, err)
		}
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledgers WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage error reading %q: %w", name, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*ledger.Ledger, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM ledgers WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.NotInitialized(name)
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %q: %w", name, err)
	}
	var l ledger.Ledger
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		return nil, fmt.Errorf("corrupt ledger %q: %w", name, err)
	}
	s.logger.Debug("ledger loaded", "project", name, "entries", l.Len())
	return &l, nil
}

func (s *SQLiteStore) Save(ctx context.Context, l *ledger.Ledger) error {
	if err := ValidateName(l.Name()); err != nil {
		return err
	}
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledgers (name, start_date, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			start_date = excluded.start_date,
			payload    = excluded.payload,
			updated_at = excluded.updated_at`,
		l.Name(), l.StartDate().String(), string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storage error writing %q: %w", l.Name(), err)
	}
	s.logger.Debug("ledger saved", "project", l.Name())
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM ledgers WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("storage error deleting %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage error deleting %q: %w", name, err)
	}
	if n == 0 {
		return ledger.NotInitialized(name)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM ledgers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("storage error listing ledgers: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("storage error listing ledgers: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
