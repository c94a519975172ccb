// Package storage persists project ledgers. Every backend stores the ledger's
// JSON encoding verbatim, so a save/load cycle reproduces it exactly.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/timecalc"
)

// Store loads and saves ledgers keyed by project name.
type Store interface {
	// Exists reports whether a ledger for name has been saved.
	Exists(ctx context.Context, name string) (bool, error)
	// Load returns the ledger for name, or an error wrapping
	// ledger.ErrNotInitialized when there is none.
	Load(ctx context.Context, name string) (*ledger.Ledger, error)
	// Save creates or replaces the ledger under l.Name().
	Save(ctx context.Context, l *ledger.Ledger) error
	// Delete removes the ledger for name, wrapping ledger.ErrNotInitialized
	// when there is none.
	Delete(ctx context.Context, name string) error
	// List returns all project names in lexical order.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// ErrInvalidName is returned for project names that cannot be used as keys.
var ErrInvalidName = errors.New("invalid project name")

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// ValidateName rejects names that are empty, start with a dot, or contain
// characters other than letters, digits, '.', '_' and '-'.
func ValidateName(name string) error {
	if len(name) > 128 || !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Open returns the Store for backend rooted at dataDir.
func Open(backend, dataDir string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch backend {
	case "", "json":
		return NewFileStore(filepath.Join(dataDir, "logs"), logger), nil
	case "buntdb":
		return OpenBunt(filepath.Join(dataDir, "flex.buntdb"), logger)
	case "sqlite":
		return OpenSQLite(filepath.Join(dataDir, "flex.db"), logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Create initialises and saves an empty ledger for name, failing with
// ledger.ErrAlreadyExists if one is present.
func Create(ctx context.Context, s Store, name string, start timecalc.Date) (*ledger.Ledger, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	l, err := ledger.Init(name, start, exists)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update loads the ledger for name, applies fn and saves the result. Nothing
// is saved when fn returns an error.
func Update(ctx context.Context, s Store, name string, fn func(*ledger.Ledger) error) (*ledger.Ledger, error) {
	l, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := fn(l); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}
