package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/buntdb"

	"github.com/Tiliavir/flex/internal/ledger"
)

const buntKeyPrefix = "ledger:"

// BuntStore keeps every ledger as one JSON value in a buntdb file.
type BuntStore struct {
	db     *buntdb.DB
	logger *slog.Logger
}

// OpenBunt opens or creates the buntdb file at path. ":memory:" opens an
// in-memory database.
func OpenBunt(path string, logger *slog.Logger) (*BuntStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage error opening %s: %w", path, err)
	}
	return &BuntStore{db: db, logger: logger}, nil
}

func buntKey(name string) string { return buntKeyPrefix + name }

func (s *BuntStore) Exists(_ context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	err := s.db.View(func(tx *buntdb.Tx) error {
		_, err := tx.Get(buntKey(name))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage error reading %q: %w", name, err)
	}
	return true, nil
}

func (s *BuntStore) Load(_ context.Context, name string) (*ledger.Ledger, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(buntKey(name))
		raw = v
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, ledger.NotInitialized(name)
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %q: %w", name, err)
	}
	var l ledger.Ledger
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return nil, fmt.Errorf("corrupt ledger %q: %w", name, err)
	}
	s.logger.Debug("ledger loaded", "project", name, "entries", l.Len())
	return &l, nil
}

func (s *BuntStore) Save(_ context.Context, l *ledger.Ledger) error {
	if err := ValidateName(l.Name()); err != nil {
		return err
	}
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	err = s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(buntKey(l.Name()), string(data), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("storage error writing %q: %w", l.Name(), err)
	}
	s.logger.Debug("ledger saved", "project", l.Name())
	return nil
}

func (s *BuntStore) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(buntKey(name))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return ledger.NotInitialized(name)
	}
	if err != nil {
		return fmt.Errorf("storage error deleting %q: %w", name, err)
	}
	return nil
}

func (s *BuntStore) List(_ context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(buntKeyPrefix+"*", func(key, _ string) bool {
			names = append(names, strings.TrimPrefix(key, buntKeyPrefix))
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("storage error listing ledgers: %w", err)
	}
	return names, nil
}

func (s *BuntStore) Close() error {
	return s.db.Close()
}
