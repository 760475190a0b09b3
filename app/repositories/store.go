package repositories

import (
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Store owns the badger handle shared by the repositories. It is opened once
// at process start and closed on shutdown.
type Store struct {
	db   *badger.DB
	path string
}

// Open opens or creates the badger database at path. logger may be nil to
// silence badger.
func Open(path string, logger badger.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	opts := badger.DefaultOptions(path).WithLogger(logger)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db at %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// OpenInMemory opens a throwaway in-memory database, for tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Path is the on-disk location, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Posts returns a post repository backed by the store.
func (s *Store) Posts() *BadgerPostRepository {
	return NewBadgerPostRepository(s.db)
}

// Users returns a user repository backed by the store.
func (s *Store) Users() *BadgerUserRepository {
	return NewBadgerUserRepository(s.db)
}

// Backup writes a full backup of the database to w.
func (s *Store) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}
	return nil
}

// Load restores a backup produced by Backup.
func (s *Store) Load(r io.Reader) error {
	if err := s.db.Load(r, 4); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
