package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/alexanderramin/ganttagent/internal/agent"
	"github.com/alexanderramin/ganttagent/internal/db"
)

// LazyStore defers opening the history database until a command first
// records or reads an entry. Commands that never touch history leave the
// file alone.
type LazyStore struct {
	path string

	once     sync.Once
	database *sql.DB
	store    *Store
	err      error
}

var _ agent.Recorder = (*LazyStore)(nil)

// NewLazyStore returns a LazyStore backed by the SQLite file at path.
func NewLazyStore(path string) *LazyStore {
	return &LazyStore{path: path}
}

func (l *LazyStore) open() (*Store, error) {
	l.once.Do(func() {
		database, err := db.OpenDB(l.path)
		if err != nil {
			l.err = fmt.Errorf("opening history database: %w", err)
			return
		}
		l.database = database
		l.store = NewStore(database)
	})
	return l.store, l.err
}

// Record opens the database if needed and stores t.
func (l *LazyStore) Record(ctx context.Context, t agent.Translation) error {
	s, err := l.open()
	if err != nil {
		return err
	}
	return s.Record(ctx, t)
}

func (l *LazyStore) List(ctx context.Context, limit int) ([]*Entry, error) {
	s, err := l.open()
	if err != nil {
		return nil, err
	}
	return s.List(ctx, limit)
}

func (l *LazyStore) Get(ctx context.Context, idPrefix string) (*Entry, error) {
	s, err := l.open()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, idPrefix)
}

func (l *LazyStore) Prune(ctx context.Context, keep int) (int64, error) {
	s, err := l.open()
	if err != nil {
		return 0, err
	}
	return s.Prune(ctx, keep)
}

// Opened reports whether the database has been opened.
func (l *LazyStore) Opened() bool {
	return l.database != nil
}

// Close closes the database if it was opened.
func (l *LazyStore) Close() error {
	if l.database == nil {
		return nil
	}
	return l.database.Close()
}
