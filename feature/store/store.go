package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options tune a Store.
type Options struct {
	// DryRun executes every operation and then rolls its transaction back.
	DryRun bool
	// BatchSize caps rows per staging insert.
	BatchSize int
}

// Store persists movies and their listings through gorm. The SQL it issues is
// portable between Postgres and SQLite.
type Store struct {
	db   *gorm.DB
	log  *zap.Logger
	opts Options
}

// New creates a Store on an open connection pool. The caller owns the pool.
func New(db *gorm.DB, log *zap.Logger, opts Options) *Store {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	return &Store{db: db, log: log, opts: opts}
}

var errDryRun = errors.New("dry run")

// transaction runs fn in one transaction. Any error rolls it back and is
// returned as a PersistenceError. In dry-run mode a successful fn is rolled
// back as well.
func (s *Store) transaction(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		if s.opts.DryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		s.log.Debug("Rolled back dry run", zap.String("op", op))
		return nil
	}
	if err != nil {
		return persistenceError(op, err)
	}
	return nil
}
