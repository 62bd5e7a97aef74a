package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// DefaultCommitRetries bounds how often a conflicting unit of work is
// re-executed before giving up.
const DefaultCommitRetries = 5

// Store wraps BadgerDB with a unit-of-work runner. Badger detects
// read-write conflicts at commit time, so two transactions racing on the
// same product key can never both commit a decrement; the loser is
// re-executed against the committed state.
type Store struct {
	db      *badger.DB
	log     *slog.Logger
	retries int
}

func New(db *badger.DB, log *slog.Logger, retries int) *Store {
	if retries <= 0 {
		retries = DefaultCommitRetries
	}
	return &Store{db: db, log: log, retries: retries}
}

func (s *Store) DB() *badger.DB { return s.db }

// RunInTransaction executes fn inside a single atomic read-write
// transaction. The transaction is discarded on every failure path,
// including context cancellation, so no partial mutation ever survives.
// fn may run more than once; it must not carry state across attempts.
func (s *Store) RunInTransaction(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; attempt < s.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		txn := s.db.NewTransaction(true)
		if err := fn(txn); err != nil {
			txn.Discard()
			return err
		}

		// A cancellation between the last read and the commit still
		// rolls back: the caller must never pay for a result it
		// stopped waiting for.
		if err := ctx.Err(); err != nil {
			txn.Discard()
			return err
		}

		err := txn.Commit()
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("transaction conflict, retrying", "attempt", attempt+1)
	}
	return badger.ErrConflict
}

// View runs a read-only snapshot transaction.
func (s *Store) View(fn func(txn *badger.Txn) error) error {
	return s.db.View(fn)
}
