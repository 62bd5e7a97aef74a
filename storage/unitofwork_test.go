package storage

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *badger.DB) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return New(db, log, 0), db
}

func setKey(t *testing.T, db *badger.DB, key, value string) {
	t.Helper()
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	}))
}

func getKey(t *testing.T, db *badger.DB, key string) string {
	t.Helper()
	var value string
	require.NoError(t, db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	}))
	return value
}

func TestStore_RunInTransaction_CommitsOnSuccess(t *testing.T) {
	req := require.New(t)
	store, db := newTestStore(t)

	err := store.RunInTransaction(context.Background(), func(txn *badger.Txn) error {
		return txn.Set([]byte("k"), []byte("v"))
	})

	req.NoError(err)
	req.Equal("v", getKey(t, db, "k"))
}

func TestStore_RunInTransaction_DiscardsOnError(t *testing.T) {
	req := require.New(t)
	store, db := newTestStore(t)
	boom := fmt.Errorf("boom")

	err := store.RunInTransaction(context.Background(), func(txn *badger.Txn) error {
		if err := txn.Set([]byte("k"), []byte("v")); err != nil {
			return err
		}
		return boom
	})

	req.ErrorIs(err, boom)
	req.Error(db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("k"))
		return err
	}))
}

func TestStore_RunInTransaction_RetriesOnConflict(t *testing.T) {
	req := require.New(t)
	store, db := newTestStore(t)
	setKey(t, db, "stock", "5")

	attempts := 0
	err := store.RunInTransaction(context.Background(), func(txn *badger.Txn) error {
		attempts++

		// Track a read so Badger can detect the conflict
		if _, err := txn.Get([]byte("stock")); err != nil {
			return err
		}

		// A competing writer commits between our read and our commit,
		// but only during the first attempt
		if attempts == 1 {
			setKey(t, db, "stock", "4")
		}
		return txn.Set([]byte("stock"), []byte("3"))
	})

	req.NoError(err)
	req.Equal(2, attempts)
	req.Equal("3", getKey(t, db, "stock"))
}

func TestStore_RunInTransaction_GivesUpAfterRetries(t *testing.T) {
	req := require.New(t)
	store, db := newTestStore(t)
	setKey(t, db, "stock", "5")

	attempts := 0
	err := store.RunInTransaction(context.Background(), func(txn *badger.Txn) error {
		attempts++
		if _, err := txn.Get([]byte("stock")); err != nil {
			return err
		}
		// Relentless competing writer
		setKey(t, db, "stock", fmt.Sprintf("%d", attempts))
		return txn.Set([]byte("stock"), []byte("0"))
	})

	req.ErrorIs(err, badger.ErrConflict)
	req.Equal(DefaultCommitRetries, attempts)
}

func TestStore_RunInTransaction_CancelledContext(t *testing.T) {
	req := require.New(t)
	store, db := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.RunInTransaction(ctx, func(txn *badger.Txn) error {
		called = true
		return txn.Set([]byte("k"), []byte("v"))
	})

	req.ErrorIs(err, context.Canceled)
	req.False(called)

	// Cancellation between the unit of work and its commit also aborts
	ctx2, cancel2 := context.WithCancel(context.Background())
	err = store.RunInTransaction(ctx2, func(txn *badger.Txn) error {
		cancel2()
		return txn.Set([]byte("k"), []byte("v"))
	})
	req.ErrorIs(err, context.Canceled)

	req.Error(db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("k"))
		return err
	}))
}
