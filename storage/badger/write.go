package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lyricmind/storage"
)

// kv is one pending write. A nil value deletes the key.
type kv struct {
	key   []byte
	value []byte
}

// writeAll applies writes in as few transactions as badger allows, opening a
// new transaction whenever the current one reports ErrTxnTooBig. When a
// later transaction fails, the ones already committed are undone, so the
// batch lands completely or not at all.
func (b *Backend) writeAll(ctx context.Context, writes []kv) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}

	undo, err := b.apply(ctx, writes, true)
	if err == nil || len(undo) == 0 {
		return err
	}

	// Restore in reverse so a key written twice gets its oldest value back.
	slices.Reverse(undo)
	if _, undoErr := b.apply(context.WithoutCancel(ctx), undo, false); undoErr != nil {
		b.logger.Error("failed to roll back partial write", "writes", len(undo), "err", undoErr)
		return errors.Join(err, fmt.Errorf("rollback failed: %w", undoErr))
	}
	b.logger.Warn("rolled back partial write", "writes", len(undo), "err", err)
	return err
}

// apply commits writes in chunks. When record is set it returns, even on
// failure, the undo entries of every write that was committed.
func (b *Backend) apply(ctx context.Context, writes []kv, record bool) ([]kv, error) {
	var committed, pending []kv
	tx := b.db.NewTransaction(true)
	defer func() { tx.Discard() }()

	inTx := 0
	for i := 0; i < len(writes); {
		if err := ctx.Err(); err != nil {
			return committed, err
		}
		w := writes[i]

		var prior kv
		if record {
			var err error
			if prior, err = readPrior(tx, w.key); err != nil {
				return committed, err
			}
		}

		err := put(tx, w)
		if errors.Is(err, badger.ErrTxnTooBig) && inTx > 0 {
			if err := tx.Commit(); err != nil {
				return committed, err
			}
			committed = append(committed, pending...)
			pending = pending[:0]
			tx = b.db.NewTransaction(true)
			inTx = 0
			continue
		}
		if err != nil {
			return committed, err
		}

		if record {
			pending = append(pending, prior)
		}
		inTx++
		i++
	}

	if err := tx.Commit(); err != nil {
		return committed, err
	}
	return append(committed, pending...), nil
}

func put(tx *badger.Txn, w kv) error {
	if w.value == nil {
		return tx.Delete(w.key)
	}
	return tx.Set(w.key, w.value)
}

// readPrior returns the write that restores key to its current state.
func readPrior(tx *badger.Txn, key []byte) (kv, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return kv{key: key}, nil
	}
	if err != nil {
		return kv{}, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return kv{}, err
	}
	return kv{key: key, value: value}, nil
}
