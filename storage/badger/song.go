package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/storage"
)

// SongRepository implements storage.SongRepository for BadgerDB.
type SongRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SongRepository = (*SongRepository)(nil)

// NewSongRepository creates a new SongRepository.
func NewSongRepository(backend *Backend) (*SongRepository, error) {
	idSeq, err := backend.GetSequence(songIDSeq)
	if err != nil {
		return nil, err
	}

	return &SongRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SongRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *SongRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveSongs persists songs, assigning IDs to new ones. Large batches span
// several transactions but are still applied all-or-nothing.
func (r *SongRepository) SaveSongs(ctx context.Context, songs ...*core.Song) ([]*core.Song, error) {
	for _, song := range songs {
		if err := core.ValidateSong(song); err != nil {
			return nil, err
		}
	}

	// Keep the original insertion time when overwriting
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, song := range songs {
			if song.Id == 0 || !song.InsertedAt.IsZero() {
				continue
			}
			old, err := readSong(tx, makeSongKey(song.Id))
			if err != nil {
				return err
			}
			if old != nil {
				song.InsertedAt = old.InsertedAt
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	var assigned []*core.Song
	writes := make([]kv, 0, len(songs))
	now := time.Now().UTC()
	for _, song := range songs {
		if song.Id == 0 {
			id, err := r.nextID()
			if err != nil {
				resetIDs(assigned)
				return nil, err
			}
			song.Id = id
			assigned = append(assigned, song)
		}
		if song.InsertedAt.IsZero() {
			song.InsertedAt = now
		}
		song.UpdatedAt = now
		writes = append(writes, kv{key: makeSongKey(song.Id), value: storage.MarshalSong(song)})
	}

	if err := r.backend.writeAll(ctx, writes); err != nil {
		resetIDs(assigned)
		return nil, err
	}

	return songs, nil
}

// resetIDs clears IDs handed out to songs that were never stored.
func resetIDs(songs []*core.Song) {
	for _, song := range songs {
		song.Id = 0
	}
}

// GetSong retrieves a single song by ID.
func (r *SongRepository) GetSong(ctx context.Context, id core.ID) (*core.Song, error) {
	var result *core.Song
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSong(tx, makeSongKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetSongs retrieves multiple songs by their IDs, skipping missing ones.
func (r *SongRepository) GetSongs(ctx context.Context, ids ...core.ID) ([]*core.Song, error) {
	var result []*core.Song
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			song, err := readSong(tx, makeSongKey(id))
			if err != nil {
				return err
			}
			if song != nil {
				result = append(result, song)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListSongs returns up to limit songs with ID greater than after, in ID order.
// A limit <= 0 returns every remaining song.
func (r *SongRepository) ListSongs(ctx context.Context, after core.ID, limit int) ([]*core.Song, error) {
	var results []*core.Song
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(songPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeSongKey(after)); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			item := iter.Item()
			if idFromKey(songPrefix, item.Key()) <= after {
				continue
			}

			var song *core.Song
			if err := item.Value(func(val []byte) error {
				var err error
				song, err = storage.UnmarshalSong(val)
				return err
			}); err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}
			results = append(results, song)
		}
		return nil
	}, false)

	return results, err
}

// CountSongs returns the number of stored songs.
func (r *SongRepository) CountSongs(ctx context.Context) (int, error) {
	return r.backend.countPrefix(songPrefix)
}

// DeleteSongs removes songs by their IDs. Nothing is removed if any ID is
// missing.
func (r *SongRepository) DeleteSongs(ctx context.Context, ids ...core.ID) error {
	writes := make([]kv, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSongKey(id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return storage.ErrNotFound
				}
				return err
			}
			writes = append(writes, kv{key: key})
		}
		return nil
	}, false)
	if err != nil {
		return err
	}
	return r.backend.writeAll(ctx, writes)
}

// nextID returns the next non-zero ID from the song sequence.
func (r *SongRepository) nextID() (core.ID, error) {
	nextID, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		nextID, err = r.idSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(nextID), nil
}

// readSong reads a song from the transaction. Returns nil, nil when absent.
func readSong(tx *badger.Txn, key []byte) (*core.Song, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var song *core.Song
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		song, unmarshalErr = storage.UnmarshalSong(val)
		return unmarshalErr
	})
	return song, err
}
