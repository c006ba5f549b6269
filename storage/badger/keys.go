package badger

import (
	"encoding/binary"

	"github.com/poiesic/lyricmind/core"
)

// Key prefixes for different data types
const (
	songPrefix      = "song:"
	songIDSeq       = "songseq"
	embeddingPrefix = "songemb:"
)

// makeSongKey generates a key for a song by ID.
// Format: prefix + big endian ID, so keys sort in ID order.
func makeSongKey(id core.ID) []byte {
	return makeIDKey(songPrefix, id)
}

// makeEmbeddingKey generates a key for a song embedding by ID.
func makeEmbeddingKey(id core.ID) []byte {
	return makeIDKey(embeddingPrefix, id)
}

func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// idFromKey extracts the ID from a key built by makeIDKey.
func idFromKey(prefix string, key []byte) core.ID {
	if len(key) < len(prefix)+8 {
		return 0
	}
	return core.ID(binary.BigEndian.Uint64(key[len(prefix):]))
}
