package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

const (
	// NotAvailable is substituted for text fields missing from a source record.
	NotAvailable = "N/A"

	// DefaultReleaseYear is substituted when a source record has no usable year.
	DefaultReleaseYear = 1970
)

// Metadata keys attached to song documents.
const (
	MetaSongID      = "songId"
	MetaTitle       = "title"
	MetaArtist      = "artist"
	MetaAlbum       = "album"
	MetaGenre       = "genre"
	MetaDescription = "description"
	MetaReleaseYear = "releaseYear"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// String returns the decimal form of the ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SongRequest is a normalized song record ready for persistence and embedding.
// Values are copied, never shared, so a request cannot change once built.
type SongRequest struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	SourceDate  string `json:"sourceDate"`
	Lyrics      string `json:"lyrics"`
	ReleaseYear int    `json:"releaseYear"`
}

// WithTextDefaults returns a copy of the request with empty text fields set
// to NotAvailable. The release year is left alone.
func (r SongRequest) WithTextDefaults() SongRequest {
	for _, field := range []*string{&r.Title, &r.Artist, &r.Album, &r.Genre, &r.Description, &r.SourceDate, &r.Lyrics} {
		if *field == "" {
			*field = NotAvailable
		}
	}
	return r
}

// WithDefaults is WithTextDefaults plus DefaultReleaseYear for a zero year.
// It suits JSON requests, where an omitted year decodes as zero.
func (r SongRequest) WithDefaults() SongRequest {
	r = r.WithTextDefaults()
	if r.ReleaseYear == 0 {
		r.ReleaseYear = DefaultReleaseYear
	}
	return r
}

// Song is the persisted form of a SongRequest.
type Song struct {
	Id          ID
	Title       string
	Artist      string
	Album       string
	Genre       string
	Description string
	SourceDate  string
	Lyrics      string
	ReleaseYear int
	Tags        []string  // Optional free-form labels
	InsertedAt  time.Time // When the song was inserted into the database
	UpdatedAt   time.Time // When the song was last updated
}

// SongEmbedding is a song document after it has been embedded by the vector store.
type SongEmbedding struct {
	Id         ID
	SongId     ID
	Content    string
	Vector     []float32
	Metadata   map[string]string
	InsertedAt time.Time
}

// SimilarityMatch represents an embedding match from vector similarity search.
type SimilarityMatch struct {
	Embedding *SongEmbedding
	Score     float32
}

// SearchResult represents a search result with the full song and relevance score.
type SearchResult struct {
	Song  *Song
	Score float32
}
