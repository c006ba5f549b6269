package storage

import (
	"testing"
	"time"

	"github.com/poiesic/lyricmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalSong(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		song *core.Song
	}{
		{
			name: "defaults only",
			song: &core.Song{
				Id:          core.ID(1),
				Title:       core.NotAvailable,
				Artist:      core.NotAvailable,
				Album:       core.NotAvailable,
				Genre:       core.NotAvailable,
				Description: core.NotAvailable,
				SourceDate:  core.NotAvailable,
				Lyrics:      core.NotAvailable,
				ReleaseYear: core.DefaultReleaseYear,
				InsertedAt:  now,
				UpdatedAt:   now,
			},
		},
		{
			name: "full song with tags",
			song: &core.Song{
				Id:          core.ID(2),
				Title:       "Hello",
				Artist:      "Adele",
				Album:       "25",
				Genre:       "Pop",
				Description: "Ballad, \"quoted\"",
				SourceDate:  "2015-10-23",
				Lyrics:      "Hello, it's me\nI was wondering",
				ReleaseYear: 2015,
				Tags:        []string{"ballad", "piano"},
				InsertedAt:  now,
				UpdatedAt:   now.Add(time.Hour),
			},
		},
		{
			name: "unicode lyrics",
			song: &core.Song{
				Id:         core.ID(3),
				Title:      "Für Elise",
				Lyrics:     "la la 世界 🎵",
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalSong(tt.song)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalSong(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.song.Id, decoded.Id)
			assert.Equal(t, tt.song.Title, decoded.Title)
			assert.Equal(t, tt.song.Artist, decoded.Artist)
			assert.Equal(t, tt.song.Album, decoded.Album)
			assert.Equal(t, tt.song.Genre, decoded.Genre)
			assert.Equal(t, tt.song.Description, decoded.Description)
			assert.Equal(t, tt.song.SourceDate, decoded.SourceDate)
			assert.Equal(t, tt.song.Lyrics, decoded.Lyrics)
			assert.Equal(t, tt.song.ReleaseYear, decoded.ReleaseYear)
			assert.True(t, tt.song.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.song.UpdatedAt.Equal(decoded.UpdatedAt))
			if len(tt.song.Tags) == 0 {
				assert.Empty(t, decoded.Tags)
			} else {
				assert.Equal(t, tt.song.Tags, decoded.Tags)
			}
		})
	}
}

func TestMarshalUnmarshalSongEmbedding(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	embedding := &core.SongEmbedding{
		Id:      core.IDFromContent("7"),
		SongId:  core.ID(7),
		Content: "Title: Hello\nArtist: Adele\nLyrics: Hello, it's me\n",
		Vector:  []float32{0.1, -0.2, 0.3, 0.4},
		Metadata: map[string]string{
			"songId": "7",
			"title":  "Hello",
			"genre":  "Pop",
		},
		InsertedAt: now,
	}

	data := MarshalSongEmbedding(embedding)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalSongEmbedding(data)
	require.NoError(t, err)
	assert.Equal(t, embedding.Id, decoded.Id)
	assert.Equal(t, embedding.SongId, decoded.SongId)
	assert.Equal(t, embedding.Content, decoded.Content)
	assert.Equal(t, embedding.Vector, decoded.Vector)
	assert.Equal(t, embedding.Metadata, decoded.Metadata)
	assert.True(t, embedding.InsertedAt.Equal(decoded.InsertedAt))
}

func TestMarshalSongEmbedding_Deterministic(t *testing.T) {
	embedding := &core.SongEmbedding{
		Id:       core.ID(1),
		Content:  "x",
		Vector:   []float32{1},
		Metadata: map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"},
	}
	first := MarshalSongEmbedding(embedding)
	for range 10 {
		assert.Equal(t, first, MarshalSongEmbedding(embedding))
	}
}

func TestUnmarshalSong_Truncated(t *testing.T) {
	song := &core.Song{Id: core.ID(9), Title: "Truncate me", Lyrics: "some words"}
	data := MarshalSong(song)

	_, err := UnmarshalSong(data[:len(data)/2])
	assert.Error(t, err)
}
