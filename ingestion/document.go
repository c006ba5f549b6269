package ingestion

import (
	"fmt"
	"strings"

	"github.com/poiesic/lyricmind/core"
	"github.com/tmc/langchaingo/schema"
)

const documentTemplate = "Title: %s\nArtist: %s\nLyrics: %s\n"

// NewDocument builds the embeddable document for a saved song.
func NewDocument(song *core.Song) schema.Document {
	return schema.Document{
		PageContent: fmt.Sprintf(documentTemplate,
			strings.TrimSpace(song.Title),
			strings.TrimSpace(song.Artist),
			strings.TrimSpace(song.Lyrics)),
		Metadata: map[string]any{
			core.MetaSongID:      song.Id,
			core.MetaTitle:       song.Title,
			core.MetaArtist:      song.Artist,
			core.MetaAlbum:       song.Album,
			core.MetaGenre:       song.Genre,
			core.MetaDescription: song.Description,
			core.MetaReleaseYear: song.ReleaseYear,
		},
	}
}

// NewDocuments builds one document per song, in order.
func NewDocuments(songs []*core.Song) []schema.Document {
	docs := make([]schema.Document, len(songs))
	for i, song := range songs {
		docs[i] = NewDocument(song)
	}
	return docs
}

// newSong maps a request to an unsaved song with every text field trimmed.
func newSong(r core.SongRequest) *core.Song {
	return &core.Song{
		Title:       strings.TrimSpace(r.Title),
		Artist:      strings.TrimSpace(r.Artist),
		Album:       strings.TrimSpace(r.Album),
		Genre:       strings.TrimSpace(r.Genre),
		Description: strings.TrimSpace(r.Description),
		SourceDate:  strings.TrimSpace(r.SourceDate),
		Lyrics:      strings.TrimSpace(r.Lyrics),
		ReleaseYear: r.ReleaseYear,
	}
}
