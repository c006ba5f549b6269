package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "42"},
		{name: "empty string", content: ""},
		{name: "song content", content: "Title: Yesterday\nArtist: The Beatles\nLyrics: N/A\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("1")
	id2 := IDFromContent("2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestSongRequest_WithDefaults(t *testing.T) {
	got := SongRequest{Title: "Jolene", Lyrics: "Jolene, Jolene"}.WithDefaults()

	want := SongRequest{
		Title:       "Jolene",
		Artist:      NotAvailable,
		Album:       NotAvailable,
		Genre:       NotAvailable,
		Description: NotAvailable,
		SourceDate:  NotAvailable,
		Lyrics:      "Jolene, Jolene",
		ReleaseYear: DefaultReleaseYear,
	}
	if got != want {
		t.Errorf("WithDefaults() = %+v, want %+v", got, want)
	}
}

func TestSongRequest_WithDefaultsKeepsValues(t *testing.T) {
	req := SongRequest{
		Title:       "Take Five",
		Artist:      "Dave Brubeck",
		Album:       "Time Out",
		Genre:       "Jazz",
		Description: "cool jazz",
		SourceDate:  "1959-09-21",
		Lyrics:      "instrumental",
		ReleaseYear: 1959,
	}

	if got := req.WithDefaults(); got != req {
		t.Errorf("WithDefaults() changed populated request: %+v", got)
	}
}

func TestSongRequest_WithTextDefaultsKeepsYear(t *testing.T) {
	got := SongRequest{Title: "Year Zero", ReleaseYear: 0}.WithTextDefaults()

	if got.ReleaseYear != 0 {
		t.Errorf("WithTextDefaults() ReleaseYear = %d, want 0", got.ReleaseYear)
	}
	if got.Artist != NotAvailable {
		t.Errorf("WithTextDefaults() Artist = %q, want %q", got.Artist, NotAvailable)
	}
}

func TestID_String(t *testing.T) {
	if got := ID(0).String(); got != "0" {
		t.Errorf("String() = %q, want %q", got, "0")
	}
	if got := ID(^uint64(0)).String(); got != "18446744073709551615" {
		t.Errorf("String() = %q, want max uint64", got)
	}
}
