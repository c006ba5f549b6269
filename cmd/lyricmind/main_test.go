package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/lyricmind/config"
	"github.com/poiesic/lyricmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp runs the CLI against an isolated config and env file.
func runApp(t *testing.T, args ...string) (*cli.App, error) {
	t.Helper()
	dir := t.TempDir()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out

	full := append([]string{"lyricmind",
		"--config", filepath.Join(dir, "missing.toml"),
		"--env-file", filepath.Join(dir, "missing.env"),
	}, args...)
	return app, app.Run(full)
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "debug text", args: []string{"--log-level", "debug"}},
		{name: "json", args: []string{"--log-format", "json"}},
		{name: "upper case level", args: []string{"--log-level", "WARN"}},
		{name: "bad level", args: []string{"--log-level", "loud"}, wantErr: "invalid log level"},
		{name: "bad format", args: []string{"--log-format", "xml"}, wantErr: "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "search")
			_, err := runApp(t, args...)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			// Logger setup passed, the empty search query is what failed.
			assert.Contains(t, err.Error(), "search query is required")
		})
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	app, err := runApp(t,
		"--db", "/tmp/songs.db",
		"--embedding-host", "http://embedder:9000/v1",
		"--embedding-model", "nomic-embed-text",
		"search")
	require.Error(t, err)

	cfg, ok := app.Metadata[configKey].(config.Config)
	require.True(t, ok)
	assert.Equal(t, "/tmp/songs.db", cfg.Database.Path)
	assert.Equal(t, "http://embedder:9000/v1", cfg.Embedding.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, config.Default().Server.Addr, cfg.Server.Addr)
}

func TestRequiredFlags(t *testing.T) {
	t.Run("ingest requires file", func(t *testing.T) {
		_, err := runApp(t, "ingest")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file")
	})

	t.Run("ingest-id3 requires dir", func(t *testing.T) {
		_, err := runApp(t, "ingest-id3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dir")
	})
}

func TestReembedCommand_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"zero batch size", []string{"--batch-size", "0"}, "batch-size"},
		{"negative report interval", []string{"--report-interval", "-1"}, "report-interval"},
		{"zero retries", []string{"--max-retries", "0"}, "max-retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, append([]string{"reembed"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSeedCommand_Validation(t *testing.T) {
	_, err := runApp(t, "seed", "--lines-per-song", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lines-per-song")

	_, err = runApp(t, "seed", "--src", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestSongsFromLines(t *testing.T) {
	lines := []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}

	var songs []core.SongRequest
	for song := range songsFromLines(linesFromSlice(lines), 4) {
		songs = append(songs, song)
	}

	require.Len(t, songs, 3)
	assert.Equal(t, "one", songs[0].Title)
	assert.Equal(t, "one\ntwo\nthree\nfour", songs[0].Lyrics)
	assert.Equal(t, "five", songs[1].Title)
	assert.Equal(t, "nine\nten", songs[2].Lyrics)
	assert.Equal(t, seedArtist, songs[2].Artist)
	assert.Equal(t, core.NotAvailable, songs[2].Description)
	assert.Equal(t, core.DefaultReleaseYear, songs[2].ReleaseYear)
}

func TestSongsFromLines_StopsEarly(t *testing.T) {
	count := 0
	for range songsFromLines(linesFromSlice(verses), 4) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestLinesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.txt")
	require.NoError(t, os.WriteFile(path, []byte("first line\n\n   \nsecond line\n"), 0644))

	source, err := linesFromFile(path)
	require.NoError(t, err)

	var lines []string
	for line := range source {
		lines = append(lines, line)
	}
	assert.Equal(t, []string{"first line", "second line"}, lines)
}

type fakeEmbedder struct {
	batches [][]core.SongRequest
	failOn  int
}

func (f *fakeEmbedder) EmbedSongs(_ context.Context, requests []core.SongRequest) (int, error) {
	if f.failOn > 0 && len(f.batches)+1 == f.failOn {
		return 0, errors.New("embedding service down")
	}
	f.batches = append(f.batches, append([]core.SongRequest(nil), requests...))
	return len(requests), nil
}

func TestEmbedBatched(t *testing.T) {
	embedder := &fakeEmbedder{}
	source := songsFromLines(linesFromSlice(verses), 4)

	total, err := embedBatched(context.Background(), embedder, source, 3)
	require.NoError(t, err)

	assert.Equal(t, len(verses)/4, total)
	require.Len(t, embedder.batches, 4)
	assert.Len(t, embedder.batches[0], 3)
	assert.Len(t, embedder.batches[3], 1)
}

func TestEmbedBatched_Error(t *testing.T) {
	embedder := &fakeEmbedder{failOn: 2}
	source := songsFromLines(linesFromSlice(verses), 4)

	total, err := embedBatched(context.Background(), embedder, source, 3)
	require.Error(t, err)
	assert.Equal(t, 3, total)
}
