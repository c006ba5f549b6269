package dataset

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/poiesic/lyricmind/core"
)

// ScanID3Dir builds requests from the ID3 tags of every .mp3 file under dir.
//
// Tags map onto the same fields as CSV columns and get the same defaults.
// A tag without a genre is classified with ClassifyGenre. Files whose tag
// cannot be read are reported in Result.Failures with Line set to 0.
func (g *Generator) ScanID3Dir(ctx context.Context, dir string) (*Result, error) {
	logger := g.logger.With("source", dir)
	result := &Result{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".mp3") {
			return nil
		}

		n, err := readID3(path)
		if err != nil {
			logger.Error("skipping file", "file", path, "err", err)
			result.Failures = append(result.Failures, RowError{Source: path, Err: err})
			return nil
		}
		if n.yearWarning != nil {
			logger.Warn("using default release year", "file", path, "err", n.yearWarning)
			result.Warnings = append(result.Warnings, RowError{Source: path, Err: n.yearWarning})
		}
		result.Requests = append(result.Requests, n.request)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("id3 scan complete", "requests", len(result.Requests), "failures", len(result.Failures))
	return result, nil
}

// readID3 builds the request for one file.
func readID3(path string) (normalized, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return normalized{}, fmt.Errorf("%w: %w", ErrUnreadableTag, err)
	}
	defer tag.Close()

	request := core.SongRequest{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
		Genre:  strings.TrimSpace(tag.Genre()),
		Lyrics: lyricsFromTag(tag),
	}
	if request.Genre == "" {
		request.Genre = ClassifyGenre(request.Artist, request.Title, request.Lyrics)
	}

	// TYER may carry a full date; the first four digits are the year.
	var yearWarning error
	yearText := strings.TrimSpace(tag.Year())
	request.SourceDate = yearText
	if len(yearText) > 4 {
		yearText = yearText[:4]
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		yearWarning = fmt.Errorf("%w: %q", ErrInvalidYear, yearText)
		year = core.DefaultReleaseYear
	}
	request.ReleaseYear = year

	return normalized{request: request.WithTextDefaults(), yearWarning: yearWarning}, nil
}

// lyricsFromTag joins every unsynchronised lyrics frame in the tag.
func lyricsFromTag(tag *id3v2.Tag) string {
	var parts []string
	for _, frame := range tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription")) {
		uslf, ok := frame.(id3v2.UnsynchronisedLyricsFrame)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(uslf.Lyrics); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
