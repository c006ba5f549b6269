package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/lyricmind/core"
)

// RawRow is one parsed source line.
type RawRow struct {
	Line   int // 1-based, the header is line 1
	Fields []string
}

// Normalize converts a row into a SongRequest with defaults applied.
// It fails with ErrShortRow when the row has fewer fields than the header.
// Any integer year is kept as is, including 0 and negatives. A missing or
// non-numeric year falls back to core.DefaultReleaseYear without an error;
// use the Generator to observe those fallbacks.
func Normalize(row RawRow, columns ColumnIndex) (core.SongRequest, error) {
	n, err := normalize(row, columns)
	return n.request, err
}

// normalized carries a request plus the reason its year was defaulted, if any.
type normalized struct {
	request     core.SongRequest
	yearWarning error
}

func normalize(row RawRow, columns ColumnIndex) (normalized, error) {
	if len(row.Fields) < columns.Width() {
		return normalized{}, fmt.Errorf("%w: got %d fields, want %d", ErrShortRow, len(row.Fields), columns.Width())
	}

	artist := fieldValue(row.Fields, columns, ColumnArtist)
	title := fieldValue(row.Fields, columns, ColumnTitle)
	lyrics := fieldValue(row.Fields, columns, ColumnLyric)

	request := core.SongRequest{
		Title:      title,
		Artist:     artist,
		Album:      fieldValue(row.Fields, columns, ColumnAlbum),
		Genre:      ClassifyGenre(artist, title, lyrics),
		SourceDate: fieldValue(row.Fields, columns, ColumnDate),
		Lyrics:     lyrics,
	}

	var yearWarning error
	yearText := fieldValue(row.Fields, columns, ColumnYear)
	year, err := strconv.Atoi(yearText)
	switch {
	case yearText == "":
		yearWarning = fmt.Errorf("%w: missing", ErrInvalidYear)
		year = core.DefaultReleaseYear
	case err != nil:
		yearWarning = fmt.Errorf("%w: %q", ErrInvalidYear, yearText)
		year = core.DefaultReleaseYear
	}
	request.ReleaseYear = year

	return normalized{request: request.WithTextDefaults(), yearWarning: yearWarning}, nil
}

// fieldValue returns the trimmed value of column with one layer of
// surrounding quotes removed. Absent values are empty.
func fieldValue(fields []string, columns ColumnIndex, column string) string {
	i, ok := columns[column]
	if !ok || i >= len(fields) {
		return ""
	}
	value := strings.TrimSpace(fields[i])
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
	}
	return value
}
