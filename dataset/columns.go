package dataset

import "strings"

// Header names a source must carry. Other columns are ignored.
const (
	ColumnArtist = "Artist"
	ColumnTitle  = "Title"
	ColumnAlbum  = "Album"
	ColumnYear   = "Year"
	ColumnDate   = "Date"
	ColumnLyric  = "Lyric"
)

// RequiredColumns lists the required header names in validation order.
var RequiredColumns = []string{ColumnArtist, ColumnTitle, ColumnAlbum, ColumnYear, ColumnDate, ColumnLyric}

// ColumnIndex maps trimmed header names to field positions.
type ColumnIndex map[string]int

// MapColumns builds a ColumnIndex from header fields. When a name repeats the
// later position wins. It returns a *MissingColumnError for the first required
// column that is absent.
func MapColumns(header []string) (ColumnIndex, error) {
	columns := make(ColumnIndex, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	for _, required := range RequiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, &MissingColumnError{Column: required}
		}
	}
	return columns, nil
}

// Width returns the number of fields the header declared.
func (c ColumnIndex) Width() int {
	width := 0
	for _, i := range c {
		width = max(width, i+1)
	}
	return width
}
