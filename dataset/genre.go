package dataset

import "strings"

// Genre labels produced by ClassifyGenre.
const (
	GenreRock       = "Rock"
	GenreHipHop     = "Hip-Hop"
	GenreCountry    = "Country"
	GenreJazz       = "Jazz"
	GenreElectronic = "Electronic"
	GenrePop        = "Pop"
)

// genreRules are checked in order; the first rule with a matching keyword wins.
var genreRules = []struct {
	genre    string
	keywords []string
}{
	{GenreRock, []string{"rock", "guitar"}},
	{GenreHipHop, []string{"rap", "hip hop"}},
	{GenreCountry, []string{"country"}},
	{GenreJazz, []string{"jazz"}},
	{GenreElectronic, []string{"electronic", "techno"}},
}

// ClassifyGenre guesses a genre from keywords in the artist, title and lyrics.
// Matching is case-insensitive substring search, so "rapture" counts as rap.
// Songs with no keyword are Pop.
func ClassifyGenre(artist, title, lyrics string) string {
	text := strings.ToLower(artist + " " + title + " " + lyrics)
	for _, rule := range genreRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.genre
			}
		}
	}
	return GenrePop
}
