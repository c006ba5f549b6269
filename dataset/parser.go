package dataset

import "strings"

// ParseLine splits one CSV line into trimmed fields.
//
// A double quote toggles the quoted state and is not kept. A comma outside
// quotes ends the current field. Everything else, including commas inside
// quotes, is kept verbatim. The last field is always emitted, so an empty
// line yields one empty field. Unbalanced quotes never fail; the rest of the
// line is read in whatever state the last quote left.
func ParseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}
