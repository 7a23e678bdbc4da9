package catalog

import "time"

// Defaults applied when the provider omits a field. Kept in one place so
// normalization and tests agree on a single canonical source.
const (
	DefaultAuthor      = "Unknown Author"
	DefaultGenre       = "General"
	DefaultDescription = "No description available"
	DefaultLanguage    = "en"
	DefaultRatingAvg   = 0.0
	DefaultRatingCount = 0

	// Lookup cache TTLs per lookup kind.
	SearchTTL = 10 * time.Minute
	DetailTTL = 10 * time.Minute
	ISBNTTL   = 10 * time.Minute
)
