package catalog

// Entry is the canonical in-memory form of one external book record. It is
// produced per lookup and never persisted directly; every field absent in the
// source resolves to an explicit default so "missing" is never ambiguous.
type Entry struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ExternalID      string  `json:"external_id,omitempty"`
	ISBN            string  `json:"isbn,omitempty"`
	Genre           string  `json:"genre"`
	PublishedYear   *int    `json:"published_year,omitempty"`
	PageCount       *int    `json:"page_count,omitempty"`
	CoverID         string  `json:"cover_id,omitempty"`
	Description     string  `json:"description"`
	Language        string  `json:"language"`
	RatingAvg       float64 `json:"rating_avg"`
	RatingCount     int     `json:"rating_count"`
	AvailableOnline bool    `json:"available_online"`
}
