package catalog

import (
	"strconv"
	"strings"
)

// Normalize converts a raw provider record into a canonical Entry, inferring
// the source shape from field presence. Search documents carry flat
// multi-valued fields (author_name, cover_i, ia); detail records carry nested
// authors and isbn_13/isbn_10 lists. Normalization never fails.
func Normalize(doc Raw) Entry {
	if _, ok := doc["author_name"]; ok {
		return NormalizeSearchDoc(doc)
	}
	if _, ok := doc["cover_i"]; ok {
		return NormalizeSearchDoc(doc)
	}
	if _, ok := doc["ia"]; ok {
		return NormalizeSearchDoc(doc)
	}
	return NormalizeDetail(doc)
}

// NormalizeSearchDoc normalizes one document of a search result. Multi-valued
// fields keep the source ordering; the first element wins.
func NormalizeSearchDoc(doc Raw) Entry {
	e := Entry{
		Genre:       DefaultGenre,
		Description: DefaultDescription,
		Language:    DefaultLanguage,
		RatingAvg:   DefaultRatingAvg,
		RatingCount: DefaultRatingCount,
	}

	e.Title, _ = doc.String("title")
	e.Author = stringOr(doc, "author_name", DefaultAuthor)
	if g, ok := doc.String("subject"); ok && g != "" {
		e.Genre = g
	}
	if y, ok := doc.Int("first_publish_year"); ok {
		e.PublishedYear = &y
	}
	if p, ok := doc.Int("number_of_pages_median"); ok {
		e.PageCount = &p
	}
	e.CoverID, _ = doc.String("cover_i")
	e.ISBN, _ = doc.String("isbn")
	if r, ok := doc.Float("ratings_average"); ok {
		e.RatingAvg = r
	}
	if c, ok := doc.Int("ratings_count"); ok {
		e.RatingCount = c
	}
	if l, ok := doc.String("language"); ok && l != "" {
		e.Language = l
	}
	e.AvailableOnline = doc.NonEmptyList("ia")
	e.ExternalID, _ = doc.String("key")
	return e
}

// NormalizeDetail normalizes a single-record detail response: nested authors,
// a description that may be a bare string or a {type, value} object, and
// isbn_13 preferred over isbn_10.
func NormalizeDetail(doc Raw) Entry {
	e := Entry{
		Author:      DefaultAuthor,
		Genre:       DefaultGenre,
		Description: DefaultDescription,
		Language:    DefaultLanguage,
		RatingAvg:   DefaultRatingAvg,
		RatingCount: DefaultRatingCount,
	}

	e.Title, _ = doc.String("title")
	if name := detailAuthorName(doc); name != "" {
		e.Author = name
	}
	if d := detailDescription(doc); d != "" {
		e.Description = d
	}
	if p, ok := doc.Int("number_of_pages"); ok {
		e.PageCount = &p
	}
	if y, ok := publishYear(doc); ok {
		e.PublishedYear = &y
	}
	if isbn, ok := doc.String("isbn_13"); ok && isbn != "" {
		e.ISBN = isbn
	} else if isbn, ok := doc.String("isbn_10"); ok {
		e.ISBN = isbn
	}
	e.CoverID, _ = doc.String("covers")
	e.ExternalID, _ = doc.String("key")
	return e
}

func stringOr(doc Raw, key, def string) string {
	if s, ok := doc.String(key); ok && s != "" {
		return s
	}
	return def
}

func detailAuthorName(doc Raw) string {
	authors, ok := doc.List("authors")
	if !ok || len(authors) == 0 {
		return ""
	}
	m, ok := authors[0].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := Raw(m).String("name")
	return name
}

func detailDescription(doc Raw) string {
	f := doc.Field("description")
	v, ok := f.first()
	if !ok {
		return ""
	}
	switch d := v.(type) {
	case string:
		return d
	case map[string]any:
		s, _ := Raw(d).String("value")
		return s
	}
	return ""
}

// publishYear extracts the leading year from a publish_date like "2023" or
// "2023-01-15".
func publishYear(doc Raw) (int, bool) {
	date, ok := doc.String("publish_date")
	if !ok || date == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(date, "-")
	y, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	return y, true
}
