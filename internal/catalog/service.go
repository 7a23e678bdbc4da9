package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// errAbsent marks a lookup the provider answered with no record. It keeps
// "not found" out of the cache the same way hard failures stay out.
var errAbsent = errors.New("no catalog record")

// Client is the raw catalog provider. Failures surface as errors here and are
// absorbed by the service: the core never sees an upstream exception, only an
// empty or absent result.
type Client interface {
	Search(ctx context.Context, query string, page, limit int) ([]Raw, error)
	GetByID(ctx context.Context, id string) (Raw, error)
	GetByISBN(ctx context.Context, isbn string) (Raw, error)
}

// Service combines the provider client, the lookup cache and the normalizer.
type Service struct {
	client Client
	cache  *Cache
	log    zerolog.Logger
}

func NewService(client Client, cache *Cache, log zerolog.Logger) *Service {
	return &Service{client: client, cache: cache, log: log}
}

// Search returns normalized entries for a catalog search. Upstream failure
// yields an empty slice and is not cached.
func (s *Service) Search(ctx context.Context, query string, page, limit int) []Entry {
	v, err := s.cache.GetOrCompute(SearchKey(query, page, limit), SearchTTL, func() (any, error) {
		docs, err := s.client.Search(ctx, query, page, limit)
		if err != nil {
			return nil, err
		}
		entries := make([]Entry, 0, len(docs))
		for _, doc := range docs {
			entries = append(entries, NormalizeSearchDoc(doc))
		}
		return entries, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("catalog search failed")
		return nil
	}
	return v.([]Entry)
}

const (
	trendingQuery = "fantasy OR science fiction OR mystery"
	trendingLimit = 12
)

// Trending returns a front-page selection of popular genres. It is a canned
// search, so it shares the search cache and TTL.
func (s *Service) Trending(ctx context.Context) []Entry {
	return s.Search(ctx, trendingQuery, 1, trendingLimit)
}

// GetByID returns the normalized detail entry for an external id.
func (s *Service) GetByID(ctx context.Context, id string) (Entry, bool) {
	v, err := s.cache.GetOrCompute(DetailKey(id), DetailTTL, func() (any, error) {
		doc, err := s.client.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, errAbsent
		}
		e := NormalizeDetail(doc)
		if e.ExternalID == "" {
			e.ExternalID = id
		}
		return e, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("catalog detail lookup failed")
		return Entry{}, false
	}
	return v.(Entry), true
}

// LookupISBN returns the normalized entry for an ISBN, or absent when the
// provider has no record or is unavailable.
func (s *Service) LookupISBN(ctx context.Context, isbn string) (Entry, bool) {
	v, err := s.cache.GetOrCompute(ISBNKey(isbn), ISBNTTL, func() (any, error) {
		doc, err := s.client.GetByISBN(ctx, isbn)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, errAbsent
		}
		e := NormalizeDetail(doc)
		if e.ISBN == "" {
			e.ISBN = isbn
		}
		return e, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("isbn", isbn).Msg("catalog isbn lookup failed")
		return Entry{}, false
	}
	return v.(Entry), true
}
