package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"booktrack/internal/catalog"

	"golang.org/x/time/rate"
)

const searchFields = "key,title,author_name,cover_i,first_publish_year,edition_count,number_of_pages_median,subject,language,isbn,ia,ratings_average,ratings_count"

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(userAgent string, rps int, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    "https://openlibrary.org",
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// searchResponse matches search.json. Docs stay loosely typed; field presence
// and shape vary per document.
type searchResponse struct {
	NumFound int           `json:"numFound"`
	Docs     []catalog.Raw `json:"docs"`
}

func (c *Client) Search(ctx context.Context, query string, page, limit int) ([]catalog.Raw, error) {
	u := fmt.Sprintf("%s/search.json?q=%s&page=%d&limit=%d&fields=%s",
		c.baseURL, url.QueryEscape(query), page, limit, searchFields)

	var res searchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return res.Docs, nil
}

// GetByID fetches a record by its provider key, e.g. "/works/OL45883W".
// A missing record is reported as nil, not an error.
func (c *Client) GetByID(ctx context.Context, id string) (catalog.Raw, error) {
	if !strings.HasPrefix(id, "/") {
		id = "/works/" + id
	}
	u := fmt.Sprintf("%s%s.json", c.baseURL, id)

	var doc catalog.Raw
	if err := c.get(ctx, u, &doc); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func (c *Client) GetByISBN(ctx context.Context, isbn string) (catalog.Raw, error) {
	u := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, url.PathEscape(isbn))

	var doc catalog.Raw
	if err := c.get(ctx, u, &doc); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = &statusError{code: resp.StatusCode}
				continue
			}
			return &statusError{code: resp.StatusCode}
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}
