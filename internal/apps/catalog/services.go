package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/booklyapp/bookly-server/internal/config"
)

var ErrAllSourcesFailed = errors.New("no catalog source responded")

const resultsPerSource = 10

// CatalogService fans a query out to Open Library and Google Books and merges
// the answers. One source failing is tolerated; both failing is an error.
type CatalogService struct {
	client         *http.Client
	openLibraryURL string
	googleBooksURL string
}

func NewCatalogService(cfg *config.Config) *CatalogService {
	return &CatalogService{
		client:         &http.Client{Timeout: cfg.CatalogTimeout},
		openLibraryURL: cfg.OpenLibraryURL,
		googleBooksURL: cfg.GoogleBooksURL,
	}
}

func (s *CatalogService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	type sourceResult struct {
		results []SearchResult
		err     error
	}

	olCh := make(chan sourceResult, 1)
	gbCh := make(chan sourceResult, 1)
	go func() {
		r, err := s.searchOpenLibrary(ctx, query)
		olCh <- sourceResult{r, err}
	}()
	go func() {
		r, err := s.searchGoogleBooks(ctx, query)
		gbCh <- sourceResult{r, err}
	}()

	ol, gb := <-olCh, <-gbCh
	if ol.err != nil {
		slog.Warn("open library search failed", "error", ol.err)
	}
	if gb.err != nil {
		slog.Warn("google books search failed", "error", gb.err)
	}
	if ol.err != nil && gb.err != nil {
		return nil, ErrAllSourcesFailed
	}

	return merge(gb.results, ol.results), nil
}

// merge deduplicates by normalized title+author. Google Books results are
// passed first so they win ties; they tend to carry better covers and page
// counts.
func merge(preferred, rest []SearchResult) []SearchResult {
	out := make([]SearchResult, 0, len(preferred)+len(rest))
	seen := make(map[string]struct{}, len(preferred)+len(rest))
	for _, r := range append(preferred, rest...) {
		key := strings.ToLower(strings.TrimSpace(r.Title)) + "|" + strings.ToLower(strings.TrimSpace(r.Author))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

type openLibraryResponse struct {
	Docs []struct {
		Key                 string   `json:"key"`
		Title               string   `json:"title"`
		AuthorName          []string `json:"author_name"`
		CoverID             int      `json:"cover_i"`
		ISBN                []string `json:"isbn"`
		NumberOfPagesMedian int      `json:"number_of_pages_median"`
		Publisher           []string `json:"publisher"`
		Language            []string `json:"language"`
	} `json:"docs"`
}

func (s *CatalogService) searchOpenLibrary(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("%s?q=%s&limit=%d", s.openLibraryURL, url.QueryEscape(query), resultsPerSource)

	var payload openLibraryResponse
	if err := s.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(payload.Docs))
	for _, doc := range payload.Docs {
		if doc.Title == "" {
			continue
		}
		r := SearchResult{
			ID:        doc.Key,
			Title:     doc.Title,
			PageCount: doc.NumberOfPagesMedian,
			Source:    SourceOpenLibrary,
		}
		if len(doc.AuthorName) > 0 {
			r.Author = doc.AuthorName[0]
		}
		if doc.CoverID > 0 {
			r.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", doc.CoverID)
		}
		if len(doc.ISBN) > 0 {
			r.ISBN = doc.ISBN[0]
		}
		if len(doc.Publisher) > 0 {
			r.Publisher = doc.Publisher[0]
		}
		if len(doc.Language) > 0 {
			r.Language = doc.Language[0]
		}
		results = append(results, r)
	}
	return results, nil
}

type googleBooksResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title      string   `json:"title"`
			Authors    []string `json:"authors"`
			Publisher  string   `json:"publisher"`
			PageCount  int      `json:"pageCount"`
			Language   string   `json:"language"`
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (s *CatalogService) searchGoogleBooks(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("%s?q=%s&maxResults=%d", s.googleBooksURL, url.QueryEscape(query), resultsPerSource)

	var payload googleBooksResponse
	if err := s.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		info := item.VolumeInfo
		if info.Title == "" {
			continue
		}
		r := SearchResult{
			ID:        item.ID,
			Title:     info.Title,
			CoverURL:  info.ImageLinks.Thumbnail,
			PageCount: info.PageCount,
			Publisher: info.Publisher,
			Language:  info.Language,
			Source:    SourceGoogleBooks,
		}
		if len(info.Authors) > 0 {
			r.Author = info.Authors[0]
		}
		for _, ident := range info.IndustryIdentifiers {
			if ident.Type == "ISBN_13" {
				r.ISBN = ident.Identifier
				break
			}
			if r.ISBN == "" {
				r.ISBN = ident.Identifier
			}
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *CatalogService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
