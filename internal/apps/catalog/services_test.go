package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/booklyapp/bookly-server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openLibraryPayload = `{
	"docs": [
		{
			"key": "/works/OL893415W",
			"title": "Dune",
			"author_name": ["Frank Herbert"],
			"cover_i": 11481354,
			"isbn": ["9780441172719"],
			"number_of_pages_median": 604,
			"publisher": ["Ace Books"],
			"language": ["eng"]
		},
		{
			"key": "/works/OL27482W",
			"title": "Dune Messiah",
			"author_name": ["Frank Herbert"]
		}
	]
}`

const googleBooksPayload = `{
	"items": [
		{
			"id": "gK98gXR8onwC",
			"volumeInfo": {
				"title": "Dune",
				"authors": ["Frank Herbert"],
				"publisher": "Penguin",
				"pageCount": 616,
				"language": "en",
				"imageLinks": {"thumbnail": "http://books.google.com/dune.jpg"},
				"industryIdentifiers": [
					{"type": "ISBN_10", "identifier": "0441013597"},
					{"type": "ISBN_13", "identifier": "9780441013593"}
				]
			}
		}
	]
}`

func jsonServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newService(openLibrary, googleBooks string) *CatalogService {
	return NewCatalogService(&config.Config{
		OpenLibraryURL: openLibrary,
		GoogleBooksURL: googleBooks,
		CatalogTimeout: 2 * time.Second,
	})
}

func TestSearch_MergesAndPrefersGoogleBooks(t *testing.T) {
	ol := jsonServer(t, openLibraryPayload)
	gb := jsonServer(t, googleBooksPayload)
	svc := newService(ol.URL, gb.URL)

	results, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// "Dune" appears in both sources; the Google Books entry wins.
	assert.Equal(t, "Dune", results[0].Title)
	assert.Equal(t, SourceGoogleBooks, results[0].Source)
	assert.Equal(t, "9780441013593", results[0].ISBN)
	assert.Equal(t, 616, results[0].PageCount)

	assert.Equal(t, "Dune Messiah", results[1].Title)
	assert.Equal(t, SourceOpenLibrary, results[1].Source)
}

func TestSearch_MapsOpenLibraryFields(t *testing.T) {
	ol := jsonServer(t, openLibraryPayload)
	gb := failingServer(t)
	svc := newService(ol.URL, gb.URL)

	results, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, "/works/OL893415W", first.ID)
	assert.Equal(t, "Frank Herbert", first.Author)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/11481354-M.jpg", first.CoverURL)
	assert.Equal(t, "9780441172719", first.ISBN)
	assert.Equal(t, 604, first.PageCount)
	assert.Equal(t, "Ace Books", first.Publisher)
	assert.Equal(t, "eng", first.Language)
}

func TestSearch_ToleratesOneSourceDown(t *testing.T) {
	ol := failingServer(t)
	gb := jsonServer(t, googleBooksPayload)
	svc := newService(ol.URL, gb.URL)

	results, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SourceGoogleBooks, results[0].Source)
}

func TestSearch_AllSourcesDown(t *testing.T) {
	ol := failingServer(t)
	gb := failingServer(t)
	svc := newService(ol.URL, gb.URL)

	_, err := svc.Search(context.Background(), "dune")
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
}
