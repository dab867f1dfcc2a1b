package catalog

// Sources a search result can come from.
const (
	SourceOpenLibrary = "openlibrary"
	SourceGoogleBooks = "googlebooks"
)

// SearchResult is the normalized shape both catalog sources map into.
type SearchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	CoverURL  string `json:"cover_image_url"`
	ISBN      string `json:"isbn"`
	PageCount int    `json:"page_count"`
	Publisher string `json:"publisher"`
	Language  string `json:"language"`
	Source    string `json:"source"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}
