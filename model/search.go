package model

// Author identifies the channel that published a search result.
type Author struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Thumbnail is one image variant for a search result, smallest first.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SearchResultItem is one candidate media item returned by the search provider.
// Produced by the provider adapter, consumed read-only by the UI.
type SearchResultItem struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Duration   string      `json:"duration,omitempty"` // "m:ss" or "h:mm:ss"
	URL        string      `json:"url"`
	Author     *Author     `json:"author,omitempty"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

// SearchResponse is the /api/search response body.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
}

// ErrorResponse is the JSON error body used before any stream bytes are sent.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the /api/health response body.
type HealthResponse struct {
	OK bool `json:"ok"`
}
