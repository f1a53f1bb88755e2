package rapidapi

import "fmt"

// API hosts
const (
	IMAGE_SEARCH_HOST = "google-api31.p.rapidapi.com"
	MOVIES_HOST       = "moviesdatabase.p.rapidapi.com"
)

// Image Search Types

type ImageSearchRequest struct {
	Text       string `json:"text"`
	SafeSearch string `json:"safesearch"`
	Region     string `json:"region"`
	Color      string `json:"color"`
	Size       string `json:"size"`
	TypeImage  string `json:"type_image"`
	Layout     string `json:"layout"`
	MaxResults int    `json:"max_results"`
}

type ImageSearchResponse struct {
	Result []ImageResult `json:"result"`
}

type ImageResult struct {
	Title  string `json:"title"`
	Image  string `json:"image"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Movies Database Types

type TitleResponse struct {
	Results *Title `json:"results"`
}

type Title struct {
	ID          string       `json:"id"`
	TitleText   *TitleText   `json:"titleText"`
	ReleaseDate *ReleaseDate `json:"releaseDate"`
}

type TitleText struct {
	Text string `json:"text"`
}

type ReleaseDate struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// String formats the date as Y-M-D without padding.
func (d ReleaseDate) String() string {
	return fmt.Sprintf("%d-%d-%d", d.Year, d.Month, d.Day)
}
