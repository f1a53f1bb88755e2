// Package rapidapi talks to the RapidAPI image-search and movies-database APIs.
package rapidapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/hunterjsb/k9/internal/metrics"
)

var (
	// ErrStatus is returned for any non-200 API response.
	ErrStatus = errors.New("API request failed")

	// ErrNoImage is returned when an image search has no usable result.
	ErrNoImage = errors.New("no image found")
)

// Client is a rate-limited, cached RapidAPI client. It is safe for concurrent use.
type Client struct {
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	cache   *Cache
	metrics *metrics.Metrics

	imageSearchURL string
	moviesURL      string
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBaseURLs points the client at other hosts, e.g. a test server.
func WithBaseURLs(imageSearchURL, moviesURL string) Option {
	return func(c *Client) {
		c.imageSearchURL = imageSearchURL
		c.moviesURL = moviesURL
	}
}

// NewClient creates a client allowing rps requests per second across all endpoints.
func NewClient(apiKey string, rps float64, opts ...Option) *Client {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		apiKey:         apiKey,
		http:           &http.Client{Timeout: 10 * time.Second},
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
		imageSearchURL: "https://" + IMAGE_SEARCH_HOST,
		moviesURL:      "https://" + MOVIES_HOST,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// makeAPIRequest sends a request with the RapidAPI headers and decodes a JSON response
// into result.
func (c *Client) makeAPIRequest(ctx context.Context, endpoint, host, method, reqURL string, payload, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", host)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveAPI(endpoint, time.Since(start))
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w with status %d", ErrStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, result)
}

// SearchImage returns the URL of the first image found for text.
func (c *Client) SearchImage(ctx context.Context, text string) (string, error) {
	if cached, ok := c.cache.GetImage(text); ok {
		return cached, nil
	}

	payload := ImageSearchRequest{
		Text:       text,
		SafeSearch: "off",
		Region:     "wt-wt",
		MaxResults: 1,
	}

	var resp ImageSearchResponse
	if err := c.makeAPIRequest(ctx, "imagesearch", IMAGE_SEARCH_HOST, http.MethodPost, c.imageSearchURL+"/imagesearch", payload, &resp); err != nil {
		return "", err
	}

	if len(resp.Result) == 0 || resp.Result[0].Image == "" {
		return "", ErrNoImage
	}

	image := resp.Result[0].Image
	c.cache.SetImage(text, image)
	return image, nil
}

// GetReleaseDate returns the release date of the movies-database title titleID.
func (c *Client) GetReleaseDate(ctx context.Context, titleID string) (*ReleaseDate, error) {
	if date, ok := c.cache.GetReleaseDate(titleID); ok {
		return date, nil
	}

	endpoint := fmt.Sprintf("/titles/%s", url.PathEscape(titleID))

	var resp TitleResponse
	if err := c.makeAPIRequest(ctx, "titles", MOVIES_HOST, http.MethodGet, c.moviesURL+endpoint, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Results == nil || resp.Results.ReleaseDate == nil {
		return nil, fmt.Errorf("no release date for title %s", titleID)
	}

	c.cache.SetReleaseDate(titleID, resp.Results.ReleaseDate)
	return resp.Results.ReleaseDate, nil
}
