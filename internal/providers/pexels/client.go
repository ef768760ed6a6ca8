// Package pexels is a minimal client for the Pexels video search API.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shortreel/internal/domain"
	"shortreel/internal/infra"
)

const defaultBaseURL = "https://api.pexels.com"

// Options controls how the Pexels client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client issues authenticated search requests against the Pexels API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient builds a Pexels client.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("pexels: api key is required")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

type searchResponse struct {
	Videos []struct {
		ID         int64   `json:"id"`
		Duration   float64 `json:"duration"`
		VideoFiles []struct {
			Quality string  `json:"quality"`
			Width   int     `json:"width"`
			Height  int     `json:"height"`
			FPS     float64 `json:"fps"`
			Link    string  `json:"link"`
		} `json:"video_files"`
	} `json:"videos"`
}

// SearchVideos queries the video catalog. An empty orientation omits the
// orientation filter entirely.
func (c *Client) SearchVideos(ctx context.Context, query string, orientation domain.Orientation, perPage int) ([]domain.ClipCandidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))
	if orientation != "" {
		params.Set("orientation", string(orientation))
	}

	endpoint := c.baseURL + "/videos/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pexels: build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels: search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels: search %q: unexpected status %d", query, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("pexels: decode response: %w", err)
	}

	candidates := make([]domain.ClipCandidate, 0, len(payload.Videos))
	for _, v := range payload.Videos {
		candidate := domain.ClipCandidate{ID: v.ID, Duration: v.Duration}
		for _, f := range v.VideoFiles {
			if candidate.FPS == 0 && f.FPS > 0 {
				candidate.FPS = f.FPS
			}
			candidate.Files = append(candidate.Files, domain.ClipFile{
				Quality: f.Quality,
				Width:   f.Width,
				Height:  f.Height,
				Link:    f.Link,
			})
		}
		candidates = append(candidates, candidate)
	}
	if c.logger != nil {
		c.logger.Debug().Str("query", query).Int("results", len(candidates)).Msg("pexels: search done")
	}
	return candidates, nil
}
