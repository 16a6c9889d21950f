package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/ratings"
)

// DefaultBaseURL is the public ratings host.
const DefaultBaseURL = "https://barttorvik.com"

// BarttorvikClient downloads season team-results exports.
type BarttorvikClient struct {
	http    *RateLimitedClient
	baseURL string
}

// NewBarttorvikClient builds a season downloader over the rate-limited client.
func NewBarttorvikClient(httpClient *RateLimitedClient, baseURL string) (*BarttorvikClient, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &BarttorvikClient{http: httpClient, baseURL: baseURL}, nil
}

// FetchSeason downloads and parses one season's ratings export. A 404 maps
// to models.ErrNotFound so callers can treat unpublished seasons as absent
// rather than failed.
func (c *BarttorvikClient) FetchSeason(ctx context.Context, seasonYear int) ([]models.RatingSnapshot, error) {
	url := fmt.Sprintf("%s/%d_team_results.json", c.baseURL, seasonYear)
	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season %d ratings: %w", seasonYear, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("season %d ratings fetch returned status %d", seasonYear, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read season %d payload: %w", seasonYear, err)
	}
	return ratings.ParseBarttorvik(payload, seasonYear)
}
