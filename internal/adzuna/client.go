// Package adzuna provides a thin client for the Adzuna job-search API,
// limited to the paginated search endpoint the evidence orchestrator needs.
package adzuna

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.adzuna.com/v1/api/jobs"

// ErrUnauthenticated is returned when no app credentials are configured.
// The orchestrator treats it as "market evidence unavailable".
var ErrUnauthenticated = errors.New("adzuna: app id and key are required")

// Client calls the Adzuna search API.
type Client struct {
	appID      string
	appKey     string
	country    string
	pageSize   int
	baseURL    string
	httpClient *http.Client
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	AppID    string
	AppKey   string
	Country  string // two-letter country code, default "ca"
	PageSize int    // results per page, default 20, max 50
	BaseURL  string // overridable for tests
	Timeout  time.Duration
}

// NewClient creates an Adzuna client. Credentials may be empty; calls then
// fail with ErrUnauthenticated so the caller can degrade.
func NewClient(opts Options) *Client {
	country := strings.ToLower(strings.TrimSpace(opts.Country))
	if country == "" {
		country = "ca"
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		appID:      opts.AppID,
		appKey:     opts.AppKey,
		country:    country,
		pageSize:   pageSize,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.appID != "" && c.appKey != ""
}

// Posting is one job posting from the search endpoint.
type Posting struct {
	ID          string
	Title       string
	Company     string
	Location    string
	Description string
	RedirectURL string
}

// searchResponse mirrors the subset of the Adzuna payload we read.
type searchResponse struct {
	Results []struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Company struct {
			DisplayName string `json:"display_name"`
		} `json:"company"`
		Location struct {
			DisplayName string `json:"display_name"`
		} `json:"location"`
		Description string `json:"description"`
		RedirectURL string `json:"redirect_url"`
	} `json:"results"`
}

// SearchPage fetches one page (1-based) of postings for a role and location.
func (c *Client) SearchPage(ctx context.Context, role, location string, page int) ([]Posting, error) {
	if !c.Configured() {
		return nil, ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}

	endpoint := fmt.Sprintf("%s/%s/search/%d", c.baseURL, c.country, page)
	params := url.Values{}
	params.Set("app_id", c.appID)
	params.Set("app_key", c.appKey)
	params.Set("what", role)
	params.Set("results_per_page", fmt.Sprintf("%d", c.pageSize))
	params.Set("content-type", "application/json")
	if location != "" {
		params.Set("where", location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch postings page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("adzuna search returned status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	postings := make([]Posting, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.ID == "" || r.Description == "" {
			continue
		}
		postings = append(postings, Posting{
			ID:          r.ID,
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			RedirectURL: r.RedirectURL,
		})
	}
	return postings, nil
}
