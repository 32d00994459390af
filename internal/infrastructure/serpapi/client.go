package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shelfsafe/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the SerpAPI shopping search engine
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	resultCap   int
	debug       bool
}

// NewClient creates a new SerpAPI client. resultCap bounds the number of raw
// listings requested per query.
func NewClient(apiKey, baseURL string, resultCap int) *Client {
	if resultCap <= 0 {
		resultCap = 12
	}

	// SerpAPI meters searches per plan; 1 req/sec with a small burst keeps us
	// well inside every tier while the pipeline's politeness delays do the rest.
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient: &http.Client{
			// A hung upstream call must not stall the pipeline indefinitely.
			Timeout: 20 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
		resultCap:   resultCap,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ShelfSafe/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}

	return resp, nil
}

// SearchProducts runs a google_shopping query and returns normalized listings.
// A non-empty location is canonicalized first; if the lookup fails or the
// biased search is rejected, the same query is retried without location bias.
func (c *Client) SearchProducts(ctx context.Context, query, location string) ([]domain.CandidateListing, error) {
	canonical := ""
	if location != "" {
		resolved, err := c.CanonicalizeLocation(ctx, location)
		if err != nil {
			log.Printf("[SERP] Location lookup failed for %q, searching without bias: %v", location, err)
		} else {
			canonical = resolved
		}
	}

	listings, err := c.search(ctx, query, canonical)
	if err != nil && canonical != "" && errors.Is(err, domain.ErrSearchUnavailable) {
		log.Printf("[SERP] Biased search rejected for %q, retrying without location", query)
		listings, err = c.search(ctx, query, "")
	}
	if err != nil {
		return nil, err
	}

	return listings, nil
}

// search executes a single shopping query against SerpAPI
func (c *Client) search(ctx context.Context, query, location string) ([]domain.CandidateListing, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/search.json", c.baseURL)
	params := url.Values{}
	params.Add("engine", "google_shopping")
	params.Add("q", query)
	params.Add("gl", "us")
	params.Add("hl", "en")
	params.Add("num", strconv.Itoa(c.resultCap))
	params.Add("api_key", c.apiKey)
	if location != "" {
		params.Add("location", location)
	}

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	if c.debug {
		log.Printf("[SERP] Searching: %q (location: %q)", query, location)
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrSearchUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[SERP] API error - Status: %d, Body: %s", resp.StatusCode, truncateForLog(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchUnavailable, resp.StatusCode)
	}

	var searchResp shoppingResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrSearchUnavailable, err)
	}

	listings := make([]domain.CandidateListing, 0, len(searchResp.ShoppingResults))
	for _, raw := range searchResp.ShoppingResults {
		listings = append(listings, mapShoppingResult(raw))
	}

	if c.debug {
		log.Printf("[SERP] Found %d listings for query: %q", len(listings), query)
	}

	return listings, nil
}

// CanonicalizeLocation resolves a free-text location to SerpAPI's canonical
// name. Best-effort: callers drop the bias entirely on failure.
func (c *Client) CanonicalizeLocation(ctx context.Context, location string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/locations.json", c.baseURL)
	params := url.Values{}
	params.Add("q", location)
	params.Add("limit", "1")

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", domain.ErrLocationNotFound, resp.StatusCode)
	}

	var locations []locationResult
	if err := json.NewDecoder(resp.Body).Decode(&locations); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLocationNotFound, err)
	}

	if len(locations) == 0 || locations[0].CanonicalName == "" {
		return "", domain.ErrLocationNotFound
	}

	return locations[0].CanonicalName, nil
}

// truncateForLog bounds upstream error bodies in log lines
func truncateForLog(body []byte) string {
	const max = 300
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
