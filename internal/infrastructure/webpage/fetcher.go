package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shelfsafe/backend/internal/domain"
)

// maxBodyBytes bounds how much of an arbitrary retailer page we will read.
// Ingredient declarations and image meta tags live well within this.
const maxBodyBytes = 2 << 20 // 2 MiB

// Fetcher retrieves retailer/manufacturer pages as opaque HTML text
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

// NewFetcher creates a page fetcher with the given request timeout and
// bot-identifying User-Agent header.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if userAgent == "" {
		userAgent = "ShelfSafeBot/1.0 (+https://github.com/shelfsafe/backend)"
	}

	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// Fetch downloads a page and returns its body as text. Redirects are followed.
// Transport failures and non-2xx statuses return ErrPageUnavailable; callers
// degrade to "no evidence" rather than failing the pipeline.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPageUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", domain.ErrPageUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPageUnavailable, err)
	}

	return string(body), nil
}
