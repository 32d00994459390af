package serpapi

import (
	"net/url"
	"strings"

	"github.com/shelfsafe/backend/internal/domain"
)

// shoppingResponse represents the raw SerpAPI google_shopping payload
type shoppingResponse struct {
	ShoppingResults []shoppingResult `json:"shopping_results"`
}

// shoppingResult is a single raw listing record from the search index
type shoppingResult struct {
	Title          string   `json:"title"`
	ExtractedPrice *float64 `json:"extracted_price,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Reviews        *int     `json:"reviews,omitempty"`
	Link           string   `json:"link,omitempty"`
	ProductLink    string   `json:"product_link,omitempty"`
	Brand          string   `json:"brand,omitempty"`
	Source         string   `json:"source,omitempty"`
	Thumbnail      string   `json:"thumbnail,omitempty"`
}

// locationResult is a single entry from the SerpAPI locations endpoint
type locationResult struct {
	Name          string `json:"name"`
	CanonicalName string `json:"canonical_name"`
}

// mapShoppingResult converts a raw search record to our domain listing model.
// The product_link is preferred over the generic link when both are present.
func mapShoppingResult(raw shoppingResult) domain.CandidateListing {
	link := raw.ProductLink
	if link == "" {
		link = raw.Link
	}

	source := strings.TrimSpace(raw.Source)
	if source == "" {
		source = HostOf(link)
	}

	return domain.CandidateListing{
		Name:        strings.TrimSpace(raw.Title),
		Price:       raw.ExtractedPrice,
		Rating:      raw.Rating,
		ReviewCount: raw.Reviews,
		Link:        link,
		Brand:       strings.TrimSpace(raw.Brand),
		Source:      source,
		Thumbnail:   raw.Thumbnail,
	}
}

// HostOf extracts the hostname of a URL without its www prefix.
// Returns "" for unparseable input.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
