package domain

import "context"

// ShoppingClient defines the interface for the external shopping search index
type ShoppingClient interface {
	// SearchProducts runs a shopping query with an optional free-text location
	// bias. Location handling is best-effort: an unusable location falls back
	// to an unbiased query rather than failing the call.
	SearchProducts(ctx context.Context, query, location string) ([]CandidateListing, error)
}

// PageFetcher defines the interface for retrieving retailer/manufacturer pages
// as opaque HTML text
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// ImageCache defines the interface for the process-wide image resolution cache.
// A cached empty value is a valid negative result ("no image found").
type ImageCache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Summarizer defines the optional downstream natural-language collaborator.
// It receives the already-screened results and never participates in the
// allergen-safety decision.
type Summarizer interface {
	Summarize(ctx context.Context, req *SearchRequest, results []CategoryResult) (string, error)
}
