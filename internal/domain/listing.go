package domain

// SafetyVerdict classifies the outcome of screening a single listing
type SafetyVerdict string

const (
	// VerdictSafe means no declared allergen or watchlist term was found in
	// the ingredient evidence. This is absence of evidence, not a certification.
	VerdictSafe SafetyVerdict = "safe"

	// VerdictAllergenFound means a declared allergen (or one of its direct
	// synonyms) appeared in the extracted ingredient text.
	VerdictAllergenFound SafetyVerdict = "unsafe-allergen-found"

	// VerdictWatchlist means a cross-reactive watchlist term appeared in the
	// extracted ingredient text.
	VerdictWatchlist SafetyVerdict = "unsafe-watchlist"
)

// CandidateListing represents a normalized shopping listing from the search
// index. Produced fresh per search call and never mutated after mapping.
type CandidateListing struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price,omitempty"`
	Rating      *float64 `json:"rating,omitempty"` // 0-5 when present
	ReviewCount *int     `json:"reviews,omitempty"`
	Link        string   `json:"link"`
	Brand       string   `json:"brand,omitempty"`
	Source      string   `json:"source"` // retailer host or source label
	Thumbnail   string   `json:"thumbnail,omitempty"`
}

// ListingLinks groups the purchase links for a screened listing
type ListingLinks struct {
	Primary      string `json:"primary"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// ScreenedListing is a candidate that survived the allergen screening pipeline.
// Created once per surviving candidate; no further matching occurs after that.
type ScreenedListing struct {
	Name        string        `json:"name"`
	Price       *float64      `json:"price,omitempty"`
	Rating      *float64      `json:"rating,omitempty"`
	ReviewCount *int          `json:"reviews,omitempty"`
	Links       ListingLinks  `json:"links"`
	Source      string        `json:"source"`
	Verdict     SafetyVerdict `json:"verdict"`
	MatchedTerm string        `json:"matchedTerm,omitempty"`
	// Screened is true when ingredient evidence was actually found for this
	// listing. False means "not screenable", which still passes (documented
	// limitation: absence of evidence is not evidence of absence).
	Screened  bool   `json:"screened"`
	Priority  int    `json:"priority"` // 1 for preferred-retailer hosts, else 0
	Thumbnail string `json:"thumbnail,omitempty"`
	Image     string `json:"image,omitempty"` // resolved absolute HTTPS image URL
}

// CategoryResult holds the ranked shortlist for one requested category.
// Items are ordered by priority, then rating, descending.
type CategoryResult struct {
	Category string            `json:"category"`
	Items    []ScreenedListing `json:"items"`
	Error    string            `json:"error,omitempty"` // set when both search queries failed
}
