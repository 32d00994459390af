package domain

// SearchRequest represents an allergen-safe product search request
type SearchRequest struct {
	Allergens     []string `json:"allergens" binding:"required"`
	Categories    []string `json:"categories" binding:"required"`
	RatingFloor   *float64 `json:"rating_floor,omitempty"` // defaults to 4.0
	PurchaseSites []string `json:"purchase_sites,omitempty"`
	PriceMin      *float64 `json:"price_min,omitempty"`
	PriceMax      *float64 `json:"price_max,omitempty"`
	Location      string   `json:"location,omitempty"`
}

// SearchResponse is the success payload for a product search
type SearchResponse struct {
	OK      bool             `json:"ok"`
	Results []CategoryResult `json:"results"`
	Message string           `json:"message"`
}

// ErrorResponse is the failure payload; Error carries a stable category tag
// and Detail carries diagnostics. The endpoint never returns an HTML error page.
type ErrorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
