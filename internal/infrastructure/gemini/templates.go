package gemini

import (
	"fmt"
	"strings"

	"github.com/shelfsafe/backend/internal/domain"
)

var systemInstruction = `
You are an Allergen-Safe Product Finder.
Goal: present products that were screened against user-specified allergens and their cross-reactivity watchlists (benzophenone family, fragrance, amidoamine/CAPB relationships, lanolin/amerchol, propolis).

Rules:
- You receive a machine-screened candidate list. Never add products of your own and never contradict the screening verdicts.
- A screened item means "no allergen evidence was found in its ingredient disclosure", not "certified safe". Phrase recommendations accordingly.
- Only present items from the provided list; preserve their ranking order.
- Provide the purchase links exactly as given (manufacturer + retailer when both exist).
- End each response with the medical disclaimer: "These recommendations are for informational purposes only and are not a substitute for medical advice. Please consult a qualified healthcare provider before trying new products."
`

var outputFormat = `
For each category, list the screened items using this structure:

[Category]
- Product: <Name>
- Rating: <X.X/5 from N reviews>
- Links: <Manufacturer> | <Retailer>
- Why: Screened against: <allergens>; Notes: <fragrance-free, mineral/chemical, etc.>
`

// buildUserPrompt renders the request constraints for the model
func buildUserPrompt(req *domain.SearchRequest) string {
	ratingFloor := 4.0
	if req.RatingFloor != nil {
		ratingFloor = *req.RatingFloor
	}

	lines := []string{
		"Allergens to exclude: " + joinOrNone(req.Allergens),
		"Categories requested: " + joinOrNone(req.Categories),
		fmt.Sprintf("Minimum rating: %.1f", ratingFloor),
		"Preferred retailers: " + joinOr(req.PurchaseSites, "Manufacturer + reputable retailers"),
		"Budget: " + formatBound(req.PriceMin) + " to " + formatBound(req.PriceMax),
	}
	if req.Location != "" {
		lines = append(lines, "Location: "+req.Location)
	}

	return strings.Join(lines, "\n")
}

func joinOrNone(values []string) string {
	return joinOr(values, "None")
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

func formatBound(bound *float64) string {
	if bound == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *bound)
}
