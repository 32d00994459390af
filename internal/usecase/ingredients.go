package usecase

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Extraction window around ingredient keywords, in bytes of raw HTML
const (
	keywordWindowBefore = 800
	keywordWindowAfter  = 2000
	minWindowTextLen    = 40
	minInlineValueLen   = 10
)

// ingredientKeywords are the literals whose surroundings may hold an
// ingredient declaration on pages without any machine-readable markup
var ingredientKeywords = []string{"ingredients", "inci", "composition", "what's inside"}

// retailerStateRegexes match ingredient fields inside inline script/state
// blobs. Pattern matching instead of full JSON parsing: these blobs are often
// truncated or invalid elsewhere in the page.
var retailerStateRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"ingredients"\s*:\s*"([^"]{10,})"`),
	regexp.MustCompile(`(?i)"ingredient_desc"\s*:\s*"([^"]{10,})"`),
	regexp.MustCompile(`(?i)"ingredientsText"\s*:\s*"([^"]{10,})"`),
	regexp.MustCompile(`(?i)"item_ingredients"\s*:\s*"([^"]{10,})"`),
}

var tagStripRegex = regexp.MustCompile(`<[^>]+>`)

// extractionStrategy is a total function from raw HTML to zero or more
// candidate ingredient strings. Strategies never fail; they return nothing.
type extractionStrategy func(doc string) []string

// extractionStrategies in fixed priority order. All strategies always run;
// the longest surviving candidate wins regardless of which pool produced it.
var extractionStrategies = []extractionStrategy{
	extractFromStructuredData,
	extractFromRetailerState,
	extractFromMetaTags,
	extractNearKeywords,
}

// ExtractIngredientText produces the best-guess ingredient declaration from a
// raw HTML document. Returns "" when no evidence is found; malformed or
// unrelated input is never an error. The result is normalized (lowercase,
// collapsed whitespace) and ready for allergen matching.
//
// Longest wins: ingredient declarations are verbose, so a short match is more
// likely a sidebar keyword mention than the actual declaration block.
func ExtractIngredientText(doc string) string {
	if doc == "" {
		return ""
	}

	var pool []string
	for _, strategy := range extractionStrategies {
		pool = append(pool, strategy(doc)...)
	}

	return NormalizeTerm(longestCandidate(pool))
}

// longestCandidate decodes entities, collapses whitespace and picks the
// single longest string across all strategy pools
func longestCandidate(pool []string) string {
	best := ""
	for _, candidate := range pool {
		cleaned := html.UnescapeString(candidate)
		cleaned = strings.TrimSpace(whitespaceRegex.ReplaceAllString(cleaned, " "))
		if len(cleaned) > len(best) {
			best = cleaned
		}
	}
	return best
}

// extractFromStructuredData scans embedded ld+json product metadata blocks and
// collects every string-valued "ingredients" field, however deeply nested.
// Blocks that fail to parse are skipped, not fatal.
func extractFromStructuredData(doc string) []string {
	var hits []string

	z := xhtml.NewTokenizer(strings.NewReader(doc))
	inLDJSON := false
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return hits
		case xhtml.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" {
				inLDJSON = false
				continue
			}
			inLDJSON = false
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "type" && strings.EqualFold(string(val), "application/ld+json") {
					inLDJSON = true
				}
			}
		case xhtml.TextToken:
			if !inLDJSON {
				continue
			}
			var parsed interface{}
			if err := json.Unmarshal(z.Text(), &parsed); err != nil {
				continue
			}
			collectIngredientFields(parsed, &hits)
		case xhtml.EndTagToken:
			inLDJSON = false
		}
	}
}

// collectIngredientFields recursively walks decoded JSON, keeping any field
// whose key is "ingredients" and whose value is a plain string
func collectIngredientFields(v interface{}, hits *[]string) {
	switch val := v.(type) {
	case map[string]interface{}:
		if s, ok := val["ingredients"].(string); ok && s != "" {
			*hits = append(*hits, s)
		}
		for _, child := range val {
			collectIngredientFields(child, hits)
		}
	case []interface{}:
		for _, child := range val {
			collectIngredientFields(child, hits)
		}
	}
}

// extractFromRetailerState scans inline script/state blobs for the known
// retailer ingredient key variants
func extractFromRetailerState(doc string) []string {
	var hits []string
	for _, re := range retailerStateRegexes {
		for _, m := range re.FindAllStringSubmatch(doc, -1) {
			hits = append(hits, m[1])
		}
	}
	return hits
}

// extractFromMetaTags scans <meta> tags named or propertied "ingredients" or
// "product:ingredients"
func extractFromMetaTags(doc string) []string {
	var hits []string

	z := xhtml.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			return hits
		}
		if tt != xhtml.StartTagToken && tt != xhtml.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "meta" {
			continue
		}

		isIngredients := false
		content := ""
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			switch string(key) {
			case "name", "property":
				v := strings.ToLower(string(val))
				if v == "ingredients" || v == "product:ingredients" {
					isIngredients = true
				}
			case "content":
				content = string(val)
			}
		}
		if isIngredients && len(content) >= minInlineValueLen {
			hits = append(hits, content)
		}
	}
}

// extractNearKeywords takes a bounded window of text around every occurrence
// of an ingredient keyword, strips markup and keeps windows with enough
// surviving text to plausibly be a declaration
func extractNearKeywords(doc string) []string {
	var hits []string

	lower := strings.ToLower(doc)
	for _, keyword := range ingredientKeywords {
		idx := 0
		for {
			rel := strings.Index(lower[idx:], keyword)
			if rel < 0 {
				break
			}
			at := idx + rel

			start := at - keywordWindowBefore
			if start < 0 {
				start = 0
			}
			end := at + keywordWindowAfter
			if end > len(lower) {
				end = len(lower)
			}

			window := tagStripRegex.ReplaceAllString(lower[start:end], " ")
			window = strings.TrimSpace(whitespaceRegex.ReplaceAllString(window, " "))
			if len(window) > minWindowTextLen {
				hits = append(hits, window)
			}

			idx = at + len(keyword)
		}
	}

	return hits
}
