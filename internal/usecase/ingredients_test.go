package usecase

import (
	"strings"
	"testing"
)

func TestExtractIngredientText(t *testing.T) {
	t.Run("empty document yields empty string", func(t *testing.T) {
		if got := ExtractIngredientText(""); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("document with no evidence yields empty string", func(t *testing.T) {
		doc := `<html><body><h1>Shampoo</h1><p>Great for daily use.</p></body></html>`
		if got := ExtractIngredientText(doc); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("reads structured data block", func(t *testing.T) {
		doc := `<html><head>
			<script type="application/ld+json">
			{"@type":"Product","name":"Cleanser","ingredients":"Water, Glycerin, Cocamidopropyl Betaine, Citric Acid"}
			</script>
		</head><body></body></html>`

		got := ExtractIngredientText(doc)
		if !strings.Contains(got, "cocamidopropyl betaine") {
			t.Errorf("got %q, want substring cocamidopropyl betaine", got)
		}
	})

	t.Run("reads nested structured data", func(t *testing.T) {
		doc := `<script type="application/ld+json">
		{"@graph":[{"@type":"Product","offers":{"ingredients":"Aqua, Sodium Chloride, Propolis Extract"}}]}
		</script>`

		got := ExtractIngredientText(doc)
		if !strings.Contains(got, "propolis extract") {
			t.Errorf("got %q, want substring propolis extract", got)
		}
	})

	t.Run("skips malformed structured data without failing", func(t *testing.T) {
		doc := `<script type="application/ld+json">{not valid json</script>
		<meta name="ingredients" content="Water, Shea Butter, Tocopherol">`

		got := ExtractIngredientText(doc)
		if !strings.Contains(got, "shea butter") {
			t.Errorf("got %q, want meta tag fallback with shea butter", got)
		}
	})

	t.Run("reads retailer state blob", func(t *testing.T) {
		doc := `<script>window.__STATE__={"product":{"ingredient_desc":"Water, Dimethicone, Benzophenone-4, Fragrance"}}</script>`

		got := ExtractIngredientText(doc)
		if !strings.Contains(got, "benzophenone-4") {
			t.Errorf("got %q, want substring benzophenone-4", got)
		}
	})

	t.Run("ignores short retailer state values", func(t *testing.T) {
		doc := `<script>{"ingredients":"short"}</script>`
		if got := ExtractIngredientText(doc); got != "" {
			t.Errorf("got %q, want empty for sub-minimum value", got)
		}
	})

	t.Run("reads meta tag by property", func(t *testing.T) {
		doc := `<meta property="product:ingredients" content="Aqua, Lanolin Alcohol, Cetyl Alcohol"/>`

		got := ExtractIngredientText(doc)
		if !strings.Contains(got, "lanolin alcohol") {
			t.Errorf("got %q, want substring lanolin alcohol", got)
		}
	})

	t.Run("keyword window captures surrounding text", func(t *testing.T) {
		doc := `<html><body><div><h2>Ingredients</h2>
		<p>Water (Aqua), Glycerin, Niacinamide, Panthenol, Sodium Hyaluronate,
		Sorbitan Sesquioleate, Phenoxyethanol, Ethylhexylglycerin.</p>
		</div></body></html>`

		got := ExtractIngredientText(doc)
		if !strings.Contains(got, "sorbitan sesquioleate") {
			t.Errorf("got %q, want substring sorbitan sesquioleate", got)
		}
	})

	t.Run("keyword window rejects thin matches", func(t *testing.T) {
		doc := `<a href="/faq">Ingredients</a>`
		if got := ExtractIngredientText(doc); got != "" {
			t.Errorf("got %q, want empty for keyword with no surrounding text", got)
		}
	})

	t.Run("longest candidate wins across strategies", func(t *testing.T) {
		doc := `<meta name="ingredients" content="Water, Glycerin">
		<script type="application/ld+json">
		{"ingredients":"Water, Glycerin, Butylene Glycol, Squalane, Ceramide NP, Cholesterol, Phytosphingosine, Carbomer, Xanthan Gum"}
		</script>`

		got := ExtractIngredientText(doc)
		if !strings.Contains(got, "phytosphingosine") {
			t.Errorf("got %q, want the longer structured-data candidate", got)
		}
	})

	t.Run("decodes html entities", func(t *testing.T) {
		doc := `<meta name="ingredients" content="Water &amp; Glycerin &amp; Dimethicone">`

		got := ExtractIngredientText(doc)
		if !strings.Contains(got, "water & glycerin") {
			t.Errorf("got %q, want decoded entities", got)
		}
	})

	t.Run("result is normalized", func(t *testing.T) {
		doc := `<meta name="ingredients" content="  WATER,   Glycerin,	Panthenol ">`

		got := ExtractIngredientText(doc)
		if got != "water, glycerin, panthenol" {
			t.Errorf("got %q, want normalized lowercase collapsed text", got)
		}
	})

	t.Run("tolerates truncated html", func(t *testing.T) {
		doc := `<html><body><meta name="ingredients" content="Water, Glycerin, Allantoin"><div><span`

		got := ExtractIngredientText(doc)
		if !strings.Contains(got, "allantoin") {
			t.Errorf("got %q, want extraction despite truncation", got)
		}
	})
}

func TestExtractNearKeywords(t *testing.T) {
	t.Run("multiple keyword occurrences all produce windows", func(t *testing.T) {
		filler := strings.Repeat("x ", 50)
		doc := "ingredients " + filler + " and later composition " + filler

		hits := extractNearKeywords(doc)
		if len(hits) < 2 {
			t.Errorf("got %d windows, want at least 2", len(hits))
		}
	})

	t.Run("window respects document bounds", func(t *testing.T) {
		doc := "ingredients: water, glycerin, squalane, niacinamide, panthenol"
		hits := extractNearKeywords(doc)
		if len(hits) != 1 {
			t.Fatalf("got %d windows, want 1", len(hits))
		}
		if !strings.Contains(hits[0], "niacinamide") {
			t.Errorf("window %q missing trailing text", hits[0])
		}
	})
}
