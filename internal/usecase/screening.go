package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shelfsafe/backend/internal/domain"
	"github.com/shelfsafe/backend/internal/infrastructure/serpapi"
	"golang.org/x/sync/errgroup"
)

// defaultRetailerAllowList restricts the fallback query to reputable
// retailers when the primary query comes back empty
var defaultRetailerAllowList = []string{"sephora.com", "ulta.com", "target.com", "amazon.com"}

// ScreeningConfig holds configuration for the screening pipeline
type ScreeningConfig struct {
	// ResultCap bounds kept listings per category; screening stops early
	// once reached to limit outbound page fetches
	ResultCap          int
	DefaultRatingFloor float64
	RetailerAllowList  []string

	// Politeness delays between outbound calls. A throughput trade-off to
	// respect third-party rate limits, not a correctness requirement.
	CandidateDelay time.Duration
	CategoryDelay  time.Duration
	FallbackDelay  time.Duration

	// DropUnknownRating switches the unknown-rating policy from
	// benefit-of-the-doubt (default) to exclusion
	DropUnknownRating bool

	EnablePriceFilter     bool
	EnableLocationBias    bool
	EnableImageEnrichment bool
	EnableDebugLogging    bool
}

// ScreeningService drives the per-category allergen screening pipeline:
// search, fallback search, rating/price filtering, per-candidate ingredient
// screening, ranking and image enrichment.
type ScreeningService struct {
	shopping domain.ShoppingClient
	fetcher  domain.PageFetcher
	images   *ImageResolver
	config   ScreeningConfig
}

// NewScreeningService creates a screening service with its collaborators.
// images may be nil when image enrichment is disabled.
func NewScreeningService(
	shopping domain.ShoppingClient,
	fetcher domain.PageFetcher,
	images *ImageResolver,
	config ScreeningConfig,
) *ScreeningService {
	if config.ResultCap <= 0 {
		config.ResultCap = 8
	}
	if config.DefaultRatingFloor <= 0 {
		config.DefaultRatingFloor = 4.0
	}
	if len(config.RetailerAllowList) == 0 {
		config.RetailerAllowList = defaultRetailerAllowList
	}

	return &ScreeningService{
		shopping: shopping,
		fetcher:  fetcher,
		images:   images,
		config:   config,
	}
}

// ScreenProducts runs the pipeline for every requested category, sequentially
// to bound outbound request concentration. Categories completed before a
// cancellation are preserved; the abandoned category is not emitted.
//
// The returned AllergenSet reflects the expanded screening vocabulary.
func (s *ScreeningService) ScreenProducts(ctx context.Context, req *domain.SearchRequest) ([]domain.CategoryResult, *AllergenSet, error) {
	if req == nil || len(req.Categories) == 0 {
		return nil, nil, domain.ErrInvalidRequest
	}

	allergens := ExpandAllergens(req.Allergens)
	floor := s.config.DefaultRatingFloor
	if req.RatingFloor != nil {
		floor = *req.RatingFloor
	}

	var results []domain.CategoryResult
	for i, raw := range req.Categories {
		category := strings.TrimSpace(raw)
		if category == "" {
			continue
		}

		if i > 0 {
			sleepCtx(ctx, s.config.CategoryDelay)
		}
		if ctx.Err() != nil {
			return results, allergens, ctx.Err()
		}

		result, err := s.screenCategory(ctx, category, allergens, req, floor)
		if err != nil {
			// Cancelled mid-category: no partial result for it.
			return results, allergens, err
		}
		results = append(results, result)
	}

	return results, allergens, nil
}

// screenCategory runs the state flow for one category. The only error it
// returns is context cancellation; search failures become a per-category
// error entry so the caller can tell "search failed" from "no candidates".
func (s *ScreeningService) screenCategory(
	ctx context.Context,
	category string,
	allergens *AllergenSet,
	req *domain.SearchRequest,
	floor float64,
) (domain.CategoryResult, error) {
	result := domain.CategoryResult{Category: category, Items: []domain.ScreenedListing{}}

	location := ""
	if s.config.EnableLocationBias {
		location = req.Location
	}

	candidates, err := s.shopping.SearchProducts(ctx, category+" fragrance free", location)
	if err != nil || len(candidates) == 0 {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		sleepCtx(ctx, s.config.FallbackDelay)

		candidates, err = s.shopping.SearchProducts(ctx, s.fallbackQuery(category), location)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Printf("[SCREEN] Search failed for category %q: %v", category, err)
			result.Error = fmt.Sprintf("search failed: %v", err)
			return result, nil
		}
	}

	kept := make([]domain.ScreenedListing, 0, s.config.ResultCap)
	for _, candidate := range candidates {
		if !s.passesRatingFloor(candidate.Rating, floor) {
			continue
		}
		if s.config.EnablePriceFilter && !passesPriceBounds(candidate.Price, req.PriceMin, req.PriceMax) {
			continue
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		verdict, term, screened := s.screenCandidate(ctx, candidate, allergens)
		if verdict != domain.VerdictSafe {
			if s.config.EnableDebugLogging {
				log.Printf("[SCREEN] Rejected %q: %s (%s)", candidate.Name, verdict, term)
			}
			continue
		}

		kept = append(kept, s.buildScreenedListing(candidate, req.PurchaseSites, screened))
		if len(kept) >= s.config.ResultCap {
			break
		}
		sleepCtx(ctx, s.config.CandidateDelay)
	}

	rankListings(kept)

	if s.config.EnableImageEnrichment && s.images != nil {
		s.enrichImages(ctx, kept)
	}

	result.Items = kept
	return result, nil
}

// screenCandidate fetches the candidate's page and matches the extracted
// ingredient text against the allergen set. Fetch failures are absorbed as
// "no evidence": screened=false, verdict safe.
func (s *ScreeningService) screenCandidate(
	ctx context.Context,
	candidate domain.CandidateListing,
	allergens *AllergenSet,
) (domain.SafetyVerdict, string, bool) {
	page, err := s.fetcher.Fetch(ctx, candidate.Link)
	if err != nil {
		if s.config.EnableDebugLogging {
			log.Printf("[SCREEN] Page fetch failed for %q: %v", candidate.Name, err)
		}
		page = ""
	}

	text := ExtractIngredientText(page)
	verdict, term := allergens.Match(text)
	return verdict, term, text != ""
}

// buildScreenedListing maps a surviving candidate to its terminal screened
// record, assigning the preferred-retailer priority boost and a manufacturer
// link when the listing appears hosted by its own brand.
func (s *ScreeningService) buildScreenedListing(
	candidate domain.CandidateListing,
	purchaseSites []string,
	screened bool,
) domain.ScreenedListing {
	host := serpapi.HostOf(candidate.Link)

	priority := 0
	for _, site := range purchaseSites {
		if site != "" && strings.Contains(host, strings.ToLower(strings.TrimSpace(site))) {
			priority = 1
			break
		}
	}

	links := domain.ListingLinks{Primary: candidate.Link}
	if candidate.Brand != "" {
		brandHost := strings.ReplaceAll(strings.ToLower(candidate.Brand), " ", "")
		if brandHost != "" && strings.Contains(host, brandHost) {
			links.Manufacturer = candidate.Link
		}
	}

	return domain.ScreenedListing{
		Name:        candidate.Name,
		Price:       candidate.Price,
		Rating:      candidate.Rating,
		ReviewCount: candidate.ReviewCount,
		Links:       links,
		Source:      candidate.Source,
		Verdict:     domain.VerdictSafe,
		Screened:    screened,
		Priority:    priority,
		Thumbnail:   candidate.Thumbnail,
	}
}

// enrichImages resolves display images for the ranked survivors. The set is
// already bounded by ResultCap and backed by the shared cache, so this runs
// concurrently unlike the rest of the pipeline.
func (s *ScreeningService) enrichImages(ctx context.Context, listings []domain.ScreenedListing) {
	g, gctx := errgroup.WithContext(ctx)
	for i := range listings {
		i := i
		g.Go(func() error {
			listings[i].Image = s.images.Resolve(gctx, listings[i].Thumbnail, listings[i].Links.Primary)
			return nil
		})
	}
	_ = g.Wait()
}

// fallbackQuery restricts a category query to the retailer allow-list
func (s *ScreeningService) fallbackQuery(category string) string {
	return fmt.Sprintf("%s site:(%s)", category, strings.Join(s.config.RetailerAllowList, " OR "))
}

// passesRatingFloor applies the rating filter. A candidate with unknown
// rating passes by default (benefit of the doubt) unless the stricter policy
// is configured.
func (s *ScreeningService) passesRatingFloor(rating *float64, floor float64) bool {
	if rating == nil {
		return !s.config.DropUnknownRating
	}
	return *rating >= floor
}

// passesPriceBounds applies the price filter. With no bounds set everything
// passes; with any bound active a candidate lacking price data is dropped,
// since an unverifiable price cannot satisfy an objective bound.
func passesPriceBounds(price, min, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	if price == nil {
		return false
	}
	if min != nil && *price < *min {
		return false
	}
	if max != nil && *price > *max {
		return false
	}
	return true
}

// rankListings orders survivors by preferred-retailer priority, then rating,
// both descending. Stable so equally-ranked listings keep search order.
func rankListings(listings []domain.ScreenedListing) {
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].Priority != listings[j].Priority {
			return listings[i].Priority > listings[j].Priority
		}
		return ratingValue(listings[i].Rating) > ratingValue(listings[j].Rating)
	})
}

func ratingValue(rating *float64) float64 {
	if rating == nil {
		return 0
	}
	return *rating
}

// sleepCtx pauses for d or until the context is done, whichever comes first
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
