package main

import (
	"fmt"
	"log"
	"os"

	"github.com/shelfsafe/backend/config"
	httpDelivery "github.com/shelfsafe/backend/internal/delivery/http"
	"github.com/shelfsafe/backend/internal/domain"
	"github.com/shelfsafe/backend/internal/infrastructure/cache"
	"github.com/shelfsafe/backend/internal/infrastructure/gemini"
	"github.com/shelfsafe/backend/internal/infrastructure/serpapi"
	"github.com/shelfsafe/backend/internal/infrastructure/webpage"
	"github.com/shelfsafe/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ShelfSafe Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	debug := cfg.Server.Environment == "development"

	// Initialize infrastructure dependencies
	shoppingClient := serpapi.NewClient(cfg.SerpAPI.APIKey, cfg.SerpAPI.BaseURL, cfg.SerpAPI.ResultCap)
	shoppingClient.SetDebug(debug)

	pageFetcher := webpage.NewFetcher(cfg.Fetcher.Timeout, cfg.Fetcher.UserAgent)
	imageFetcher := webpage.NewFetcher(cfg.ImageCache.FetchTimeout, cfg.Fetcher.UserAgent)

	// One image cache for the process lifetime, threaded through explicitly
	imageCache := cache.NewFIFOCache(cfg.ImageCache.Capacity)
	log.Printf("Image cache capacity: %d (FIFO)", cfg.ImageCache.Capacity)

	imageResolver := usecase.NewImageResolver(imageFetcher, imageCache)
	imageResolver.SetDebug(debug)

	// Initialize usecase layer
	screeningService := usecase.NewScreeningService(
		shoppingClient,
		pageFetcher,
		imageResolver,
		usecase.ScreeningConfig{
			ResultCap:             cfg.Screening.ResultCap,
			DefaultRatingFloor:    cfg.Screening.RatingFloor,
			RetailerAllowList:     cfg.Screening.RetailerAllowList,
			CandidateDelay:        cfg.Screening.CandidateDelay,
			CategoryDelay:         cfg.Screening.CategoryDelay,
			FallbackDelay:         cfg.Screening.FallbackDelay,
			DropUnknownRating:     cfg.Screening.DropUnknownRating,
			EnablePriceFilter:     cfg.Screening.EnablePriceFilter,
			EnableLocationBias:    cfg.Screening.EnableLocationBias,
			EnableImageEnrichment: cfg.Screening.EnableImageEnrichment,
			EnableDebugLogging:    debug,
		},
	)

	log.Printf("Screening: cap=%d, rating_floor=%.1f, drop_unknown_rating=%v",
		cfg.Screening.ResultCap,
		cfg.Screening.RatingFloor,
		cfg.Screening.DropUnknownRating)

	// Optional downstream summarizer; screening never depends on it
	var summarizer domain.Summarizer
	if cfg.Gemini.APIKey != "" {
		summarizer = gemini.NewSummarizer(cfg.Gemini.APIKey, cfg.Gemini.Model)
		log.Printf("Gemini summarizer enabled: %s", cfg.Gemini.Model)
	} else {
		log.Printf("Gemini summarizer disabled (no API key)")
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(screeningService, summarizer)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
