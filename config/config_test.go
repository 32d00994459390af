package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("SHELFSAFE_SERVER_PORT")
		os.Unsetenv("SHELFSAFE_SERVER_ENVIRONMENT")
		os.Unsetenv("SHELFSAFE_SERPAPI_API_KEY")
		os.Unsetenv("SHELFSAFE_SERPAPI_BASE_URL")
		os.Unsetenv("SHELFSAFE_SERPAPI_RESULT_CAP")
		os.Unsetenv("SHELFSAFE_GEMINI_API_KEY")
		os.Unsetenv("SHELFSAFE_GEMINI_MODEL")
		os.Unsetenv("SHELFSAFE_SCREENING_RESULT_CAP")
		os.Unsetenv("SHELFSAFE_SCREENING_RATING_FLOOR")
		os.Unsetenv("SHELFSAFE_SCREENING_DROP_UNKNOWN_RATING")
		os.Unsetenv("SHELFSAFE_FETCHER_TIMEOUT")
		os.Unsetenv("SHELFSAFE_IMAGE_CACHE_CAPACITY")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required API key
		os.Setenv("SHELFSAFE_SERPAPI_API_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.SerpAPI.BaseURL != "https://serpapi.com" {
			t.Errorf("SerpAPI.BaseURL = %s, want https://serpapi.com", cfg.SerpAPI.BaseURL)
		}
		if cfg.SerpAPI.ResultCap != 12 {
			t.Errorf("SerpAPI.ResultCap = %d, want 12", cfg.SerpAPI.ResultCap)
		}
		if cfg.Gemini.Model != "gemini-2.0-flash" {
			t.Errorf("Gemini.Model = %s, want gemini-2.0-flash", cfg.Gemini.Model)
		}
		if cfg.Screening.ResultCap != 8 {
			t.Errorf("Screening.ResultCap = %d, want 8", cfg.Screening.ResultCap)
		}
		if cfg.Screening.RatingFloor != 4.0 {
			t.Errorf("Screening.RatingFloor = %v, want 4.0", cfg.Screening.RatingFloor)
		}
		if cfg.Screening.DropUnknownRating {
			t.Error("Screening.DropUnknownRating = true, want false by default")
		}
		if cfg.Screening.CandidateDelay != 200*time.Millisecond {
			t.Errorf("Screening.CandidateDelay = %v, want 200ms", cfg.Screening.CandidateDelay)
		}
		if cfg.Screening.CategoryDelay != 500*time.Millisecond {
			t.Errorf("Screening.CategoryDelay = %v, want 500ms", cfg.Screening.CategoryDelay)
		}
		if cfg.Screening.FallbackDelay != 600*time.Millisecond {
			t.Errorf("Screening.FallbackDelay = %v, want 600ms", cfg.Screening.FallbackDelay)
		}
		if len(cfg.Screening.RetailerAllowList) != 4 {
			t.Errorf("Screening.RetailerAllowList = %v, want 4 defaults", cfg.Screening.RetailerAllowList)
		}
		if cfg.Fetcher.Timeout != 20*time.Second {
			t.Errorf("Fetcher.Timeout = %v, want 20s", cfg.Fetcher.Timeout)
		}
		if cfg.ImageCache.Capacity != 256 {
			t.Errorf("ImageCache.Capacity = %d, want 256", cfg.ImageCache.Capacity)
		}
		if cfg.ImageCache.FetchTimeout != 10*time.Second {
			t.Errorf("ImageCache.FetchTimeout = %v, want 10s", cfg.ImageCache.FetchTimeout)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SHELFSAFE_SERVER_PORT", "9090")
		os.Setenv("SHELFSAFE_SERVER_ENVIRONMENT", "production")
		os.Setenv("SHELFSAFE_SERPAPI_API_KEY", "custom-api-key")
		os.Setenv("SHELFSAFE_SERPAPI_BASE_URL", "https://custom.serpapi.example.com")
		os.Setenv("SHELFSAFE_SERPAPI_RESULT_CAP", "20")
		os.Setenv("SHELFSAFE_GEMINI_API_KEY", "gemini-key")
		os.Setenv("SHELFSAFE_GEMINI_MODEL", "gemini-2.5-pro")
		os.Setenv("SHELFSAFE_SCREENING_RESULT_CAP", "5")
		os.Setenv("SHELFSAFE_SCREENING_RATING_FLOOR", "3.5")
		os.Setenv("SHELFSAFE_SCREENING_DROP_UNKNOWN_RATING", "true")
		os.Setenv("SHELFSAFE_FETCHER_TIMEOUT", "5s")
		os.Setenv("SHELFSAFE_IMAGE_CACHE_CAPACITY", "64")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.SerpAPI.APIKey != "custom-api-key" {
			t.Errorf("SerpAPI.APIKey = %s, want custom-api-key", cfg.SerpAPI.APIKey)
		}
		if cfg.SerpAPI.BaseURL != "https://custom.serpapi.example.com" {
			t.Errorf("SerpAPI.BaseURL = %s", cfg.SerpAPI.BaseURL)
		}
		if cfg.SerpAPI.ResultCap != 20 {
			t.Errorf("SerpAPI.ResultCap = %d, want 20", cfg.SerpAPI.ResultCap)
		}
		if cfg.Gemini.APIKey != "gemini-key" {
			t.Errorf("Gemini.APIKey = %s, want gemini-key", cfg.Gemini.APIKey)
		}
		if cfg.Gemini.Model != "gemini-2.5-pro" {
			t.Errorf("Gemini.Model = %s, want gemini-2.5-pro", cfg.Gemini.Model)
		}
		if cfg.Screening.ResultCap != 5 {
			t.Errorf("Screening.ResultCap = %d, want 5", cfg.Screening.ResultCap)
		}
		if cfg.Screening.RatingFloor != 3.5 {
			t.Errorf("Screening.RatingFloor = %v, want 3.5", cfg.Screening.RatingFloor)
		}
		if !cfg.Screening.DropUnknownRating {
			t.Error("Screening.DropUnknownRating = false, want true")
		}
		if cfg.Fetcher.Timeout != 5*time.Second {
			t.Errorf("Fetcher.Timeout = %v, want 5s", cfg.Fetcher.Timeout)
		}
		if cfg.ImageCache.Capacity != 64 {
			t.Errorf("ImageCache.Capacity = %d, want 64", cfg.ImageCache.Capacity)
		}
	})

	t.Run("binds API keys from environment alone", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SHELFSAFE_SERPAPI_API_KEY", "env-only-key")
		os.Setenv("SHELFSAFE_GEMINI_API_KEY", "env-only-gemini")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil with key set via env", err)
		}
		if cfg.SerpAPI.APIKey != "env-only-key" {
			t.Errorf("SerpAPI.APIKey = %q, want env-only-key", cfg.SerpAPI.APIKey)
		}
		if cfg.Gemini.APIKey != "env-only-gemini" {
			t.Errorf("Gemini.APIKey = %q, want env-only-gemini", cfg.Gemini.APIKey)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing API key")
		}
		if err != nil && err.Error() != "invalid configuration: SerpAPI key is required (set SHELFSAFE_SERPAPI_API_KEY)" {
			t.Errorf("Load() error = %v, want 'SerpAPI key is required'", err)
		}
	})

	t.Run("fails validation for out-of-range rating floor", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SHELFSAFE_SERPAPI_API_KEY", "test-key")
		os.Setenv("SHELFSAFE_SCREENING_RATING_FLOOR", "7.5")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for rating floor above 5")
		}
	})

	t.Run("fails validation for non-positive cache capacity", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SHELFSAFE_SERPAPI_API_KEY", "test-key")
		os.Setenv("SHELFSAFE_IMAGE_CACHE_CAPACITY", "0")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for zero cache capacity")
		}
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			SerpAPI: SerpAPIConfig{
				APIKey:  "test-key",
				BaseURL: "https://serpapi.com",
			},
			Screening:  ScreeningConfig{RatingFloor: 4.0},
			ImageCache: ImageCacheConfig{Capacity: 256},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(base()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when API key is empty", func(t *testing.T) {
		cfg := base()
		cfg.SerpAPI.APIKey = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty API key")
		}
	})

	t.Run("fails for negative rating floor", func(t *testing.T) {
		cfg := base()
		cfg.Screening.RatingFloor = -1
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for negative rating floor")
		}
	})

	t.Run("zero rating floor is allowed", func(t *testing.T) {
		cfg := base()
		cfg.Screening.RatingFloor = 0
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for floor 0", err)
		}
	})
}
