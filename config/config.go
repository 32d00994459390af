package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	SerpAPI    SerpAPIConfig `mapstructure:"serpapi"`
	Gemini     GeminiConfig
	Screening  ScreeningConfig
	Fetcher    FetcherConfig
	ImageCache ImageCacheConfig `mapstructure:"image_cache"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SerpAPIConfig holds shopping search API configuration
type SerpAPIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	ResultCap int    `mapstructure:"result_cap"`
}

// GeminiConfig holds the optional downstream summarizer configuration.
// An empty API key disables summarization entirely.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ScreeningConfig holds the allergen-screening pipeline configuration
type ScreeningConfig struct {
	ResultCap             int           `mapstructure:"result_cap"`
	RatingFloor           float64       `mapstructure:"rating_floor"`
	RetailerAllowList     []string      `mapstructure:"retailer_allow_list"`
	CandidateDelay        time.Duration `mapstructure:"candidate_delay"`
	CategoryDelay         time.Duration `mapstructure:"category_delay"`
	FallbackDelay         time.Duration `mapstructure:"fallback_delay"`
	DropUnknownRating     bool          `mapstructure:"drop_unknown_rating"`
	EnablePriceFilter     bool          `mapstructure:"enable_price_filter"`
	EnableLocationBias    bool          `mapstructure:"enable_location_bias"`
	EnableImageEnrichment bool          `mapstructure:"enable_image_enrichment"`
}

// FetcherConfig holds the retailer-page fetcher configuration
type FetcherConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// ImageCacheConfig holds the image resolution cache configuration
type ImageCacheConfig struct {
	Capacity     int           `mapstructure:"capacity"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shelfsafe/")

	// Environment variable settings
	v.SetEnvPrefix("SHELFSAFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// SerpAPI defaults. The empty api_key default registers the key with
	// viper so AutomaticEnv can bind SHELFSAFE_SERPAPI_API_KEY; unregistered
	// keys are invisible to Unmarshal.
	v.SetDefault("serpapi.api_key", "")
	v.SetDefault("serpapi.base_url", "https://serpapi.com")
	v.SetDefault("serpapi.result_cap", 12)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	// Screening defaults
	v.SetDefault("screening.result_cap", 8)
	v.SetDefault("screening.rating_floor", 4.0)
	v.SetDefault("screening.retailer_allow_list", []string{"sephora.com", "ulta.com", "target.com", "amazon.com"})
	v.SetDefault("screening.candidate_delay", "200ms")
	v.SetDefault("screening.category_delay", "500ms")
	v.SetDefault("screening.fallback_delay", "600ms")
	v.SetDefault("screening.drop_unknown_rating", false)
	v.SetDefault("screening.enable_price_filter", true)
	v.SetDefault("screening.enable_location_bias", true)
	v.SetDefault("screening.enable_image_enrichment", true)

	// Fetcher defaults
	v.SetDefault("fetcher.timeout", "20s")
	v.SetDefault("fetcher.user_agent", "ShelfSafeBot/1.0 (+https://github.com/shelfsafe/backend)")

	// Image cache defaults
	v.SetDefault("image_cache.capacity", 256)
	v.SetDefault("image_cache.fetch_timeout", "10s")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.SerpAPI.APIKey == "" {
		return fmt.Errorf("SerpAPI key is required (set SHELFSAFE_SERPAPI_API_KEY)")
	}

	if config.Screening.RatingFloor < 0 || config.Screening.RatingFloor > 5 {
		return fmt.Errorf("screening rating floor must be within [0,5], got: %v", config.Screening.RatingFloor)
	}

	if config.ImageCache.Capacity <= 0 {
		return fmt.Errorf("image cache capacity must be positive, got: %d", config.ImageCache.Capacity)
	}

	return nil
}
