// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds every runtime knob. All fields are optional; missing provider
// or LLM credentials degrade the pipeline to baseline-only operation instead
// of failing.
type Config struct {
	// Job-postings provider
	AdzunaAppID    string `json:"adzuna_app_id,omitempty"`
	AdzunaAppKey   string `json:"adzuna_app_key,omitempty"`
	AdzunaCountry  string `json:"adzuna_country,omitempty"`
	AdzunaPageSize int    `json:"adzuna_page_size,omitempty"`
	AdzunaMaxPages int    `json:"adzuna_max_pages,omitempty"`

	// Evidence cache
	EvidenceTTLHours int `json:"evidence_ttl_hours,omitempty"`

	// LLM enrichment
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	GeminiModel  string `json:"gemini_model,omitempty"`

	// Reference data / persistence
	Region      string `json:"region,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`

	// Server
	ListenAddr string `json:"listen_addr,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables. Call after
// godotenv.Load so a local .env participates.
func FromEnv() *Config {
	cfg := &Config{
		AdzunaAppID:   os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:  os.Getenv("ADZUNA_APP_KEY"),
		AdzunaCountry: os.Getenv("ADZUNA_COUNTRY"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		Region:        os.Getenv("PLANNER_REGION"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ListenAddr:    os.Getenv("PLANNER_LISTEN_ADDR"),
	}
	if v := os.Getenv("ADZUNA_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AdzunaPageSize = n
		}
	}
	if v := os.Getenv("ADZUNA_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AdzunaMaxPages = n
		}
	}
	if v := os.Getenv("EVIDENCE_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EvidenceTTLHours = n
		}
	}
	return cfg
}

// Validate checks numeric ranges. Missing credentials are not errors.
func (c *Config) Validate() error {
	if c.AdzunaPageSize < 0 || c.AdzunaPageSize > 50 {
		return fmt.Errorf("config error: 'adzuna_page_size' must be between 0 and 50")
	}
	if c.AdzunaMaxPages < 0 || c.AdzunaMaxPages > 10 {
		return fmt.Errorf("config error: 'adzuna_max_pages' must be between 0 and 10")
	}
	if c.EvidenceTTLHours < 0 {
		return fmt.Errorf("config error: 'evidence_ttl_hours' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. CLI flags always win for bools, so Verbose is not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.AdzunaAppID == "" {
		result.AdzunaAppID = defaults.AdzunaAppID
	}
	if result.AdzunaAppKey == "" {
		result.AdzunaAppKey = defaults.AdzunaAppKey
	}
	if result.AdzunaCountry == "" {
		result.AdzunaCountry = defaults.AdzunaCountry
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.GeminiModel == "" {
		result.GeminiModel = defaults.GeminiModel
	}
	if result.Region == "" {
		result.Region = defaults.Region
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.AdzunaPageSize == 0 {
		result.AdzunaPageSize = defaults.AdzunaPageSize
	}
	if result.AdzunaMaxPages == 0 {
		result.AdzunaMaxPages = defaults.AdzunaMaxPages
	}
	if result.EvidenceTTLHours == 0 {
		result.EvidenceTTLHours = defaults.EvidenceTTLHours
	}

	return result
}

// EvidenceTTL converts the configured hours into a duration, falling back
// to 72 hours.
func (c *Config) EvidenceTTL() time.Duration {
	if c.EvidenceTTLHours <= 0 {
		return 72 * time.Hour
	}
	return time.Duration(c.EvidenceTTLHours) * time.Hour
}
