package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Default budget: enough for sustained searching with room for a handful of
// analyses, but a single evidence refresh consumes half of it.
const (
	DefaultCapacity        = 120 // Tokens a client can hold
	DefaultRefillPerMinute = 60  // Tokens restored per minute
)

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	capacity := getEnvInt("RATE_LIMIT_CAPACITY", DefaultCapacity)
	refill := getEnvInt("RATE_LIMIT_REFILL_PER_MINUTE", DefaultRefillPerMinute)
	defaultCost := getEnvInt("RATE_LIMIT_DEFAULT_COST", 1)
	cleanupInterval := getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)

	whitelist := parseIPList(getEnvString("RATE_LIMIT_WHITELIST", ""))
	blacklist := parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", ""))

	return &Config{
		Enabled:         enabled,
		Capacity:        capacity,
		RefillPerMinute: refill,
		DefaultCost:     defaultCost,
		CleanupInterval: cleanupInterval,
		Whitelist:       whitelist,
		Blacklist:       blacklist,
		EndpointCosts:   DefaultEndpointCosts(),
	}
}

// DefaultEndpointCosts weighs each endpoint by the downstream work it can
// trigger.
func DefaultEndpointCosts() []EndpointCost {
	return []EndpointCost{
		// Health checks are free so probes never starve real traffic.
		{Path: "/v1/health", Method: "GET", Cost: 0},

		// Occupation search is an in-memory index lookup.
		{Path: "/v1/occupations/search", Method: "GET", Cost: 1},

		// Analysis is local scoring but can trigger a market fetch on a
		// cold cache.
		{Path: "/v1/analyze", Method: "POST", Cost: 5},

		// Evidence refresh fans out to the Adzuna API and re-extracts
		// every stored posting.
		{Path: "/v1/evidence/refresh", Method: "POST", Cost: 60},
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	ips := strings.Split(list, ",")
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
