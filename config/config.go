// ABOUTME: Configuration loader for the hived validator service
// ABOUTME: Loads settings from an optional .env file and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)
	ValidateTimeout    int      // seconds, deadline wrapping one validation (default 60)
	BatchConcurrency   int      // max concurrent validations per batch request (default 4)

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitWrite   int  // Requests per minute for validation endpoints (default: 60)
	RateLimitDefault int  // Requests per minute for all other endpoints (default: 300)

	// HiveD scheduler inspection API
	HivedSchedulerURL      string
	HivedCACert            string
	HivedSkipSSLValidation bool   // explicit opt-in for insecure connections (only if no CA cert)
	HivedAllProxy          string // ssh+socks5://user@jumpbox:22?private-key=/path
	HivedFetchTimeout      int    // seconds (default 30)

	// Resource unit catalog, one of the two is required
	ResourceUnitsFile string
	ResourceUnits     string

	DefaultVirtualCluster string
}

// ValidateTimeoutDuration returns the validation deadline
func (c *Config) ValidateTimeoutDuration() time.Duration {
	return time.Duration(c.ValidateTimeout) * time.Second
}

// HivedFetchTimeoutDuration returns the topology fetch timeout
func (c *Config) HivedFetchTimeoutDuration() time.Duration {
	return time.Duration(c.HivedFetchTimeout) * time.Second
}

// Load reads .env (if present) without overriding variables that are
// already set, then builds the config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		ValidateTimeout:    getEnvInt("VALIDATE_TIMEOUT", 60),
		BatchConcurrency:   getEnvInt("BATCH_CONCURRENCY", 4),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitWrite:   getEnvInt("RATE_LIMIT_WRITE", 60),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 300),

		HivedSchedulerURL:      ensureScheme(os.Getenv("HIVED_SCHEDULER_URL")),
		HivedCACert:            os.Getenv("HIVED_CA_CERT"),
		HivedSkipSSLValidation: getEnvBool("HIVED_SKIP_SSL_VALIDATION", false),
		HivedAllProxy:          os.Getenv("HIVED_ALL_PROXY"),
		HivedFetchTimeout:      getEnvInt("HIVED_FETCH_TIMEOUT", 30),

		ResourceUnitsFile: os.Getenv("RESOURCE_UNITS_FILE"),
		ResourceUnits:     os.Getenv("RESOURCE_UNITS"),

		DefaultVirtualCluster: getEnv("DEFAULT_VIRTUAL_CLUSTER", "default"),
	}

	// Validate required fields
	if cfg.HivedSchedulerURL == "" {
		return nil, fmt.Errorf("HIVED_SCHEDULER_URL is required")
	}
	if cfg.ResourceUnitsFile == "" && cfg.ResourceUnits == "" {
		return nil, fmt.Errorf("RESOURCE_UNITS_FILE or RESOURCE_UNITS is required")
	}
	if cfg.ResourceUnitsFile != "" && cfg.ResourceUnits != "" {
		return nil, fmt.Errorf("RESOURCE_UNITS_FILE and RESOURCE_UNITS are mutually exclusive")
	}

	// Validate ranges
	for _, r := range []struct {
		name     string
		value    int
		min, max int
	}{
		{"RATE_LIMIT_WRITE", cfg.RateLimitWrite, 1, 10000},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault, 1, 10000},
		{"BATCH_CONCURRENCY", cfg.BatchConcurrency, 1, 64},
		{"VALIDATE_TIMEOUT", cfg.ValidateTimeout, 1, 3600},
		{"HIVED_FETCH_TIMEOUT", cfg.HivedFetchTimeout, 1, 3600},
	} {
		if r.value < r.min || r.value > r.max {
			return nil, fmt.Errorf("%s must be between %d and %d, got %d", r.name, r.min, r.max, r.value)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds http:// prefix if the URL has no scheme. The scheduler
// inspection API is served over plain HTTP by default.
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
