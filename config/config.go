package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gilby125/airport-network/graph"
)

const (
	defaultAirportsSource = "https://raw.githubusercontent.com/jpatokal/openflights/master/data/airports.dat"
	defaultRoutesSource   = "https://raw.githubusercontent.com/jpatokal/openflights/master/data/routes.dat"
	defaultRiskSource     = "data/risk_index.csv"
)

// Config holds all application configuration
type Config struct {
	Port           string
	HTTPBindAddr   string
	Environment    string
	MetricsEnabled bool
	LoggingConfig  LoggingConfig
	DatasetConfig  DatasetConfig
	RedisConfig    RedisConfig
	CacheConfig    CacheConfig
	QueryConfig    QueryConfig
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// DatasetConfig says where the airports, routes and risk index come from.
type DatasetConfig struct {
	AirportsSource  string
	RoutesSource    string
	RiskIndexSource string
	RiskMetric      string
	HTTPTimeout     time.Duration
	RetryMax        int
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig controls the query response cache
type CacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

// QueryConfig bounds the sizes clients may ask for
type QueryConfig struct {
	RankDefaultSize     int
	RankMaxSize         int
	SnapshotMaxVertices int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	metricsEnabled, _ := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))

	httpTimeout, err := time.ParseDuration(getEnv("DATASET_HTTP_TIMEOUT", "60s"))
	if err != nil {
		httpTimeout = 60 * time.Second
	}
	retryMax, err := strconv.Atoi(getEnv("DATASET_RETRY_MAX", "3"))
	if err != nil {
		retryMax = 3
	}

	redisEnabled, _ := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "1h"))
	if err != nil {
		cacheTTL = time.Hour
	}

	rankDefault, err := strconv.Atoi(getEnv("RANK_DEFAULT_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("RANK_DEFAULT_SIZE: %w", err)
	}
	rankMax, err := strconv.Atoi(getEnv("RANK_MAX_SIZE", "50"))
	if err != nil {
		return nil, fmt.Errorf("RANK_MAX_SIZE: %w", err)
	}
	snapshotMax, err := strconv.Atoi(getEnv("SNAPSHOT_MAX_VERTICES", "7000"))
	if err != nil {
		return nil, fmt.Errorf("SNAPSHOT_MAX_VERTICES: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		HTTPBindAddr:   getEnv("HTTP_BIND_ADDR", ""),
		Environment:    getEnv("ENVIRONMENT", "development"),
		MetricsEnabled: metricsEnabled,
		LoggingConfig: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		DatasetConfig: DatasetConfig{
			AirportsSource:  getEnv("AIRPORTS_SOURCE", defaultAirportsSource),
			RoutesSource:    getEnv("ROUTES_SOURCE", defaultRoutesSource),
			RiskIndexSource: getEnv("RISK_INDEX_SOURCE", defaultRiskSource),
			RiskMetric:      getEnv("RISK_METRIC", "safety"),
			HTTPTimeout:     httpTimeout,
			RetryMax:        retryMax,
		},
		RedisConfig: RedisConfig{
			Enabled:  redisEnabled,
			Host:     getEnv("REDIS_HOST", "redis"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CacheConfig: CacheConfig{
			TTL:       cacheTTL,
			KeyPrefix: getEnv("CACHE_KEY_PREFIX", "airport-network"),
		},
		QueryConfig: QueryConfig{
			RankDefaultSize:     rankDefault,
			RankMaxSize:         rankMax,
			SnapshotMaxVertices: snapshotMax,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at query time.
func (c *Config) Validate() error {
	if _, err := c.RiskMetric(); err != nil {
		return fmt.Errorf("RISK_METRIC: %w", err)
	}
	q := c.QueryConfig
	if q.RankDefaultSize <= 0 || q.RankMaxSize <= 0 {
		return fmt.Errorf("rank sizes must be positive (default %d, max %d)", q.RankDefaultSize, q.RankMaxSize)
	}
	if q.RankDefaultSize > q.RankMaxSize {
		return fmt.Errorf("RANK_DEFAULT_SIZE %d exceeds RANK_MAX_SIZE %d", q.RankDefaultSize, q.RankMaxSize)
	}
	if q.SnapshotMaxVertices <= 0 {
		return fmt.Errorf("SNAPSHOT_MAX_VERTICES must be positive, got %d", q.SnapshotMaxVertices)
	}
	return nil
}

// RiskMetric parses the configured ranking direction.
func (c *Config) RiskMetric() (graph.RiskMetric, error) {
	return graph.ParseRiskMetric(c.DatasetConfig.RiskMetric)
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisConfig.Host + ":" + c.RedisConfig.Port
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.HTTPBindAddr + ":" + c.Port
}

// LoadTestConfig loads test configuration
func LoadTestConfig() *Config {
	return &Config{
		Port:        "0",
		Environment: "test",
		LoggingConfig: LoggingConfig{
			Level:  "debug",
			Format: "text",
		},
		DatasetConfig: DatasetConfig{
			AirportsSource:  getEnv("AIRPORTS_SOURCE", "testdata/airports.dat"),
			RoutesSource:    getEnv("ROUTES_SOURCE", "testdata/routes.dat"),
			RiskIndexSource: getEnv("RISK_INDEX_SOURCE", "testdata/risk_index.csv"),
			RiskMetric:      "safety",
			HTTPTimeout:     5 * time.Second,
		},
		RedisConfig: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"), // Use env var if set, default to localhost
			Port: getEnv("REDIS_PORT", "6379"),
		},
		CacheConfig: CacheConfig{
			TTL:       time.Minute,
			KeyPrefix: "airport-network-test",
		},
		QueryConfig: QueryConfig{
			RankDefaultSize:     5,
			RankMaxSize:         50,
			SnapshotMaxVertices: 100,
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if len(strings.TrimSpace(value)) == 0 {
		return defaultValue
	}
	return strings.TrimSpace(value) // Trim whitespace before returning
}
