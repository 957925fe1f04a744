package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"memorymatch/adapters/redis"
	"memorymatch/adapters/sqlx"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// DefaultPort is the leaderboard server port when neither PORT nor an address is configured.
const DefaultPort = "4000"

// Config holds the complete application configuration
type Config struct {
	// Environment and profile settings
	Environment Environment `json:"environment" env:"MEMORYMATCH_ENV"`
	Profile     string      `json:"profile" env:"MEMORYMATCH_PROFILE"`

	Server       ServerConfig       `json:"server"`
	Storage      StorageConfig      `json:"storage"`
	Logging      LoggingConfig      `json:"logging"`
	Stats        StatsConfig        `json:"stats"`
	Security     SecurityConfig     `json:"security"`
	Integrations IntegrationsConfig `json:"integrations"`

	// Client settings are read by the terminal client only.
	Client ClientConfig `json:"client"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address           string        `json:"address" env:"MEMORYMATCH_SERVER_ADDR"`
	PathPrefix        string        `json:"path_prefix" env:"MEMORYMATCH_SERVER_PATH_PREFIX"`
	CORSOrigin        string        `json:"cors_origin" env:"MEMORYMATCH_SERVER_CORS_ORIGIN"`
	ReadTimeout       time.Duration `json:"read_timeout" env:"MEMORYMATCH_SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `json:"write_timeout" env:"MEMORYMATCH_SERVER_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `json:"idle_timeout" env:"MEMORYMATCH_SERVER_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" env:"MEMORYMATCH_SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" env:"MEMORYMATCH_SERVER_SHUTDOWN_TIMEOUT"`
}

// StorageConfig holds storage adapter configuration
type StorageConfig struct {
	Adapter string       `json:"adapter" env:"MEMORYMATCH_STORAGE_ADAPTER"`
	Redis   redis.Config `json:"redis,omitempty"`
	SQL     sqlx.Config  `json:"sql,omitempty"`
	File    FileConfig   `json:"file,omitempty"`
}

// FileConfig holds JSON file storage configuration
type FileConfig struct {
	Path string `json:"path" env:"MEMORYMATCH_STORAGE_FILE_PATH"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string            `json:"level" env:"MEMORYMATCH_LOG_LEVEL"`
	Format     string            `json:"format" env:"MEMORYMATCH_LOG_FORMAT"`
	Output     string            `json:"output" env:"MEMORYMATCH_LOG_OUTPUT"`
	Attributes map[string]string `json:"attributes,omitempty" env:"MEMORYMATCH_LOG_ATTRIBUTES"`
}

// StatsConfig toggles the submission statistics endpoint.
type StatsConfig struct {
	Enabled bool `json:"enabled" env:"MEMORYMATCH_STATS_ENABLED"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EnableRateLimit bool            `json:"enable_rate_limit" env:"MEMORYMATCH_SECURITY_RATE_LIMIT_ENABLED"`
	RateLimit       RateLimitConfig `json:"rate_limit,omitempty"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requests_per_minute" env:"MEMORYMATCH_SECURITY_RATE_LIMIT_RPM"`
	BurstSize         int `json:"burst_size" env:"MEMORYMATCH_SECURITY_RATE_LIMIT_BURST"`
}

// Validate validates security settings.
func (s SecurityConfig) Validate() error {
	var errs []string
	if s.EnableRateLimit {
		if s.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, "rate_limit.requests_per_minute must be > 0 when rate limiting is enabled")
		}
		if s.RateLimit.BurstSize <= 0 {
			errs = append(errs, "rate_limit.burst_size must be > 0 when rate limiting is enabled")
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// IntegrationsConfig lists outbound event sinks.
type IntegrationsConfig struct {
	Webhooks []string   `json:"webhooks,omitempty" env:"MEMORYMATCH_WEBHOOK_URLS"`
	NATS     NATSConfig `json:"nats,omitempty"`
}

// NATSConfig enables the NATS sink when URL is set.
type NATSConfig struct {
	URL     string `json:"url" env:"MEMORYMATCH_NATS_URL"`
	Subject string `json:"subject" env:"MEMORYMATCH_NATS_SUBJECT"`
	Name    string `json:"name" env:"MEMORYMATCH_NATS_NAME"`
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL     string        `json:"api_url" env:"MEMORYMATCH_API_URL"`
	CachePath  string        `json:"cache_path" env:"MEMORYMATCH_CACHE_PATH"`
	PlayerName string        `json:"player_name" env:"MEMORYMATCH_PLAYER_NAME"`
	Difficulty string        `json:"difficulty" env:"MEMORYMATCH_DIFFICULTY"`
	Timeout    time.Duration `json:"timeout" env:"MEMORYMATCH_CLIENT_TIMEOUT"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Overlay applies environment overrides to cfg and validates the result.
// Callers use it to layer env on top of values read from elsewhere.
func Overlay(cfg *Config) error {
	if err := loadFromEnv(cfg); err != nil {
		return fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return errors.New("config file must have .json extension")
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a JSON file; environment variables override it.
func LoadFromFile(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	file, err := os.Open(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		Server: ServerConfig{
			Address:           ":" + DefaultPort,
			PathPrefix:        "/api",
			CORSOrigin:        "*",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Adapter: "memory",
			Redis:   redis.DefaultConfig(),
			SQL:     sqlx.DefaultConfig(sqlx.DriverPostgres),
			File: FileConfig{
				Path: "./data/scores.json",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Stats: StatsConfig{Enabled: true},
		Security: SecurityConfig{
			EnableRateLimit: false,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
				BurstSize:         10,
			},
		},
		Integrations: IntegrationsConfig{
			NATS: NATSConfig{Subject: "memorymatch.events", Name: "memorymatch-server"},
		},
		Client: ClientConfig{
			APIURL:     "http://localhost:" + DefaultPort + "/api",
			CachePath:  defaultCachePath(),
			Difficulty: "easy",
		},
	}
}

// defaultCachePath places the local leaderboard under the user cache directory.
func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "memorymatch", "leaderboard.json")
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Integrations.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("integrations config: %v", err))
	}

	if err := c.Client.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("client config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	cfg := *c

	if cfg.Storage.SQL.DSN != "" {
		cfg.Storage.SQL.DSN = "[REDACTED]"
	}
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = "[REDACTED]"
	}
	if len(cfg.Integrations.Webhooks) > 0 {
		// webhook URLs often carry tokens
		cfg.Integrations.Webhooks = []string{fmt.Sprintf("[REDACTED x%d]", len(c.Integrations.Webhooks))}
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
