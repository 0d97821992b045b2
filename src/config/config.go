package config

import (
	"fmt"
	"os"

	"marketpulse/src/helpers"
	"marketpulse/src/models"

	"gopkg.in/yaml.v3"
)

// Config wraps models.AppConfig and provides business logic methods.
type Config struct {
	*models.AppConfig
}

// NewConfig loads an AppConfig from a YAML file, validates it, and applies
// memory-aware defaulting for sizing-sensitive fields left unset.
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var appConfig models.AppConfig
	if err := yaml.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{AppConfig: &appConfig}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// applyDefaults fills in fields a user may reasonably leave unset, including
// max_stocks sized from detected system memory rather than a bare constant.
func (c *Config) applyDefaults() {
	if c.Core.BufferSize <= 0 {
		c.Core.BufferSize = 120
	}
	if c.Core.ThresholdMin == 0 {
		c.Core.ThresholdMin = 9.0
	}
	if c.Core.ThresholdMax == 0 {
		c.Core.ThresholdMax = 13.0
	}
	if c.Core.MaxStocks <= 0 {
		c.Core.MaxStocks = recommendedMaxStocks(c.Core.BufferSize)
	}
	if c.Core.ReaperIntervalMs <= 0 {
		c.Core.ReaperIntervalMs = 60000
	}
	if c.Core.InactivityHorizonMs <= 0 {
		c.Core.InactivityHorizonMs = 3_600_000
	}
	if c.Core.MinPointsForAnalysis <= 0 {
		c.Core.MinPointsForAnalysis = 5
	}
	if c.Core.WindowMs <= 0 {
		c.Core.WindowMs = 120_000
	}
	if c.Core.HysteresisDeltaPercent == 0 {
		c.Core.HysteresisDeltaPercent = 0.1
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "sqlite"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "marketpulse.db"
	}
	if c.Storage.RetentionDays <= 0 {
		c.Storage.RetentionDays = 7
	}
	if c.Storage.RetentionSweepMs <= 0 {
		c.Storage.RetentionSweepMs = 3_600_000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.DeepLink.Host == "" {
		c.DeepLink.Host = "www.example.com"
	}
	if c.DeepLink.DefaultExchange == "" {
		c.DeepLink.DefaultExchange = "nasdaq"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "marketpulse"
	}
	if c.Feed.TickIntervalMs <= 0 {
		c.Feed.TickIntervalMs = 1000
	}
}

// recommendedMaxStocks sizes the registry capacity hint from the detected
// system memory limit, falling back to the spec's default when detection
// fails or yields an unreasonably small figure.
func recommendedMaxStocks(bufferSize int) int {
	const defaultMaxStocks = 10000
	const pricePointBytes = 24
	const stateOverheadBytes = 64

	memLimitMB := helpers.GetRecommendedMemoryLimit()
	if memLimitMB <= 0 {
		return defaultMaxStocks
	}

	perSymbolBytes := stateOverheadBytes + bufferSize*pricePointBytes
	budget := (memLimitMB * 1024 * 1024) / perSymbolBytes
	if budget < defaultMaxStocks {
		return defaultMaxStocks
	}
	return budget
}

// Validate performs field-by-field validation of the loaded configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Core.BufferSize <= 0 {
		return fmt.Errorf("core.buffer_size must be greater than 0")
	}
	if c.Core.ThresholdMin > c.Core.ThresholdMax {
		return fmt.Errorf("core.threshold_min (%v) cannot exceed core.threshold_max (%v)", c.Core.ThresholdMin, c.Core.ThresholdMax)
	}
	if c.Core.MaxStocks <= 0 {
		return fmt.Errorf("core.max_stocks must be greater than 0")
	}
	if c.Core.MinPointsForAnalysis <= 0 {
		return fmt.Errorf("core.min_points_for_analysis must be greater than 0")
	}
	if c.Core.WindowMs <= 0 {
		return fmt.Errorf("core.window_ms must be greater than 0")
	}
	if c.Core.HysteresisDeltaPercent < 0 {
		return fmt.Errorf("core.hysteresis_delta_percent cannot be negative")
	}

	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d", c.Server.Port)
	}

	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path cannot be empty for sqlite backend")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn cannot be empty for postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage.Backend)
	}

	if c.Feed.Enabled && len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("feed.symbols must be non-empty when feed.enabled is true")
	}

	return nil
}

// Save persists the current configuration to the specified YAML file path.
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.AppConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
