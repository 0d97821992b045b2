package models

// AppConfig is the on-disk configuration shape, loaded and saved as YAML.
// Core holds the analyzer's own tunables; the remaining sections are the
// ambient/domain stack wrapped around it.
type AppConfig struct {
	Name    string         `yaml:"name"`
	Core    CoreConfig     `yaml:"core"`
	Server  ServerConfig   `yaml:"server"`
	Storage StorageConfig  `yaml:"storage"`
	Logging LoggingConfig  `yaml:"logging"`
	DeepLink DeepLinkConfig `yaml:"deeplink"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Feed    FeedConfig     `yaml:"feed"`
}

// CoreConfig is the analyzer's tunable set.
type CoreConfig struct {
	BufferSize            int     `yaml:"buffer_size"`
	ThresholdMin          float64 `yaml:"threshold_min"`
	ThresholdMax          float64 `yaml:"threshold_max"`
	MaxStocks             int     `yaml:"max_stocks"`
	ReaperIntervalMs       int64   `yaml:"reaper_interval_ms"`
	InactivityHorizonMs    int64   `yaml:"inactivity_horizon_ms"`
	MinPointsForAnalysis  int     `yaml:"min_points_for_analysis"`
	WindowMs              int64   `yaml:"window_ms"`
	HysteresisDeltaPercent float64 `yaml:"hysteresis_delta_percent"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Backend           string `yaml:"backend"` // "sqlite" or "postgres"
	SQLitePath        string `yaml:"sqlite_path"`
	PostgresDSN       string `yaml:"postgres_dsn"`
	RetentionDays     int    `yaml:"retention_days"`
	RetentionSweepMs  int64  `yaml:"retention_sweep_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

type DeepLinkConfig struct {
	Host            string            `yaml:"host"`
	DefaultExchange string            `yaml:"default_exchange"`
	ExchangeSlugs   map[string]string `yaml:"exchange_slugs"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

type FeedConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Symbols        []string `yaml:"symbols"`
	TickIntervalMs int64    `yaml:"tick_interval_ms"`
}
