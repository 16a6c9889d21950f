// Package config provides configuration management for the backtest system.
package config

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Data     DataConfig     `mapstructure:"data" validate:"required"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DataConfig locates the reference-data inputs.
type DataConfig struct {
	AliasTablePath string             `mapstructure:"alias_table_path" validate:"required"`
	RatingsDir     string             `mapstructure:"ratings_dir" validate:"required"`
	OddsPaths      []string           `mapstructure:"odds_paths" validate:"required,min=1"`
	GameSources    []GameSourceConfig `mapstructure:"game_sources" validate:"required,min=1,dive"`
	NonMembers     []string           `mapstructure:"non_members"`
}

// GameSourceConfig is one game-record export to ingest.
type GameSourceConfig struct {
	Path   string `mapstructure:"path" validate:"required"`
	Source string `mapstructure:"source" validate:"required"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	Markets         []string           `mapstructure:"markets" validate:"required,min=1,markets"`
	MinEdge         map[string]float64 `mapstructure:"min_edge"`
	Wager           float64            `mapstructure:"wager" validate:"required,gt=0"`
	Workers         int                `mapstructure:"workers" validate:"gte=0"`
	MinTrainSeasons int                `mapstructure:"min_train_seasons" validate:"required,gte=1"`
	BookmakerOrder  []string           `mapstructure:"bookmaker_order"`
	OutputDir       string             `mapstructure:"output_dir" validate:"required"`
	MonteCarloRuns  int                `mapstructure:"monte_carlo_runs" validate:"gte=0"`
}

// DatabaseConfig represents the rating-snapshot database used by the sync
// service. Optional: the backtest itself runs entirely from files.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// SyncConfig represents the ratings sync service configuration.
type SyncConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	Schedule       string `mapstructure:"schedule"`
	Seasons        []int  `mapstructure:"seasons"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	RetryAttempts  int    `mapstructure:"retry_attempts" validate:"omitempty,gte=0"`
	RatePerSecond  int    `mapstructure:"rate_per_second" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics exposure configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment reports whether the app runs in development.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
