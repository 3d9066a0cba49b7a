// Package config provides configuration loading, validation, and management
// for the BetBog monitoring system. It handles reading from YAML files,
// BETBOG_* environment variables, default values, and validation.
package config

import "time"

// Config defines the application configuration parameters for all components
// of the BetBog system: logging, database, sports API, Telegram, the match
// monitor, the result tracker, scheduled tasks, and the strategy engine.
type Config struct {
	Log       LogConfig                 `mapstructure:"log"`
	Database  DatabaseConfig            `mapstructure:"database"`
	API       APIConfig                 `mapstructure:"api"`
	Telegram  TelegramConfig            `mapstructure:"telegram"`
	Monitor   MonitorConfig             `mapstructure:"monitor"`
	Tracker   TrackerConfig             `mapstructure:"tracker"`
	Scheduler SchedulerConfig           `mapstructure:"scheduler"`
	Optimizer OptimizerConfig           `mapstructure:"optimizer"`
	Strategy  map[string]StrategyConfig `mapstructure:"strategy"`
}

// LogConfig controls log level and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// APIConfig holds sports data API settings.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Token   string        `mapstructure:"token" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s,max=5m"`
	SportID int           `mapstructure:"sport_id" validate:"min=1"`
}

// TelegramConfig holds bot credentials and authorization settings.
type TelegramConfig struct {
	Token          string  `mapstructure:"token" validate:"required"`
	AdminUserID    int64   `mapstructure:"admin_user_id" validate:"required,gt=0"`
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids"`
	SignalChatID   int64   `mapstructure:"signal_chat_id"`
}

// MonitorConfig controls the live match polling loop.
type MonitorConfig struct {
	PollInterval         time.Duration `mapstructure:"poll_interval" validate:"min=5s"`
	MaxConcurrentMatches int           `mapstructure:"max_concurrent_matches" validate:"min=1"`
	MinMinute            int           `mapstructure:"min_minute" validate:"min=0,max=90"`
	MaxMinute            int           `mapstructure:"max_minute" validate:"min=0,max=120,gtefield=MinMinute"`
}

// TrackerConfig controls pending signal settlement.
type TrackerConfig struct {
	SignalMaxAge     time.Duration `mapstructure:"signal_max_age" validate:"min=10m"`
	ForceExpireAge   time.Duration `mapstructure:"force_expire_age" validate:"min=1h"`
	FinishedDaysBack int           `mapstructure:"finished_days_back" validate:"min=1,max=7"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig holds the configuration for a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// OptimizerConfig controls the statistical strategy optimizer.
type OptimizerConfig struct {
	MinSamples int    `mapstructure:"min_samples" validate:"min=10"`
	StatePath  string `mapstructure:"state_path" validate:"required"`
}

// StrategyConfig holds per-strategy thresholds. Keys not covered by the
// named fields (strategy-specific knobs) live in Extra.
type StrategyConfig struct {
	Threshold     float64            `mapstructure:"threshold"`
	MinConfidence float64            `mapstructure:"min_confidence"`
	Extra         map[string]float64 `mapstructure:"extra"`
}
