package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultDBMaxOpenConns    = 10
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = time.Hour

	DefaultAPIBaseURL = "https://api.b365api.com/v3"
	DefaultAPITimeout = 30 * time.Second
	DefaultAPISportID = 1 // football

	DefaultPollInterval         = 60 * time.Second
	DefaultMaxConcurrentMatches = 20
	DefaultMinMinute            = 10
	DefaultMaxMinute            = 85

	DefaultSignalMaxAge     = 6 * time.Hour
	DefaultForceExpireAge   = 6 * time.Hour
	DefaultFinishedDaysBack = 2

	DefaultOptimizerMinSamples = 50
	DefaultOptimizerStatePath  = "optimizer_state.json"
)

// DefaultTasks is the default scheduled task configuration.
var DefaultTasks = map[string]TaskConfig{
	"result_tracking": {Enabled: true, Schedule: "*/5 * * * *"},
	"maintenance":     {Enabled: true, Schedule: "0 * * * *"},
	"optimization":    {Enabled: true, Schedule: "0 4 * * *"},
}

// DefaultStrategies mirrors the stock strategy thresholds the engine ships with.
var DefaultStrategies = map[string]StrategyConfig{
	"dxg_spike": {
		Threshold:     0.15,
		MinConfidence: 0.7,
		Extra:         map[string]float64{"lookback_minutes": 10},
	},
	"under_2_5_goals": {
		Threshold:     0.6,
		MinConfidence: 0.65,
	},
	"momentum_shift": {
		Threshold:     0.25,
		MinConfidence: 0.6,
		Extra:         map[string]float64{"stability_factor": 0.8, "min_shots": 3},
	},
	"tiredness_advantage": {
		Threshold:     0.3,
		MinConfidence: 0.65,
		Extra:         map[string]float64{"gradient_factor": 0.2, "wave_amplitude": 0.1},
	},
	"shots_efficiency": {
		Threshold:     0.4,
		MinConfidence: 0.6,
	},
	"wave_pattern": {
		Threshold:     2.0,
		MinConfidence: 0.55,
	},
	"gradient_breakout": {
		Threshold:     0.3,
		MinConfidence: 0.55,
	},
	"stability_disruption": {
		Threshold:     0.3,
		MinConfidence: 0.6,
	},
	"next_goal_away": {
		Threshold:     0.7,
		MinConfidence: 0.65,
	},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("database.max_open_conns", DefaultDBMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultDBMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultDBConnMaxLifetime)

	v.SetDefault("api.base_url", DefaultAPIBaseURL)
	v.SetDefault("api.timeout", DefaultAPITimeout)
	v.SetDefault("api.sport_id", DefaultAPISportID)

	v.SetDefault("monitor.poll_interval", DefaultPollInterval)
	v.SetDefault("monitor.max_concurrent_matches", DefaultMaxConcurrentMatches)
	v.SetDefault("monitor.min_minute", DefaultMinMinute)
	v.SetDefault("monitor.max_minute", DefaultMaxMinute)

	v.SetDefault("tracker.signal_max_age", DefaultSignalMaxAge)
	v.SetDefault("tracker.force_expire_age", DefaultForceExpireAge)
	v.SetDefault("tracker.finished_days_back", DefaultFinishedDaysBack)

	v.SetDefault("optimizer.min_samples", DefaultOptimizerMinSamples)
	v.SetDefault("optimizer.state_path", DefaultOptimizerStatePath)

	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}
}
