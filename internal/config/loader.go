package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from, in order of precedence:
// 1. BETBOG_* environment variables
// 2. the YAML file at path (optional, may be missing)
// 3. default values
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BETBOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults plus env carry the load.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Strategy == nil {
		cfg.Strategy = map[string]StrategyConfig{}
	}
	// Fill in stock strategies the file does not override.
	for name, def := range DefaultStrategies {
		if _, ok := cfg.Strategy[name]; !ok {
			cfg.Strategy[name] = def
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// IsUserAuthorized reports whether userID may use the menu bot. The admin is
// always authorized; other users must appear in the allowed list.
func (c *Config) IsUserAuthorized(userID int64) bool {
	if userID == c.Telegram.AdminUserID {
		return true
	}
	for _, id := range c.Telegram.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
