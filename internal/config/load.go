package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables (prefix
// STEGOSIGHT, dots replaced by underscores) and, when path is
// non-empty, a config file. Environment variables take precedence.
// The result is validated before being returned.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("STEGOSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, verr := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", verr.Namespace(), verr.Tag()))
			}
			return nil, fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8477)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.token_lifetime_minutes", 60)

	v.SetDefault("pool.worker_count", 0) // host concurrency
	v.SetDefault("pool.queue_size", 64)

	v.SetDefault("history.driver", "memory")
	v.SetDefault("history.database_url", "")

	v.SetDefault("engine.steps", 10)
	v.SetDefault("engine.step_delay_ms", 50)
}
