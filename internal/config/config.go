// Package config loads and validates application configuration from
// environment variables and an optional config file.
package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Pool    PoolConfig    `mapstructure:"pool" validate:"required"`
	History HistoryConfig `mapstructure:"history" validate:"required"`
	Engine  EngineConfig  `mapstructure:"engine"`
}

// ServerConfig contains settings for the local HTTP control API and
// process-wide logging.
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// PassphraseHash is the bcrypt hash checked by POST /auth/token.
	// Empty disables the control API's auth endpoints.
	PassphraseHash string `mapstructure:"passphrase_hash"`

	// JWTSecret signs control-API bearer tokens. Required in serve mode.
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`

	// TokenLifetimeMinutes bounds how long issued tokens stay valid.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
}

// PoolConfig sizes the shared execution pool.
type PoolConfig struct {
	// WorkerCount bounds concurrent operations process-wide. Zero means
	// the host's available concurrency.
	WorkerCount int `mapstructure:"worker_count" validate:"gte=0"`

	// QueueSize bounds tasks waiting for a free worker.
	QueueSize int `mapstructure:"queue_size" validate:"required,gte=1"`
}

// HistoryConfig selects where operation history is persisted.
type HistoryConfig struct {
	// Driver is "memory" or "postgres".
	Driver string `mapstructure:"driver" validate:"required,oneof=memory postgres"`

	// DatabaseURL is required when Driver is postgres.
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=Driver postgres"`
}

// EngineConfig tunes the mock engine's simulated behavior.
type EngineConfig struct {
	Steps       int `mapstructure:"steps" validate:"gte=0"`
	StepDelayMS int `mapstructure:"step_delay_ms" validate:"gte=0"`
}
