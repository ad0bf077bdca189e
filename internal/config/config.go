package config

import "time"

// Broker backends supported by the dispatcher.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Broker   BrokerConfig   `mapstructure:"broker" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// BrokerConfig selects the execution backend and holds the Redis connection
// settings used when the backend is "redis". The same Redis database serves
// as message broker and result backend.
type BrokerConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=redis postgres memory"`
	// URL has the form redis://:<password>@<host>:<port>/<db>.
	URL   string `mapstructure:"url" validate:"required_if=Backend redis,omitempty,url"`
	Queue string `mapstructure:"queue" validate:"required"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout" validate:"gt=0"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`

	// SubmitTimeout bounds a single enqueue call made on behalf of an HTTP request.
	SubmitTimeout time.Duration `mapstructure:"submit_timeout" validate:"gt=0"`

	// ResultRetention is how long completed tasks and their results stay queryable.
	ResultRetention time.Duration `mapstructure:"result_retention" validate:"gt=0"`
	MaxRetry        int           `mapstructure:"max_retry" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// It is only required by the postgres backend.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// TaskConfig configures the in-process runner used by the postgres and memory backends.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize           int `mapstructure:"queue_size" validate:"required,gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}

// WorkerConfig configures the standalone Redis worker process.
type WorkerConfig struct {
	Concurrency            int `mapstructure:"concurrency" validate:"required,gt=0"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// AuthConfig contains authentication settings. An empty JWTSecret disables
// authentication on the task routes.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// TracingConfig toggles the OpenTelemetry stdout exporter.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name" validate:"required_if=Enabled true"`
}

// Enabled reports whether bearer-token authentication is configured.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}
