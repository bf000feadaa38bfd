package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all agent configuration
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Storage   StorageConfig
	Reminders RemindersConfig
	Logging   LoggingConfig
}

// ServerConfig holds the local API server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

// BackendConfig holds the medtrack backend connection configuration
type BackendConfig struct {
	BaseURL        string
	AuthToken      string
	RequestTimeout time.Duration
}

// StorageConfig holds local persistence configuration
type StorageConfig struct {
	Path string
}

// RemindersConfig holds reminder planning configuration
type RemindersConfig struct {
	Timezone string // IANA zone name; empty means the device's local clock
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "7380")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)

	v.SetDefault("backend.requesttimeout", 15*time.Second)

	v.SetDefault("storage.path", "medtrack-agent.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")

	v.BindEnv("backend.baseurl", "MEDTRACK_BACKEND_URL")
	v.BindEnv("backend.authtoken", "MEDTRACK_BACKEND_TOKEN")

	v.BindEnv("storage.path", "MEDTRACK_DB_PATH")

	v.BindEnv("reminders.timezone", "MEDTRACK_TIMEZONE")

	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.baseurl is required")
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}

	if c.Reminders.Timezone != "" {
		if _, err := time.LoadLocation(c.Reminders.Timezone); err != nil {
			return fmt.Errorf("reminders.timezone is not a valid IANA zone: %w", err)
		}
	}

	return nil
}
