package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// Config holds all configuration for the server.
type Config struct {
	Server   ServerConfig
	Policy   PolicyConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PolicyConfig holds policy document configuration.
type PolicyConfig struct {
	Provider   string `env:"POLICY_PROVIDER" envDefault:"panorama"`
	ConfigPath string `env:"PANORAMA_CONFIG" envDefault:"data/panorama.xml"`
	UploadDir  string `env:"UPLOAD_DIR" envDefault:"data"`
}

// DatabaseConfig holds database configuration for the mysql provider.
type DatabaseConfig struct {
	DSN string `env:"DB_DSN"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Policy); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Policy.Provider {
	case "panorama":
		if c.Policy.ConfigPath == "" {
			return fmt.Errorf("PANORAMA_CONFIG is required for the panorama provider")
		}
	case "mysql":
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the mysql provider")
		}
	default:
		return fmt.Errorf("unknown policy provider: %s", c.Policy.Provider)
	}
	return nil
}
