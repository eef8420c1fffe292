// Package config loads chanctl settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "/etc/chanctl/config.yaml"

type Config struct {
	Discord DiscordConfig `yaml:"discord"`
	OTel    OTelConfig    `yaml:"otel"`
	Metrics MetricsConfig `yaml:"metrics"`
	Relay   RelayConfig   `yaml:"relay"`
}

type DiscordConfig struct {
	Token          string        `yaml:"-"               env:"DISCORD_BOT_TOKEN"` // from env only
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CHANCTL_DISCORD_REQUEST_TIMEOUT"`
}

type OTelConfig struct {
	Endpoint    string `yaml:"endpoint"     env:"CHANCTL_OTEL_ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"CHANCTL_OTEL_SERVICE_NAME"`
	Insecure    bool   `yaml:"insecure"     env:"CHANCTL_OTEL_INSECURE"`
}

type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled"  env:"CHANCTL_METRICS_ENABLED"`
	Interval time.Duration `yaml:"interval" env:"CHANCTL_METRICS_INTERVAL"`
}

type RelayConfig struct {
	From   []string `yaml:"from"   env:"CHANCTL_RELAY_FROM"` // channels whose messages are mirrored
	To     []string `yaml:"to"     env:"CHANCTL_RELAY_TO"`
	Buffer int      `yaml:"buffer" env:"CHANCTL_RELAY_BUFFER"`
}

func Default() Config {
	return Config{
		Discord: DiscordConfig{
			RequestTimeout: 30 * time.Second,
		},
		OTel: OTelConfig{
			ServiceName: "chanctl",
			Insecure:    true,
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Interval: 15 * time.Second,
		},
		Relay: RelayConfig{
			Buffer: 100,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config env: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("DISCORD_BOT_TOKEN env is required")
	}
	if c.Discord.RequestTimeout < 0 {
		return fmt.Errorf("discord.request_timeout must not be negative, got %s", c.Discord.RequestTimeout)
	}
	if c.Metrics.Enabled && c.Metrics.Interval <= 0 {
		return fmt.Errorf("metrics.interval must be positive, got %s", c.Metrics.Interval)
	}
	return nil
}
