package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultMoralisBaseURL is the Moralis EVM API root
const DefaultMoralisBaseURL = "https://deep-index.moralis.io/api/v2/"

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Moralis MoralisConfig `yaml:"moralis"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port" env:"SERVER_PORT"`
	Host           string   `yaml:"host" env:"SERVER_HOST"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" envSeparator:","` // prefix match
}

// MoralisConfig represents the upstream API configuration
type MoralisConfig struct {
	BaseURL      string        `yaml:"base_url" env:"MORALIS_BASE_URL"`
	APIKey       string        `yaml:"api_key" env:"MORALIS_API_KEY"`
	Timeout      time.Duration `yaml:"timeout" env:"MORALIS_TIMEOUT"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"MORALIS_MAX_BODY_BYTES"`
}

// LogConfig represents the logger configuration
type LogConfig struct {
	Level         string `yaml:"level" env:"LOG_LEVEL"`
	HumanFriendly bool   `yaml:"human_friendly" env:"LOG_HUMAN_FRIENDLY"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"http://localhost"},
		},
		Moralis: MoralisConfig{
			BaseURL:      DefaultMoralisBaseURL,
			Timeout:      10 * time.Second,
			MaxBodyBytes: 8 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file and environment variables
func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if it exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Moralis.BaseURL = normalizeBaseURL(cfg.Moralis.BaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first unusable setting
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Moralis.APIKey == "" {
		return errors.New("moralis api key is required (MORALIS_API_KEY)")
	}
	u, err := url.Parse(c.Moralis.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid moralis base url %q", c.Moralis.BaseURL)
	}
	if c.Moralis.Timeout <= 0 {
		return fmt.Errorf("moralis timeout must be positive, got %s", c.Moralis.Timeout)
	}
	if c.Moralis.MaxBodyBytes <= 0 {
		return fmt.Errorf("moralis max body bytes must be positive, got %d", c.Moralis.MaxBodyBytes)
	}
	return nil
}

func normalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
