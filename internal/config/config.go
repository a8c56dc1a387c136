// Package config loads gateway configuration from an optional YAML file and
// the environment. A .env file is honored for local development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	AI      AIConfig      `koanf:"ai"`
	Storage StorageConfig `koanf:"storage"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type AIConfig struct {
	// Service is the default service used when a call names none.
	Service string `koanf:"service"`

	// Timeout is the per-attempt provider timeout, e.g. "30s".
	Timeout string `koanf:"timeout"`

	Google ServiceConfig `koanf:"google"`
	OpenAI ServiceConfig `koanf:"openai"`
}

type ServiceConfig struct {
	Key string `koanf:"key"`
}

type StorageConfig struct {
	// Path is the SQLite database file for the primary interaction store.
	Path string `koanf:"path"`

	// Fallback is the CSV file written when the primary store fails.
	Fallback string `koanf:"fallback"`
}

// Load reads configuration. Precedence, lowest to highest: defaults, YAML
// file at configPath (skipped when empty or missing), LAILA_* environment
// variables (LAILA_AI_SERVICE, LAILA_AI_GOOGLE_KEY, ...). Legacy
// GOOGLE_API_KEY / OPENAI_API_KEY variables are honored when no key was set
// through the other sources.
func Load(configPath string) (*Config, error) {
	// Best-effort .env for local development.
	_ = godotenv.Load()

	k := koanf.New(".")

	defaults := map[string]any{
		"server.port":      5001,
		"ai.service":       "google",
		"ai.timeout":       "30s",
		"storage.path":     "laila_central.db",
		"storage.fallback": "chat_logs_fallback.csv",
	}
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("LAILA_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "LAILA_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.AI.Google.Key == "" {
		cfg.AI.Google.Key = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.AI.OpenAI.Key == "" {
		cfg.AI.OpenAI.Key = os.Getenv("OPENAI_API_KEY")
	}

	return &cfg, nil
}

// SystemKeys returns the configured service keys for the credential resolver.
func (c *Config) SystemKeys() map[string]string {
	return map[string]string{
		"google": c.AI.Google.Key,
		"openai": c.AI.OpenAI.Key,
	}
}

// ProviderTimeout parses the per-attempt timeout, defaulting to 30s on a
// missing or invalid value.
func (c *Config) ProviderTimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
