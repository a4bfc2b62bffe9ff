// Package config loads service configuration from defaults, a JSON config
// file at $XDG_CONFIG_HOME/unwind/config.json, and UNWIND_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Engine  EngineConfig
	Ingest  IngestConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string
}

type StorageConfig struct {
	DataDir string
}

type EngineConfig struct {
	TopN int
}

type IngestConfig struct {
	PollInterval string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Engine: EngineConfig{
			TopN: 12,
		},
		Ingest: IngestConfig{
			PollInterval: "500ms",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// PollDuration parses the configured ingest poll interval. Invalid values
// fall back to 500ms rather than failing startup.
func (c IngestConfig) PollDuration() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// Load reads configuration from the JSON file backend and environment
// variables. The API token comes from UNWIND_API_TOKEN or, when unset, from
// a token file in the data directory that is generated on first run.
func Load() (Config, error) {
	return loadWith(newFileBackend(), fileTokenSource{})
}

// tokenSource abstracts API token resolution for testing.
type tokenSource interface {
	Get(dataDir string) (string, error)
}

func loadWith(b ConfigBackend, ts tokenSource) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Server.APIToken == "" {
		token, err := ts.Get(cfg.Storage.DataDir)
		if err != nil {
			return Config{}, fmt.Errorf("resolving API token: %w", err)
		}
		cfg.Server.APIToken = token
	}

	return cfg, nil
}
