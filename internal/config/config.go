package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Detect  DetectConfig
	Billing BillingConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type DetectConfig struct {
	// CloneTimeout bounds the shallow-clone subprocess, e.g. "30s".
	CloneTimeout string
}

type BillingConfig struct {
	// Plan is the subscription plan as reported by the billing provider:
	// "free", "pro", "max", or "teams".
	Plan string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4770,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Detect: DetectConfig{
			CloneTimeout: "30s",
		},
		Billing: BillingConfig{
			Plan: "free",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "lynxprompt-data"
		}
	}
	return filepath.Join(dir, "lynxprompt")
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/lynxprompt/config.json, then applies LYNXPROMPT_*
// environment overrides.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
