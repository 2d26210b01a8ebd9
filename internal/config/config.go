// Package config provides configuration management for the key-value store.
// It loads settings from YAML files and environment variables, with
// thread-safe singleton access.
package config

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds all application configuration values.
type Config struct {
	DATA_DIR          string `yaml:"DATA_DIR"`          // Directory where segment and registry files are stored
	REGISTRY_FILE     string `yaml:"REGISTRY_FILE"`     // Bare file name of the segment registry within DATA_DIR
	MAX_SEGMENT_SIZE  int64  `yaml:"MAX_SEGMENT_SIZE"`  // Byte threshold that triggers rollover; 0 means unlimited
	VALIDATE_ENCODING bool   `yaml:"VALIDATE_ENCODING"` // Whether decode validates key/value UTF-8
}

var (
	appConfig *Config
	once      sync.Once
	initErr   error
)

// Default returns the built-in configuration used when no config.yml is
// present: a "./data" store directory, the default registry name, and
// rollover disabled.
func Default() *Config {
	return &Config{
		DATA_DIR:          "data",
		REGISTRY_FILE:     "registry.json",
		MAX_SEGMENT_SIZE:  0,
		VALIDATE_ENCODING: true,
	}
}

// LoadConfig reads configuration values from config.yml and optionally from
// a .env file. It uses a sync.Once so concurrent callers observe the same
// loaded configuration. Environment variables referenced in the YAML file
// are expanded via os.ExpandEnv. When no config.yml is found, LoadConfig
// falls back to Default() rather than failing, since the engine is equally
// usable as an embedded library with no configuration file at all.
func LoadConfig() (*Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			slog.Debug("config: no .env file found or error loading it", "error", err)
		} else {
			slog.Debug("config: .env file loaded successfully")
		}

		file, err := os.ReadFile("internal/config/config.yml")
		if os.IsNotExist(err) {
			slog.Debug("config: no config.yml found, using defaults")
			appConfig = Default()
			return
		}
		if err != nil {
			initErr = err
			return
		}

		cfg := Default()
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(file))), cfg); err != nil {
			initErr = err
			return
		}
		appConfig = cfg
	})
	if initErr != nil {
		return nil, initErr
	}
	return appConfig, nil
}

// GetConfig returns the singleton configuration instance.
// Panics if configuration has not been loaded yet. This function should
// only be called after LoadConfig has been successfully called.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded - call LoadConfig() first")
	}
	return appConfig
}
