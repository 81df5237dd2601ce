// Package config loads the reader configuration and prepares logging.
//
// All log output goes to a file: the terminal is owned by the UI and
// writing to stdout or stderr would corrupt it.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

const appName = "bookrat"

type LoggerConfig struct {
	Level       string `yaml:"level"`       // none, normal or debug
	Destination string `yaml:"destination"` // log file path
	Mode        string `yaml:"mode"`        // append or overwrite
}

type Config struct {
	Library string       `yaml:"library"`
	Logging LoggerConfig `yaml:"logging"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Library: "books",
		Logging: LoggerConfig{
			Level:       "none",
			Destination: filepath.Join(stateDir(), appName+".log"),
			Mode:        "append",
		},
	}
}

// Path returns the expected location of the config file.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appName, "config.yaml")
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// Load reads the configuration from path. A missing file is not an
// error, the defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	return unmarshalConfig(data, cfg)
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// We want to use only fields we defined so we cannot use
	// yaml.Unmarshal directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	switch cfg.Logging.Level {
	case "", "none", "normal", "debug":
	default:
		return nil, fmt.Errorf("unknown logging level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Mode {
	case "", "append", "overwrite":
	default:
		return nil, fmt.Errorf("unknown logging mode %q", cfg.Logging.Mode)
	}
	return cfg, nil
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", appName)
}
