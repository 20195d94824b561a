package projectconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

var (
	DefaultPath   = "."
	DefaultIgnore = []string{".git/**", "node_modules/**", ".DS_Store"}
)

// Load reads and parses a cumulus.toml file
func Load(configPath string) (*ProjectConfig, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s. Please run `cumulus init` to create one", configPath)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if !v.IsSet("functions") && !v.IsSet("sites") {
		return nil, fmt.Errorf("no [[functions]] or [[sites]] found in %s", configPath)
	}

	var config ProjectConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	applyDefaults(&config)
	return &config, nil
}

// Save writes config to configPath, replacing any existing file.
func Save(configPath string, config *ProjectConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode project config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil { //nolint:gosec // project file is meant to be committed
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	return nil
}

// applyDefaults sets default values for fields that weren't specified in the config
func applyDefaults(config *ProjectConfig) {
	for i := range config.Functions {
		fn := &config.Functions[i]
		if fn.Path == "" {
			fn.Path = DefaultPath
		}
		if len(fn.Ignore) == 0 {
			fn.Ignore = DefaultIgnore
		}
	}
	for i := range config.Sites {
		site := &config.Sites[i]
		if site.Path == "" {
			site.Path = DefaultPath
		}
		if len(site.Ignore) == 0 {
			site.Ignore = DefaultIgnore
		}
	}
}
