package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".cumulus"
	DefaultConfigFile = "config.yaml"

	// DefaultRetryAttempts applies to network-level failures only
	DefaultRetryAttempts uint = 3
)

// Config holds the CLI configuration
type Config struct {
	environment      Environment
	envConfig        *EnvConfig
	Endpoint         string
	ProjectID        string
	APIKey           string
	JWT              string
	Locale           string
	SelfSigned       bool
	ChunkSize        int64
	RetryAttempts    uint
	SkipVersionCheck bool
	LogLevel         string
	TelemetryEnabled *bool // nil means unset
}

// envOverrides are read from CUMULUS_* variables, after any .env file in the
// working directory has been loaded.
type envOverrides struct {
	Endpoint string `envconfig:"ENDPOINT"`
	Project  string `envconfig:"PROJECT"`
	Key      string `envconfig:"KEY"`
	JWT      string `envconfig:"JWT"`
}

// ValidUserFacingConfigKeys lists config keys that users should interact with
var ValidUserFacingConfigKeys = map[string]bool{
	// Global settings
	"skipversioncheck": true,
	"loglevel":         true,
	"telemetry":        true,

	// Environment-specific settings
	"endpoint":      true,
	"project":       true,
	"key":           true,
	"jwt":           true,
	"locale":        true,
	"selfsigned":    true,
	"chunksize":     true,
	"retryattempts": true,
}

// IsValidUserFacingKey checks if a config key is a recognized user-facing key
func IsValidUserFacingKey(key string) bool {
	return ValidUserFacingConfigKeys[key]
}

// GetConfigKeyDescription returns a description for a config key
func GetConfigKeyDescription(key string) string {
	descriptions := map[string]string{
		"skipversioncheck": "Disable automatic version update checks (true/false)",
		"loglevel":         "Logging level (debug/info/warn/error, default: info)",
		"telemetry":        "Enable error telemetry and crash reporting (true/false, default: true)",
		"endpoint":         "API endpoint, e.g. https://cloud.appwrite.io/v1",
		"project":          "Project ID sent as X-Appwrite-Project",
		"key":              "Server API key sent as X-Appwrite-Key",
		"jwt":              "User JWT sent as X-Appwrite-JWT when no API key is set",
		"locale":           "Locale sent as X-Appwrite-Locale (e.g. en, de)",
		"selfsigned":       "Accept self-signed TLS certificates (true/false)",
		"chunksize":        "Upload chunk size in bytes (default: 5242880)",
		"retryattempts":    "Attempts for requests that fail below HTTP (default: 3)",
	}
	return descriptions[key]
}

// GetEnvironmentPrefixedKey returns the key with environment prefix.
// Users work with unprefixed keys; the prefix is added automatically.
func GetEnvironmentPrefixedKey(key string, env Environment) string {
	globalKeys := map[string]bool{
		"skipversioncheck": true,
		"loglevel":         true,
		"telemetry":        true,
	}

	if globalKeys[key] {
		return key
	}

	return getKeyPrefix(env) + key
}

// GetUserFacingKeys returns the list of keys users should interact with
func GetUserFacingKeys() []string {
	return []string{
		"endpoint",
		"project",
		"key",
		"jwt",
		"locale",
		"self-signed",
		"chunk-size",
		"retry-attempts",
		"skip-version-check",
		"log-level",
		"telemetry",
	}
}

// NormalizeKey turns a kebab-case key into its stored form
func NormalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "-", ""))
}

// Load reads the configuration from ~/.cumulus/config.yaml and applies
// CUMULUS_* environment overrides.
func Load() (*Config, error) {
	env := GetEnvironment()
	envConfig, err := GetEnvConfig(env)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	configPath := getConfigPath()
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Create config file if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := ensureConfigDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := viper.WriteConfig(); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	prefix := getKeyPrefix(env)

	config := &Config{
		environment:      env,
		envConfig:        envConfig,
		Endpoint:         viper.GetString(prefix + "endpoint"),
		ProjectID:        viper.GetString(prefix + "project"),
		APIKey:           viper.GetString(prefix + "key"),
		JWT:              viper.GetString(prefix + "jwt"),
		Locale:           viper.GetString(prefix + "locale"),
		SelfSigned:       viper.GetBool(prefix + "selfsigned"),
		ChunkSize:        viper.GetInt64(prefix + "chunksize"),
		RetryAttempts:    viper.GetUint(prefix + "retryattempts"),
		SkipVersionCheck: viper.GetBool("skipversioncheck"),
		LogLevel:         viper.GetString("loglevel"),
	}

	if viper.IsSet("telemetry") {
		telemetryEnabled := viper.GetBool("telemetry")
		config.TelemetryEnabled = &telemetryEnabled
	}

	var overrides envOverrides
	if err := envconfig.Process("cumulus", &overrides); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	config.applyOverrides(overrides)

	return config, nil
}

func (c *Config) applyOverrides(o envOverrides) {
	if o.Endpoint != "" {
		c.Endpoint = o.Endpoint
	}
	if o.Project != "" {
		c.ProjectID = o.Project
	}
	if o.Key != "" {
		c.APIKey = o.Key
	}
	if o.JWT != "" {
		c.JWT = o.JWT
	}
}

// IsTelemetryEnabled returns whether telemetry is enabled.
// Returns true by default if not explicitly set (opt-out model).
func (c *Config) IsTelemetryEnabled() bool {
	if envVal := os.Getenv("CUMULUS_TELEMETRY_DISABLED"); envVal != "" {
		return envVal != "true" && envVal != "1"
	}

	if c.TelemetryEnabled != nil {
		return *c.TelemetryEnabled
	}

	return true
}

// Save writes the current configuration to disk
func Save(config *Config) error {
	prefix := getKeyPrefix(config.environment)

	viper.Set(prefix+"endpoint", config.Endpoint)
	viper.Set(prefix+"project", config.ProjectID)
	viper.Set(prefix+"key", config.APIKey)
	viper.Set(prefix+"jwt", config.JWT)
	viper.Set(prefix+"locale", config.Locale)
	viper.Set(prefix+"selfsigned", config.SelfSigned)
	if config.ChunkSize > 0 {
		viper.Set(prefix+"chunksize", config.ChunkSize)
	}
	if config.RetryAttempts > 0 {
		viper.Set(prefix+"retryattempts", config.RetryAttempts)
	}
	viper.Set("skipversioncheck", config.SkipVersionCheck)
	viper.Set("loglevel", config.LogLevel)

	if config.TelemetryEnabled != nil {
		viper.Set("telemetry", *config.TelemetryEnabled)
	}

	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SetValue stores a user-facing key. Booleans and integers are stored typed.
func SetValue(key, value string) (any, error) {
	normalized := NormalizeKey(key)
	if !IsValidUserFacingKey(normalized) {
		return nil, fmt.Errorf("'%s' is not a recognized configuration key", key)
	}

	var typedValue any
	switch strings.ToLower(value) {
	case "true":
		typedValue = true
	case "false":
		typedValue = false
	default:
		typedValue = value
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && (normalized == "chunksize" || normalized == "retryattempts") {
			if n <= 0 {
				return nil, fmt.Errorf("%s must be positive", key)
			}
			typedValue = n
		}
	}

	viper.Set(GetEnvironmentPrefixedKey(normalized, GetEnvironment()), typedValue)
	if err := viper.WriteConfig(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return typedValue, nil
}

// GetValue reads a user-facing key as stored on disk
func GetValue(key string) (any, bool) {
	actualKey := GetEnvironmentPrefixedKey(NormalizeKey(key), GetEnvironment())
	if !viper.IsSet(actualKey) {
		return nil, false
	}
	return viper.Get(actualKey), true
}

// ConfigPath returns the full path to the config file
func ConfigPath() string {
	return getConfigPath()
}

func getConfigPath() string {
	if path := os.Getenv("CUMULUS_CONFIG_PATH"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", DefaultConfigDir, DefaultConfigFile)
	}

	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile)
}

// Context key for storing config
type contextKey string

const configContextKey contextKey = "config"

// GetConfigFromContext retrieves the config from the command context
func GetConfigFromContext(cmd *cobra.Command) (*Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("no context available")
	}

	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("config not found in context")
	}

	return cfg, nil
}

// GetContextKey returns the context key used for storing config
func GetContextKey() any {
	return configContextKey
}

// GetEndpoint returns the configured endpoint, falling back to the
// environment default.
func (c *Config) GetEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.envConfig != nil {
		return c.envConfig.Endpoint
	}
	return ""
}

// GetCurrentProject returns the configured project ID
func (c *Config) GetCurrentProject() (string, error) {
	if c.ProjectID == "" {
		return "", fmt.Errorf("no project configured. Run 'cumulus config set project <id>'")
	}
	return c.ProjectID, nil
}

// GetChunkSize returns the upload chunk size, or 0 for the engine default
func (c *Config) GetChunkSize() int64 {
	if c.ChunkSize < 0 {
		return 0
	}
	return c.ChunkSize
}

// GetRetryAttempts returns the configured attempts or DefaultRetryAttempts
func (c *Config) GetRetryAttempts() uint {
	if c.RetryAttempts == 0 {
		return DefaultRetryAttempts
	}
	return c.RetryAttempts
}

// Environment returns the environment the config was loaded for
func (c *Config) Environment() Environment {
	return c.environment
}

func ensureConfigDir() error {
	configDir := filepath.Dir(getConfigPath())
	return os.MkdirAll(configDir, 0755) //nolint:gosec // Config directory needs standard permissions
}

// getKeyPrefix returns the environment-specific key prefix
func getKeyPrefix(env Environment) string {
	if env == EnvCloud || env == "" {
		return ""
	}
	return string(env) + "-"
}

// GetEnvConfig returns the environment configuration
func (c *Config) GetEnvConfig() *EnvConfig {
	return c.envConfig
}

// GetLogLevel returns the configured log level as slog.Level.
// Defaults to Info if not set or invalid.
func (c *Config) GetLogLevel() slog.Level {
	if c.LogLevel == "" {
		return slog.LevelInfo
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
