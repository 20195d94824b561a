package config

import (
	"fmt"
	"os"
)

// Environment selects the default server and the config key prefix
type Environment string

const (
	EnvCloud Environment = "cloud"
	EnvLocal Environment = "local"
)

// EnvConfig holds environment-specific defaults
type EnvConfig struct {
	Endpoint    string
	ReleasesURL string
}

// GetEnvironment returns the current environment from CUMULUS_ENV
func GetEnvironment() Environment {
	env := os.Getenv("CUMULUS_ENV")
	if env == "" {
		return EnvCloud
	}

	switch Environment(env) {
	case EnvCloud, EnvLocal:
		return Environment(env)
	default:
		return EnvCloud
	}
}

// GetEnvConfig returns the configuration for the specified environment
func GetEnvConfig(env Environment) (*EnvConfig, error) {
	switch env {
	case EnvCloud:
		return &EnvConfig{
			Endpoint:    getEnvOrDefault("CUMULUS_DEFAULT_ENDPOINT", "https://cloud.appwrite.io/v1"),
			ReleasesURL: getEnvOrDefault("CUMULUS_RELEASES_URL", "https://api.github.com/repos/cumulus-dev/cumulus/releases/latest"),
		}, nil
	case EnvLocal:
		return &EnvConfig{
			Endpoint:    getEnvOrDefault("CUMULUS_DEFAULT_ENDPOINT", "http://localhost/v1"),
			ReleasesURL: getEnvOrDefault("CUMULUS_RELEASES_URL", "https://api.github.com/repos/cumulus-dev/cumulus/releases/latest"),
		}, nil
	default:
		return nil, fmt.Errorf("invalid environment: %s", env)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
