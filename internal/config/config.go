package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const (
	// EnvCoffeeHome overrides the directory holding config.toml
	EnvCoffeeHome = "COFFEE_HOME"

	// EnvRegistryURL overrides the base URL the manifest and bundles are fetched from
	EnvRegistryURL = "COFFEE_REGISTRY_URL"

	// EnvAPITimeout configures the HTTP request timeout
	EnvAPITimeout = "COFFEE_API_TIMEOUT"

	// EnvManifestTTL configures how long a fetched manifest is reused
	EnvManifestTTL = "COFFEE_MANIFEST_TTL"

	// AppDirName is the directory name used under the XDG config home
	AppDirName = "coffeeupdate"

	// DefaultRegistryURL is the CDN hosting manifest.json and addons/*.zip
	DefaultRegistryURL = "https://coffee-auras.nyc3.cdn.digitaloceanspaces.com"

	// DefaultAPITimeout is the default timeout for registry requests (30 seconds)
	DefaultAPITimeout = 30 * time.Second

	// DefaultManifestTTL is the default lifetime of a cached manifest (5 minutes)
	DefaultManifestTTL = 5 * time.Minute
)

// GetRegistryURL returns COFFEE_REGISTRY_URL, or DefaultRegistryURL when unset.
func GetRegistryURL() string {
	if v := os.Getenv(EnvRegistryURL); v != "" {
		return v
	}
	return DefaultRegistryURL
}

// GetAPITimeout returns the configured API timeout from COFFEE_API_TIMEOUT.
// If not set or invalid, returns DefaultAPITimeout (30 seconds).
// Accepts duration strings like "30s", "1m", "2m30s".
func GetAPITimeout() time.Duration {
	return durationFromEnv(EnvAPITimeout, DefaultAPITimeout, 1*time.Second, 10*time.Minute)
}

// GetManifestTTL returns the configured manifest cache TTL from COFFEE_MANIFEST_TTL.
// If not set or invalid, returns DefaultManifestTTL (5 minutes).
func GetManifestTTL() time.Duration {
	return durationFromEnv(EnvManifestTTL, DefaultManifestTTL, 1*time.Minute, 24*time.Hour)
}

// durationFromEnv parses a duration from the environment, falling back to def
// on a missing or malformed value and clamping the result to [minimum, maximum].
func durationFromEnv(name string, def, minimum, maximum time.Duration) time.Duration {
	envValue := os.Getenv(name)
	if envValue == "" {
		return def
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			name, envValue, def)
		return def
	}

	if duration < minimum {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum %v\n",
			name, duration, minimum)
		return minimum
	}
	if duration > maximum {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum %v\n",
			name, duration, maximum)
		return maximum
	}

	return duration
}

// Config holds the on-disk locations coffeeupdate uses.
type Config struct {
	HomeDir           string // $COFFEE_HOME, or $XDG_CONFIG_HOME/coffeeupdate
	ConfigFile        string // $COFFEE_HOME/config.toml
	CacheDir          string // $COFFEE_HOME/cache
	ManifestCacheFile string // $COFFEE_HOME/cache/manifest.json
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	home := os.Getenv(EnvCoffeeHome)
	if home == "" {
		if xdg.ConfigHome == "" {
			return nil, fmt.Errorf("failed to determine config directory")
		}
		home = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	cacheDir := filepath.Join(home, "cache")
	return &Config{
		HomeDir:           home,
		ConfigFile:        filepath.Join(home, "config.toml"),
		CacheDir:          cacheDir,
		ManifestCacheFile: filepath.Join(cacheDir, "manifest.json"),
	}, nil
}

// EnsureDirectories creates all required directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.HomeDir, c.CacheDir}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
