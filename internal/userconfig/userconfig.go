// Package userconfig manages the persisted coffeeupdate settings.
// Configuration is stored in $COFFEE_HOME/config.toml and can be modified
// via the `coffeeupdate config` and `coffeeupdate path` commands.
package userconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/coffeeauras/coffeeupdate/internal/addonpath"
	"github.com/coffeeauras/coffeeupdate/internal/config"
)

// KeyAddOnsPath is the config key holding the AddOns folder.
const KeyAddOnsPath = "addons_path"

// locate finds a game installation when seeding a new config. Replaced in tests.
var locate = addonpath.Locate

// Config represents user-configurable settings.
type Config struct {
	// AddOnsPath is the normalized .../Interface/AddOns folder, or empty.
	AddOnsPath string `toml:"addons_path"`
}

// DefaultConfig returns a Config seeded with the detected game installation,
// if any.
func DefaultConfig() *Config {
	cfg := &Config{}
	if install := locate(); install != "" {
		cfg.AddOnsPath = addonpath.Normalize(install)
	}
	return cfg
}

// Load reads the config file, creating it with detected defaults when it
// does not exist yet.
func Load() (*Config, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return DefaultConfig(), nil
	}
	return loadFromPath(cfg.ConfigFile)
}

// loadFromPath reads config from a specific file path.
func loadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		userCfg := DefaultConfig()
		if saveErr := userCfg.saveToPath(path); saveErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create %s: %v\n", path, saveErr)
		}
		return userCfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	userCfg := &Config{}
	if _, err := toml.Decode(string(data), userCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return userCfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return c.saveToPath(cfg.ConfigFile)
}

// saveToPath writes config atomically with 0600 permissions: the content
// goes to a temp file in the same directory which is then renamed over path.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}
	if err := toml.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// Get returns the value of a config key as a string.
// Returns empty string and false if the key doesn't exist.
func (c *Config) Get(key string) (string, bool) {
	switch strings.ToLower(key) {
	case KeyAddOnsPath:
		return c.AddOnsPath, true
	default:
		return "", false
	}
}

// Set updates a config value from a string.
// addons_path accepts any recognized game, _retail_, Interface or AddOns
// folder and stores its normalized AddOns path; an empty value clears it.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case KeyAddOnsPath:
		if value == "" {
			c.AddOnsPath = ""
			return nil
		}
		normalized := addonpath.Normalize(value)
		if normalized == "" {
			return fmt.Errorf("invalid value for %s: %s is not a World of Warcraft, _retail_, Interface or AddOns folder", KeyAddOnsPath, value)
		}
		c.AddOnsPath = normalized
		return nil
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}

// PathState classifies the configured add-ons path.
func (c *Config) PathState() addonpath.State {
	return addonpath.Classify(c.AddOnsPath)
}

// AvailableKeys returns a list of all configurable keys with descriptions.
func AvailableKeys() map[string]string {
	return map[string]string{
		KeyAddOnsPath: "World of Warcraft AddOns folder (any game, _retail_ or Interface folder is accepted)",
	}
}
