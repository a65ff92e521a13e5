// Package config stores user settings such as the location of the ZMK
// config repo. Settings live in $XDG_CONFIG_HOME/zmkgen/config.yaml and can
// be overridden with ZMKGEN_* environment variables, e.g. ZMKGEN_USER_HOME.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Known settings.
const (
	KeyHome      = "user.home"      // path of the zmk-config repo
	KeyTemplates = "user.templates" // extra template directory layered over the built-in templates
	KeyPristine  = "build.pristine" // always pass -p to west build
)

const envPrefix = "ZMKGEN"

var boolKeys = map[string]bool{KeyPristine: true}

// Config is the user's settings file.
type Config struct {
	path string
	file *viper.Viper // what is on disk, written back by Write
	v    *viper.Viper // file plus environment overrides
}

// DefaultPath returns the settings file location for the current user.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "zmkgen", "config.yaml"), nil
}

// Load reads the settings file at path, or at DefaultPath when path is
// empty. A missing file is an empty configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	c := &Config{path: path, file: newViper(path), v: newViper(path)}
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()
	for _, key := range []string{KeyHome, KeyTemplates, KeyPristine} {
		if err := c.v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, nil
	}
	if err := c.file.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := c.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return c, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v
}

// Path returns the location of the settings file.
func (c *Config) Path() string {
	return c.path
}

// Get returns a setting as a string. Unset settings are empty.
func (c *Config) Get(key string) string {
	return c.v.GetString(key)
}

// GetBool returns a boolean setting.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// IsSet reports whether key has a value in the file or the environment.
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Set changes a setting in memory. Call Write to save it.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return fmt.Errorf("invalid setting name %q", key)
	}

	var val any = value
	if boolKeys[key] {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		val = b
	}
	if key == KeyHome || key == KeyTemplates {
		if value != "" {
			abs, err := filepath.Abs(value)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", value, err)
			}
			val = abs
		}
	}

	c.file.Set(key, val)
	c.v.Set(key, val)
	return nil
}

// Keys returns every setting stored in the file, sorted.
func (c *Config) Keys() []string {
	keys := c.file.AllKeys()
	sort.Strings(keys)
	return keys
}

// Write saves the settings file, creating its directory if needed.
func (c *Config) Write() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := c.file.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.path, err)
	}
	return nil
}

// Home returns the configured zmk-config repo, or "" when unset.
func (c *Config) Home() string {
	return c.Get(KeyHome)
}

// Templates returns the user template directory, or "" when unset.
func (c *Config) Templates() string {
	return c.Get(KeyTemplates)
}
