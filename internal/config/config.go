package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/libstand-labs/libstand/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI.
const (
	KeyPreset        = "preset"
	KeyIndent        = "indent"
	KeyCreateMissing = "create_missing"
)

// DefaultIndent is used when the indent width of a manifest cannot be detected.
const DefaultIndent = 4

// Dir returns the path to the config directory (~/.libstand/).
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("HOME")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.libstand/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyIndent, DefaultIndent)
	viper.SetDefault(KeyCreateMissing, false)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Preset returns the path of a custom preset file, or "" for the built-in one.
func Preset() string {
	return viper.GetString(KeyPreset)
}

// Indent returns the fallback indent width for manifests with no detectable indent.
func Indent() int {
	n := viper.GetInt(KeyIndent)
	if n <= 0 || n > 8 {
		return DefaultIndent
	}
	return n
}

// Keys lists the settings the CLI reads, in display order.
var Keys = []string{KeyPreset, KeyIndent, KeyCreateMissing}

// Validate checks that value is acceptable for key.
func Validate(key, value string) error {
	switch key {
	case KeyPreset:
		return nil
	case KeyIndent:
		if n, err := strconv.Atoi(value); err != nil || n < 1 || n > 8 {
			return fmt.Errorf("%s must be a number from 1 to 8, got %q", key, value)
		}
	case KeyCreateMissing:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
	default:
		return fmt.Errorf("unknown key %q (known keys: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// CreateMissing reports whether absent scripts/devDependencies sections should be created.
func CreateMissing() bool {
	return viper.GetBool(KeyCreateMissing)
}

// Set validates and writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
