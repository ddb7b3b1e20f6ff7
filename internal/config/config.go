// Package config handles confpapers configuration.
//
// Settings come from ~/.config/confpapers/config.yml, then a .env file in the
// working directory, then the process environment, later sources winning.
// Lookup happens once at startup; the loader only ever sees plain values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/matsen/confpapers/internal/loader"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "confpapers"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Environment variables that override the config file.
const (
	EnvDataRoot     = "PAPERS_DATA_ROOT"
	EnvFallbackYear = "PAPERS_FALLBACK_YEAR"
	EnvLogMode      = "PAPERS_LOG_MODE"
)

// Config is the effective configuration.
type Config struct {
	DataRoot     string          `yaml:"data_root,omitempty" json:"data_root"`
	FallbackYear int             `yaml:"fallback_year,omitempty" json:"fallback_year"`
	LogMode      string          `yaml:"log_mode,omitempty" json:"log_mode"` // dev, prod, nop
	StrictRows   bool            `yaml:"strict_rows,omitempty" json:"strict_rows"`
	Conferences  []loader.Source `yaml:"conferences,omitempty" json:"conferences,omitempty"` // Extra registry entries
}

// ErrDataRootNotConfigured is returned when no data root is set anywhere.
var ErrDataRootNotConfigured = errors.New("data_root not configured")

// ErrDataRootNotExist is returned when the configured data root doesn't exist.
var ErrDataRootNotExist = errors.New("data_root does not exist")

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		FallbackYear: loader.DefaultFallbackYear,
		LogMode:      "nop",
	}
}

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/confpapers/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load builds the effective configuration from the config file, .env and the
// environment.
func Load() (*Config, error) {
	cfg, err := LoadFile(Path())
	if err != nil {
		return nil, err
	}

	// A missing .env is fine
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML config file over the defaults.
// Returns the defaults (not an error) if the file doesn't exist.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DataRoot = ExpandPath(cfg.DataRoot)
	if cfg.FallbackYear == 0 {
		cfg.FallbackYear = loader.DefaultFallbackYear
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDataRoot); ok && strings.TrimSpace(v) != "" {
		c.DataRoot = ExpandPath(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvFallbackYear); ok && strings.TrimSpace(v) != "" {
		year, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %q", EnvFallbackYear, v)
		}
		c.FallbackYear = year
	}
	if v, ok := lookup(EnvLogMode); ok && strings.TrimSpace(v) != "" {
		c.LogMode = strings.TrimSpace(v)
	}
	return nil
}

// Registry returns the default conference registry extended with any
// conferences from the config file.
func (c *Config) Registry() loader.Registry {
	return loader.DefaultRegistry.Merge(c.Conferences)
}

// LoaderOptions translates the configuration into loader options.
func (c *Config) LoaderOptions() []loader.Option {
	opts := []loader.Option{
		loader.WithFallbackYear(c.FallbackYear),
		loader.WithRegistry(c.Registry()),
	}
	if c.StrictRows {
		opts = append(opts, loader.WithStrictRows())
	}
	return opts
}

// ValidateDataRoot checks that the data root is set and is a directory.
func (c *Config) ValidateDataRoot() error {
	return CheckDataRoot(c.DataRoot)
}

// CheckDataRoot checks that root is set and is a directory.
func CheckDataRoot(root string) error {
	if root == "" {
		return ErrDataRootNotConfigured
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDataRootNotExist, root)
	}
	if !info.IsDir() {
		return fmt.Errorf("data_root is not a directory: %s", root)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// HelpfulConfigMessage explains how to configure the data root.
func HelpfulConfigMessage() string {
	configPath := Path()
	return fmt.Sprintf(`No data root configured.

Set %s to the directory holding the conference folders
(NEURIPS/neurips_papers.csv, ICLR/iclr_papers.csv, ...), or create %s:
  mkdir -p %s
  echo 'data_root: /path/to/papers' > %s`,
		EnvDataRoot,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
