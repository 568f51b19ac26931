// Package config provides configuration types, defaults and loading for
// transition.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/transition/internal/model"
)

// EnvPrefix is prepended to every environment override (TRANSITION_DATABASE).
const EnvPrefix = "TRANSITION"

// AppTypeConfig declares one app type and the directory holding its apps.
type AppTypeConfig struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Config holds all configuration options for transition.
type Config struct {
	Database    string          `mapstructure:"database"`
	LogLevel    string          `mapstructure:"log_level"` // debug, info (default), warn, error
	LinkPolicy  string          `mapstructure:"link_policy"`
	TempDir     string          `mapstructure:"temp_dir"` // "" uses the OS temp dir
	ExcludeDirs []string        `mapstructure:"exclude_dirs"`
	AppTypes    []AppTypeConfig `mapstructure:"app_types"`
	Hosts       []string        `mapstructure:"hosts"`
	Watch       WatchConfig     `mapstructure:"watch"`
}

// DefaultHome returns ~/.transition, or .transition when the home
// directory cannot be determined.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".transition"
	}
	return filepath.Join(home, ".transition")
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	home := DefaultHome()
	return Config{
		Database:    filepath.Join(home, "transition.db"),
		LogLevel:    "info",
		LinkPolicy:  string(model.LinkPolicyReset),
		ExcludeDirs: []string{"__pycache__", ".cache"},
		AppTypes: []AppTypeConfig{
			{Name: "addin", Path: filepath.Join(home, "addin")},
			{Name: "docapp", Path: filepath.Join(home, "docapp")},
		},
		Hosts: []string{"excel", "word", "powerpoint", "outlook", "access", "msproject"},
		Watch: WatchConfig{Debounce: time.Second},
	}
}

// SetDefaults registers Defaults on v so that env overrides and
// partially populated files resolve against them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("database", d.Database)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("link_policy", d.LinkPolicy)
	v.SetDefault("temp_dir", d.TempDir)
	v.SetDefault("exclude_dirs", d.ExcludeDirs)
	v.SetDefault("hosts", d.Hosts)
	v.SetDefault("watch.debounce", d.Watch.Debounce)

	types := make([]map[string]any, len(d.AppTypes))
	for i, at := range d.AppTypes {
		types[i] = map[string]any{"name": at.Name, "path": at.Path}
	}
	v.SetDefault("app_types", types)
}

// Load reads configuration into a Config.
//
// Lookup order:
//  1. cfgFile when non-empty (it must exist)
//  2. .transition/config.yaml (current directory)
//  3. ~/.config/transition/config.yaml (user config)
//
// A missing file in 2 or 3 is not an error; defaults apply. Environment
// variables prefixed TRANSITION_ override file values. Paths starting with
// ~/ are expanded.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(filepath.Join(".transition", "config.yaml")); err == nil {
		v.SetConfigFile(filepath.Join(".transition", "config.yaml"))
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "transition"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.expand()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) expand() {
	c.Database = ExpandHome(c.Database)
	c.TempDir = ExpandHome(c.TempDir)
	for i := range c.AppTypes {
		c.AppTypes[i].Path = ExpandHome(c.AppTypes[i].Path)
	}
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if c.Database == "" {
		return errors.New("database is required")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := model.ParseLinkPolicy(c.LinkPolicy); err != nil {
		return fmt.Errorf("link_policy: %w", err)
	}
	if err := ValidateAppTypes(c.AppTypes); err != nil {
		return err
	}
	if err := ValidateHosts(c.Hosts); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// ValidateAppTypes checks app type declarations for errors.
func ValidateAppTypes(types []AppTypeConfig) error {
	seen := make(map[string]bool, len(types))
	for i, at := range types {
		if at.Name == "" {
			return fmt.Errorf("app_types %d: name is required", i)
		}
		if at.Path == "" {
			return fmt.Errorf("app_types %d (%s): path is required", i, at.Name)
		}
		if seen[at.Name] {
			return fmt.Errorf("app_types %d (%s): duplicate name", i, at.Name)
		}
		seen[at.Name] = true
	}
	return nil
}

// ValidateHosts checks the host list for errors. Names are compared
// after canonicalisation, so "Excel" and "excel" collide.
func ValidateHosts(hosts []string) error {
	seen := make(map[string]bool, len(hosts))
	for i, h := range hosts {
		name := model.HostName(h)
		if name == "" {
			return fmt.Errorf("hosts %d: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("hosts %d (%s): duplicate name", i, h)
		}
		seen[name] = true
	}
	return nil
}

// ParseLogLevel maps a log_level value to a slog.Level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", s)
	}
}

// Level returns the configured log level.
func (c Config) Level() slog.Level {
	l, _ := ParseLogLevel(c.LogLevel)
	return l
}

// Policy returns the configured link policy.
func (c Config) Policy() model.LinkPolicy {
	p, _ := model.ParseLinkPolicy(c.LinkPolicy)
	return p
}

// ModelAppTypes converts the declarations to model values.
func (c Config) ModelAppTypes() []model.AppType {
	out := make([]model.AppType, len(c.AppTypes))
	for i, at := range c.AppTypes {
		out[i] = model.AppType{Name: at.Name, Path: at.Path}
	}
	return out
}
