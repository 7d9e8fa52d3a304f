// Package config loads client settings from ~/.insight/config.yaml, the
// environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hkfi/insight-notes/internal/constants"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type BridgeConfig struct {
	URL            string        `mapstructure:"url"`
	Token          string        `mapstructure:"token"`
	EventsPath     string        `mapstructure:"events_path"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

type AutosaveConfig struct {
	QuietPeriod  time.Duration `mapstructure:"quiet_period"`
	FlushOnClose bool          `mapstructure:"flush_on_close"`
}

type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type QueryConfig struct {
	StaleTime      time.Duration `mapstructure:"stale_time"`
	MaxIdleEntries int           `mapstructure:"max_idle_entries"`
}

type NotesConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
	Search   SearchConfig   `mapstructure:"search"`
	Query    QueryConfig    `mapstructure:"query"`
	Notes    NotesConfig    `mapstructure:"notes"`
	Log      LogConfig      `mapstructure:"log"`

	path string
	v    *viper.Viper
}

var defaults = map[string]any{
	"bridge.url":              "http://127.0.0.1:7878",
	"bridge.token":            "",
	"bridge.events_path":      "/events",
	"bridge.reconnect_delay":  5 * time.Second,
	"autosave.quiet_period":   500 * time.Millisecond,
	"autosave.flush_on_close": false,
	"search.debounce":         200 * time.Millisecond,
	"query.stale_time":        time.Duration(0),
	"query.max_idle_entries":  128,
	"notes.page_size":         50,
	"log.level":               "info",
	"log.format":              "console",
}

// Keys lists every supported setting.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	return keys
}

func GetConfigPath(homeDir string) string {
	return filepath.Join(
		homeDir,
		constants.ConfigDir,
		constants.ConfigFile+"."+constants.ConfigFileType,
	)
}

// EnsureConfigExists creates the config directory and an empty config file.
func EnsureConfigExists(homeDir string) error {
	configPath := GetConfigPath(homeDir)

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return &ConfigInitError{Path: configPath, Err: err}
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		file, err := os.Create(configPath)
		if err != nil {
			return &ConfigInitError{Path: configPath, Err: err}
		}
		file.Close()
	} else if err != nil {
		return &ConfigInitError{Path: configPath, Err: err}
	}
	return nil
}

// Load reads the config for home into v. Values resolve in order: bound
// flags, INSIGHT_* environment (including .env files), the config file, then
// defaults. A nil v uses a fresh viper instance.
func Load(home string, v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	path := GetConfigPath(home)

	if err := loadEnvFiles(
		filepath.Join(home, constants.ConfigDir, constants.EnvFile),
		constants.EnvFile,
	); err != nil {
		return nil, err
	}

	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType(constants.ConfigFileType)
	if err := v.ReadInConfig(); err != nil && !missingConfig(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return decode(v, path)
}

func decode(v *viper.Viper, path string) (*Config, error) {
	cfg := &Config{path: path, v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func missingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func loadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Validate rejects settings the client cannot run with.
func (cfg *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(cfg.Bridge.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("bridge.url %q is not an absolute URL", cfg.Bridge.URL))
	}
	if !strings.HasPrefix(cfg.Bridge.EventsPath, "/") {
		errs = append(errs, fmt.Errorf("bridge.events_path must start with /"))
	}
	for name, d := range map[string]time.Duration{
		"bridge.reconnect_delay": cfg.Bridge.ReconnectDelay,
		"autosave.quiet_period":  cfg.Autosave.QuietPeriod,
		"search.debounce":        cfg.Search.Debounce,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if cfg.Query.StaleTime < 0 {
		errs = append(errs, fmt.Errorf("query.stale_time must not be negative"))
	}
	if cfg.Notes.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("notes.page_size must be positive"))
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func (cfg *Config) GetConfigPath() string {
	return cfg.path
}

// Get returns the resolved value of key.
func (cfg *Config) Get(key string) (any, error) {
	if _, ok := defaults[key]; !ok {
		return nil, fmt.Errorf("unknown setting %q", key)
	}
	return cfg.v.Get(key), nil
}

// Set changes one setting, validates the result and saves it.
func (cfg *Config) Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	prev := cfg.v.Get(key)
	cfg.v.Set(key, value)
	next, err := decode(cfg.v, cfg.path)
	if err != nil {
		cfg.v.Set(key, prev)
		return err
	}
	cfg.Bridge, cfg.Autosave, cfg.Search = next.Bridge, next.Autosave, next.Search
	cfg.Query, cfg.Notes, cfg.Log = next.Query, next.Notes, next.Log
	return cfg.Save()
}

// Save writes the config file. Durations are written in their string form.
func (cfg *Config) Save() error {
	doc := map[string]any{
		"bridge": map[string]any{
			"url":             cfg.Bridge.URL,
			"token":           cfg.Bridge.Token,
			"events_path":     cfg.Bridge.EventsPath,
			"reconnect_delay": cfg.Bridge.ReconnectDelay.String(),
		},
		"autosave": map[string]any{
			"quiet_period":   cfg.Autosave.QuietPeriod.String(),
			"flush_on_close": cfg.Autosave.FlushOnClose,
		},
		"search": map[string]any{
			"debounce": cfg.Search.Debounce.String(),
		},
		"query": map[string]any{
			"stale_time":       cfg.Query.StaleTime.String(),
			"max_idle_entries": cfg.Query.MaxIdleEntries,
		},
		"notes": map[string]any{
			"page_size": cfg.Notes.PageSize,
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(cfg.path, data, 0o600)
}
