package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	UI        UIConfig        `mapstructure:"ui"`
	Submit    SubmitConfig    `mapstructure:"submit"`
	Statement StatementConfig `mapstructure:"statement"`
	Log       LogConfig       `mapstructure:"log"`
	Open      OpenConfig      `mapstructure:"open"`
}

type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type UIConfig struct {
	Debounce         time.Duration `mapstructure:"debounce"`
	MaxFetchFailures int           `mapstructure:"max_fetch_failures"`
	WordWrapMaxWidth int           `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int           `mapstructure:"word_wrap_min_width"`
	Colors           UIColors      `mapstructure:"colors"`
}

type UIColors struct {
	Accent  string `mapstructure:"accent"`
	Muted   string `mapstructure:"muted"`
	Success string `mapstructure:"success"`
	Warn    string `mapstructure:"warn"`
	Error   string `mapstructure:"error"`
}

type SubmitConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DefaultLanguage string        `mapstructure:"default_language"`
}

// StatementConfig lists statement languages in the order they are tried.
type StatementConfig struct {
	Languages []string `mapstructure:"languages"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type OpenConfig struct {
	DefaultOpener string `mapstructure:"default_opener"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:     "https://kilonova.ro",
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "kn/1.0 (https://github.com/pders01/kn)",
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(homeDir, ".kn.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(homeDir, ".kn", "index.bleve"),
		},
		UI: UIConfig{
			Debounce:         100 * time.Millisecond,
			MaxFetchFailures: 5,
			WordWrapMaxWidth: 120,
			WordWrapMinWidth: 40,
			Colors: UIColors{
				Accent:  "#4ECDC4",
				Muted:   "#94A3B8",
				Success: "#4ADE80",
				Warn:    "#FACC15",
				Error:   "#F87171",
			},
		},
		Submit: SubmitConfig{
			PollInterval:    5 * time.Second,
			Timeout:         5 * time.Minute,
			DefaultLanguage: "cpp17",
		},
		Statement: StatementConfig{
			Languages: []string{"ro", "en"},
		},
		Log: LogConfig{
			Level: "off",
		},
		Open: OpenConfig{
			DefaultOpener: getDefaultOpener(),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// DefaultPath is where Load looks when no explicit file is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "kn", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range settings(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("KN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)
	normalize(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// normalize replaces out-of-range values with defaults.
func normalize(cfg *Config) {
	def := defaultConfig()
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = def.API.BaseURL
	}
	if cfg.UI.Debounce < 0 {
		cfg.UI.Debounce = def.UI.Debounce
	}
	if cfg.UI.MaxFetchFailures < 1 {
		cfg.UI.MaxFetchFailures = def.UI.MaxFetchFailures
	}
	if cfg.UI.WordWrapMinWidth < 1 {
		cfg.UI.WordWrapMinWidth = def.UI.WordWrapMinWidth
	}
	if cfg.UI.WordWrapMaxWidth < cfg.UI.WordWrapMinWidth {
		cfg.UI.WordWrapMaxWidth = cfg.UI.WordWrapMinWidth
	}
	if cfg.Submit.PollInterval <= 0 {
		cfg.Submit.PollInterval = def.Submit.PollInterval
	}
	if len(cfg.Statement.Languages) == 0 {
		cfg.Statement.Languages = def.Statement.Languages
	}
}

// settings flattens cfg into dotted viper keys. Leaf keys let KN_* environment
// variables override nested values.
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"api.base_url":     cfg.API.BaseURL,
		"api.http_timeout": cfg.API.HTTPTimeout.String(),
		"api.user_agent":   cfg.API.UserAgent,

		"database.path":         cfg.Database.Path,
		"database.timeout":      cfg.Database.Timeout.String(),
		"database.search_index": cfg.Database.SearchIndex,

		"ui.debounce":            cfg.UI.Debounce.String(),
		"ui.max_fetch_failures":  cfg.UI.MaxFetchFailures,
		"ui.word_wrap_max_width": cfg.UI.WordWrapMaxWidth,
		"ui.word_wrap_min_width": cfg.UI.WordWrapMinWidth,
		"ui.colors.accent":       cfg.UI.Colors.Accent,
		"ui.colors.muted":        cfg.UI.Colors.Muted,
		"ui.colors.success":      cfg.UI.Colors.Success,
		"ui.colors.warn":         cfg.UI.Colors.Warn,
		"ui.colors.error":        cfg.UI.Colors.Error,

		"submit.poll_interval":    cfg.Submit.PollInterval.String(),
		"submit.timeout":          cfg.Submit.Timeout.String(),
		"submit.default_language": cfg.Submit.DefaultLanguage,

		"statement.languages": cfg.Statement.Languages,

		"log.level": cfg.Log.Level,
		"log.file":  cfg.Log.File,

		"open.default_opener": cfg.Open.DefaultOpener,
	}
}

func Save(config *Config, path string) error {
	v := viper.New()
	for key, value := range settings(config) {
		v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
