package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/taskgenius/internal/store"
)

// Config is the on-disk application configuration.
type Config struct {
	// SQLite database file; empty means the platform data location.
	DBPath string `mapstructure:"db_path"`

	// Log file used while the TUI owns the terminal.
	LogFile string `mapstructure:"log_file"`

	// How often time-based automation rules are checked.
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// How far back a completion counts for task-completion rules.
	CompletionWindow time.Duration `mapstructure:"completion_window"`

	// Log notifications in headless mode.
	Notifications bool `mapstructure:"notifications"`
}

// fileConfig is the YAML rendering of Config with readable durations.
type fileConfig struct {
	DBPath           string `yaml:"db_path"`
	LogFile          string `yaml:"log_file"`
	TickInterval     string `yaml:"tick_interval"`
	CompletionWindow string `yaml:"completion_window"`
	Notifications    bool   `yaml:"notifications"`
}

func DefaultConfig() *Config {
	return &Config{
		DBPath:           "",
		LogFile:          filepath.Join(Dir(), "taskgenius.log"),
		TickInterval:     60 * time.Second,
		CompletionWindow: 60 * time.Second,
		Notifications:    true,
	}
}

// Dir is the directory holding the config file, database and log.
func Dir() string {
	dir, err := store.DataDir()
	if err != nil {
		return "."
	}
	return dir
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads path (DefaultPath when empty) over the defaults. A missing
// file is not an error. TASKGENIUS_* environment variables override
// both.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("taskgenius")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("tick_interval", def.TickInterval)
	v.SetDefault("completion_window", def.CompletionWindow)
	v.SetDefault("notifications", def.Notifications)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.LogFile = expandHome(cfg.LogFile)
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.CompletionWindow <= 0 {
		cfg.CompletionWindow = def.CompletionWindow
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to path, creating the
// parent directory.
func WriteDefault(path string) error {
	return Write(path, DefaultConfig())
}

func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(fileConfig{
		DBPath:           cfg.DBPath,
		LogFile:          cfg.LogFile,
		TickInterval:     cfg.TickInterval.String(),
		CompletionWindow: cfg.CompletionWindow.String(),
		Notifications:    cfg.Notifications,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	content := "# Task conGenius configuration\n# db_path empty = platform default data location\n" + string(data)
	return os.WriteFile(path, []byte(content), 0o644)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
