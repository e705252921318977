package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Scan     ScanConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// ScanConfig holds evidence-scan settings.
type ScanConfig struct {
	Root       string
	Extensions []string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	GroupBy   string `mapstructure:"group_by"`
	SortOrder string `mapstructure:"sort_order"`
}

// Load reads configuration from file and env. Env var overrides use prefix IMAGETRIAGE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "imagetriage", "imagetriage.db"))
	v.SetDefault("scan.root", "")
	v.SetDefault("scan.extensions", []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".mp4", ".mov", ".avi"})
	v.SetDefault("ui.group_by", "folder")
	v.SetDefault("ui.sort_order", "alphabetical")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("IMAGETRIAGE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "imagetriage"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("IMAGETRIAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// Used by the TUI to persist the last selected grouping and sort order.
func Save(cfg Config) error {
	path := os.Getenv("IMAGETRIAGE_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "imagetriage", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("scan.root", cfg.Scan.Root)
	v.Set("scan.extensions", cfg.Scan.Extensions)
	v.Set("ui.group_by", cfg.UI.GroupBy)
	v.Set("ui.sort_order", cfg.UI.SortOrder)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
