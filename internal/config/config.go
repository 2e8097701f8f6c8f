// Package config provides configuration loading for DocForge.
// Supports YAML files, .env files and DOCFORGE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/docforge/docforge/internal/domain"
)

// Config holds all configuration for DocForge.
type Config struct {
	OCR      OCRConfig      `yaml:"ocr"`
	Optimize OptimizeConfig `yaml:"optimize"`
	Split    SplitConfig    `yaml:"split"`
	Convert  ConvertConfig  `yaml:"convert"`
	History  HistoryConfig  `yaml:"history"`
	Log      LogConfig      `yaml:"log"`
}

// OCRConfig holds default text recognition settings.
type OCRConfig struct {
	Language       string `yaml:"language"`
	DPI            int    `yaml:"dpi"`
	LayoutMode     string `yaml:"layout_mode"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
}

// OptimizeConfig holds default compression settings.
type OptimizeConfig struct {
	Type          string `yaml:"type"`
	DPI           int    `yaml:"dpi"`
	Quality       int    `yaml:"quality"`
	MaxFileSizeMB int    `yaml:"max_file_size_mb"`
}

// SplitConfig holds split output settings.
type SplitConfig struct {
	NamingTemplate string `yaml:"naming_template"`
}

// ConvertConfig holds conversion settings.
type ConvertConfig struct {
	Format string `yaml:"format"`
}

// HistoryConfig holds report history settings.
type HistoryConfig struct {
	Enabled bool         `yaml:"enabled"`
	Driver  string       `yaml:"driver"` // sqlite or postgres
	SQLite  SQLiteConfig `yaml:"sqlite"`
	DSN     string       `yaml:"dsn"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path loads defaults plus the environment.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load(".env")

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, domain.ConfigError("validate config", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with the recommended defaults.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Language:   "eng",
			DPI:        300,
			LayoutMode: "standard",
		},
		Optimize: OptimizeConfig{
			Type:          "standard",
			DPI:           150,
			Quality:       70,
			MaxFileSizeMB: 100,
		},
		Split: SplitConfig{
			NamingTemplate: "{base}_part{num}_pages{start}-{end}",
		},
		Convert: ConvertConfig{
			Format: "docx",
		},
		History: HistoryConfig{
			Enabled: true,
			Driver:  "sqlite",
			SQLite: SQLiteConfig{
				Path: defaultHistoryPath(),
			},
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// defaultHistoryPath returns $DOCFORGE_DATA_DIR/history.db, falling back to
// ~/.docforge and then the working directory.
func defaultHistoryPath() string {
	if dir := os.Getenv("DOCFORGE_DATA_DIR"); dir != "" {
		return filepath.Join(dir, "history.db")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".docforge", "history.db")
	}
	return filepath.Join(".docforge", "history.db")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.OCR.DPI < 72 || c.OCR.DPI > 600 {
		return fmt.Errorf("ocr.dpi must be between 72 and 600, got %d", c.OCR.DPI)
	}

	if c.Optimize.DPI < 72 || c.Optimize.DPI > 600 {
		return fmt.Errorf("optimize.dpi must be between 72 and 600, got %d", c.Optimize.DPI)
	}

	if c.Optimize.Quality < 1 || c.Optimize.Quality > 100 {
		return fmt.Errorf("optimize.quality must be between 1 and 100, got %d", c.Optimize.Quality)
	}

	if c.Optimize.MaxFileSizeMB < 0 {
		return fmt.Errorf("optimize.max_file_size_mb must not be negative")
	}

	if c.History.Driver != "sqlite" && c.History.Driver != "postgres" {
		return fmt.Errorf("invalid history driver: %s", c.History.Driver)
	}

	if c.History.Enabled && c.HistoryDSN() == "" {
		return fmt.Errorf("history is enabled but no %s location is configured", c.History.Driver)
	}

	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// HistoryDSN returns the connection string for the configured history driver.
func (c *Config) HistoryDSN() string {
	if c.History.Driver == "sqlite" {
		return c.History.SQLite.Path
	}
	return c.History.DSN
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCFORGE_LANGUAGE"); v != "" {
		cfg.OCR.Language = v
	}

	if v := envInt("DOCFORGE_DPI"); v > 0 {
		cfg.OCR.DPI = v
	}

	if v := os.Getenv("DOCFORGE_LAYOUT_MODE"); v != "" {
		cfg.OCR.LayoutMode = v
	}

	// TESSDATA_PREFIX is what tesseract itself reads
	if v := os.Getenv("TESSDATA_PREFIX"); v != "" && cfg.OCR.TessdataPrefix == "" {
		cfg.OCR.TessdataPrefix = v
	}
	if v := os.Getenv("DOCFORGE_TESSDATA_PREFIX"); v != "" {
		cfg.OCR.TessdataPrefix = v
	}

	if v := os.Getenv("DOCFORGE_OPTIMIZE_TYPE"); v != "" {
		cfg.Optimize.Type = v
	}

	if v := envInt("DOCFORGE_QUALITY"); v > 0 {
		cfg.Optimize.Quality = v
	}

	if v := envInt("DOCFORGE_MAX_FILE_SIZE_MB"); v > 0 {
		cfg.Optimize.MaxFileSizeMB = v
	}

	if v := os.Getenv("DOCFORGE_CONVERT_FORMAT"); v != "" {
		cfg.Convert.Format = v
	}

	if v := os.Getenv("DOCFORGE_HISTORY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.History.Enabled = b
		}
	}

	if v := os.Getenv("DOCFORGE_HISTORY_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.History.Driver = "sqlite"
			cfg.History.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.History.Driver = "postgres"
			cfg.History.DSN = v
		}
	}

	if v := os.Getenv("DOCFORGE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("DOCFORGE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
