package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	SeqURL    string `mapstructure:"seq_url" yaml:"seq_url"`

	// Sessions and uploads
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" yaml:"session_ttl_minutes"`
	MaxUploadMB       int `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	PreviewRows       int `mapstructure:"preview_rows" yaml:"preview_rows"`

	// Charts
	ChartWidth         int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight        int `mapstructure:"chart_height" yaml:"chart_height"`
	BarMaxCategories   int `mapstructure:"bar_max_categories" yaml:"bar_max_categories"`
	PieMaxCategories   int `mapstructure:"pie_max_categories" yaml:"pie_max_categories"`
	HeatmapWarnColumns int `mapstructure:"heatmap_warn_columns" yaml:"heatmap_warn_columns"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		ListenAddr:         ":8501",
		LogLevel:           "info",
		LogFormat:          "text",
		SessionTTLMinutes:  30,
		MaxUploadMB:        200,
		PreviewRows:        5,
		ChartWidth:         800,
		ChartHeight:        500,
		BarMaxCategories:   20,
		PieMaxCategories:   10,
		HeatmapWarnColumns: 15,
	}
}

// SessionTTL is SessionTTLMinutes as a duration.
func (c *Global) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MaxUploadBytes is the request body cap for uploads.
func (c *Global) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Validate rejects values the server cannot run with.
func (c *Global) Validate() error {
	switch {
	case c.ListenAddr == "":
		return fmt.Errorf("listen_addr must not be empty")
	case c.SessionTTLMinutes <= 0:
		return fmt.Errorf("session_ttl_minutes must be positive, got %d", c.SessionTTLMinutes)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	case c.PreviewRows < 0:
		return fmt.Errorf("preview_rows must not be negative, got %d", c.PreviewRows)
	case c.ChartWidth < 100 || c.ChartHeight < 100:
		return fmt.Errorf("chart size %dx%d is too small", c.ChartWidth, c.ChartHeight)
	case c.BarMaxCategories <= 0 || c.PieMaxCategories <= 0:
		return fmt.Errorf("category caps must be positive")
	}
	return nil
}

// DefaultDir is ~/.tidyloom.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tidyloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tidyloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TIDYLOOM")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("seq_url", "")
	v.SetDefault("session_ttl_minutes", d.SessionTTLMinutes)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("preview_rows", d.PreviewRows)
	// Chart defaults
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
	v.SetDefault("bar_max_categories", d.BarMaxCategories)
	v.SetDefault("pie_max_categories", d.PieMaxCategories)
	v.SetDefault("heatmap_warn_columns", d.HeatmapWarnColumns)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// a missing explicit file is created by Save later
		if _, err := os.Stat(cfgFile); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
			}
		}
	} else {
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
