package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/WJQSERVER/scy"
)

// Config holds the settings that can be given in a config file. Command
// line flags take precedence over it.
type Config struct {
	Mode     string `toml:"mode" yaml:"mode"`
	MaxDepth int    `toml:"max_depth" yaml:"max_depth"`
	JSON     bool   `toml:"json" yaml:"json"`
	Indent   string `toml:"indent" yaml:"indent"`
	Spans    bool   `toml:"spans" yaml:"spans"`
	Workers  int    `toml:"workers" yaml:"workers"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Mode:     scy.ModeModule.String(),
		MaxDepth: scy.DefaultMaxDepth,
		Workers:  runtime.NumCPU(),
		LogLevel: "warn",
	}
}

// LoadConfig reads a TOML or YAML file, chosen by extension. Fields the file
// leaves out keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("TOML parse error in %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("YAML parse error in %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.fillDefaults()
	return cfg, cfg.validate()
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = def.MaxDepth
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

func (c Config) validate() error {
	if _, err := scy.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) parseMode() scy.Mode {
	mode, _ := scy.ParseMode(c.Mode)
	return mode
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

func (c Config) formatOptions() scy.FormatOptions {
	opts := scy.FormatOptions{Spans: c.Spans}
	if c.Indent != "" {
		opts.Style = scy.StyleIndented
		opts.Indent = c.Indent
	}
	return opts
}
