// Package config loads billpad settings from a YAML or TOML file, then
// applies BILLPAD_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/maxBezel/billpad/numfmt"
)

const (
	EnvToken    = "BILLPAD_TOKEN"
	EnvDB       = "BILLPAD_DB"
	EnvLogLevel = "BILLPAD_LOG_LEVEL"
)

type Telegram struct {
	Token   string `yaml:"token" toml:"token"`
	Timeout int    `yaml:"timeout" toml:"timeout"`
	Debug   bool   `yaml:"debug" toml:"debug"`
}

type Storage struct {
	Path string `yaml:"path" toml:"path"`
}

type Log struct {
	Level   string `yaml:"level" toml:"level"`
	Console bool   `yaml:"console" toml:"console"`
}

type Format struct {
	Grouping          string  `yaml:"grouping" toml:"grouping"`
	MaxPlainMagnitude float64 `yaml:"max_plain_magnitude" toml:"max_plain_magnitude"`
	MantissaDigits    int     `yaml:"mantissa_digits" toml:"mantissa_digits"`
	RoundingDigits    int     `yaml:"rounding_digits" toml:"rounding_digits"`
}

type Input struct {
	QuickDiscount bool `yaml:"quick_discount" toml:"quick_discount"`
}

type Archive struct {
	Limit int `yaml:"limit" toml:"limit"`
}

type Config struct {
	Telegram  Telegram          `yaml:"telegram" toml:"telegram"`
	Storage   Storage           `yaml:"storage" toml:"storage"`
	Log       Log               `yaml:"log" toml:"log"`
	Format    Format            `yaml:"format" toml:"format"`
	Input     Input             `yaml:"input" toml:"input"`
	Archive   Archive           `yaml:"archive" toml:"archive"`
	Shortcuts map[string]string `yaml:"shortcuts" toml:"shortcuts"`
}

func Default() Config {
	f := numfmt.Default()
	return Config{
		Telegram: Telegram{Timeout: 60},
		Storage:  Storage{Path: "data/billpad.db"},
		Log:      Log{Level: "info", Console: true},
		Format: Format{
			Grouping:          f.Grouping.String(),
			MaxPlainMagnitude: f.MaxPlainMagnitude,
			MantissaDigits:    f.MantissaDigits,
			RoundingDigits:    f.RoundingDigits,
		},
		Input:   Input{QuickDiscount: true},
		Archive: Archive{Limit: 20},
	}
}

// Load reads path over the defaults. An empty path loads only defaults and
// the environment. The decoder is picked by extension: .toml for TOML,
// anything else as YAML.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvToken); v != "" {
		c.Telegram.Token = v
	}
	if v := getenv(EnvDB); v != "" {
		c.Storage.Path = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

func (c Config) Validate() error {
	if _, err := numfmt.ParseGrouping(c.Format.Grouping); err != nil {
		return fmt.Errorf("format.grouping: %w", err)
	}
	if c.Format.MaxPlainMagnitude <= 0 {
		return fmt.Errorf("format.max_plain_magnitude must be positive")
	}
	if c.Format.MantissaDigits < 1 || c.Format.RoundingDigits < 1 {
		return fmt.Errorf("format digits must be at least 1")
	}
	if c.Archive.Limit < 1 {
		return fmt.Errorf("archive.limit must be at least 1")
	}
	return nil
}

// Formatter builds the number formatter. Validate has already checked the
// grouping name.
func (c Config) Formatter() numfmt.Formatter {
	g, _ := numfmt.ParseGrouping(c.Format.Grouping)
	return numfmt.Formatter{
		Grouping:          g,
		MaxPlainMagnitude: c.Format.MaxPlainMagnitude,
		MantissaDigits:    c.Format.MantissaDigits,
		RoundingDigits:    c.Format.RoundingDigits,
	}
}
