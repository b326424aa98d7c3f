// Package config loads the dyntext CLI configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/pkg/domain"
)

// Rotation source kinds.
const (
	SourceMemory = "memory"
	SourceFile   = "file"
	SourceRedis  = "redis"
)

// Config is the root of the configuration file.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Label    LabelConfig    `mapstructure:"label"`
	Rotation RotationConfig `mapstructure:"rotation"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LabelConfig holds the token configuration.
type LabelConfig struct {
	Policy      domain.UpdatePolicy `mapstructure:"policy"`
	TokenLength TokenLengthConfig   `mapstructure:"token_length"`
	Frequency   int                 `mapstructure:"frequency"`
}

// TokenLengthConfig is the inclusive token length range.
type TokenLengthConfig struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

// RotationConfig selects and configures the rotation source.
type RotationConfig struct {
	Source       string        `mapstructure:"source"`
	Interval     time.Duration `mapstructure:"interval"`
	Texts        []string      `mapstructure:"texts"`
	File         string        `mapstructure:"file"`
	Watch        bool          `mapstructure:"watch"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	Redis        RedisConfig   `mapstructure:"redis"`
}

// RedisConfig locates the Redis list holding the texts.
type RedisConfig struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	Key         string `mapstructure:"key"`
	IntervalKey string `mapstructure:"interval_key"`
}

// HTTPConfig configures the status server. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: logging.FormatText},
		Label: LabelConfig{
			Policy:      domain.DefaultUpdatePolicy,
			TokenLength: TokenLengthConfig{Min: domain.DefaultTokenMin, Max: domain.DefaultTokenMax},
			Frequency:   domain.DefaultTokenFrequency,
		},
		Rotation: RotationConfig{
			Source:   SourceMemory,
			Interval: 3 * time.Second,
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  "dyntext:texts",
			},
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	raw, err := Unmarshal(path, data)
	if err != nil {
		return cfg, err
	}
	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.TokenConfiguration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Rotation.Source {
	case SourceMemory, SourceRedis:
	case SourceFile:
		if c.Rotation.File == "" {
			errs = append(errs, errors.New("rotation.file is required for the file source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown rotation source %q", c.Rotation.Source))
	}
	if c.Rotation.Interval <= 0 {
		errs = append(errs, fmt.Errorf("%w: rotation.interval %v", domain.ErrInvalidInterval, c.Rotation.Interval))
	}
	return errors.Join(errs...)
}

// TokenConfiguration builds the validated label configuration.
func (c Config) TokenConfiguration() (domain.TokenConfiguration, error) {
	return domain.NewTokenConfiguration(
		domain.TokenRange{Min: c.Label.TokenLength.Min, Max: c.Label.TokenLength.Max},
		c.Label.Frequency,
		c.Label.Policy,
	)
}

// LogLevel parses the configured level.
func (c Config) LogLevel() (slog.Level, error) {
	return logging.ParseLevel(c.Log.Level)
}
