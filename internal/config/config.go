package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/tabclean/internal/clean"
	"github.com/KaramelBytes/tabclean/internal/report"
	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Alpha           float64 `mapstructure:"alpha" yaml:"alpha"`
	DefaultYear     int     `mapstructure:"default_year" yaml:"default_year"`
	CollisionPolicy string  `mapstructure:"collision_policy" yaml:"collision_policy"`
	Language        string  `mapstructure:"language" yaml:"language"`
	OutputFormat    string  `mapstructure:"output_format" yaml:"output_format"`
	LogLevel        string  `mapstructure:"log_level" yaml:"log_level"`

	// CSV/XLSX input
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"alpha", "default_year", "collision_policy", "language", "output_format", "log_level",
	"delimiter", "decimal_separator", "thousands_separator",
}

// DefaultPath returns ~/.tabclean/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabclean", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabclean/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
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
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABCLEAN")
	v.AutomaticEnv()

	v.SetDefault("alpha", 0.05)
	v.SetDefault("default_year", clean.DefaultYear)
	v.SetDefault("collision_policy", string(clean.CollisionFail))
	v.SetDefault("language", string(report.DefaultLanguage))
	v.SetDefault("output_format", string(report.FormatText))
	v.SetDefault("log_level", "info")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// a missing file is fine; a malformed one is not
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate checks every key holds a usable value.
func (c *Global) Validate() error {
	if !(c.Alpha > 0 && c.Alpha < 1) {
		return fmt.Errorf("alpha must be in (0, 1), got %v", c.Alpha)
	}
	if c.DefaultYear < 1000 || c.DefaultYear > 9999 {
		return fmt.Errorf("default_year must have four digits, got %d", c.DefaultYear)
	}
	if _, err := clean.ParseCollisionPolicy(c.CollisionPolicy); err != nil {
		return err
	}
	if _, err := report.ParseLanguage(c.Language); err != nil {
		return err
	}
	if _, err := report.ParseFormat(c.OutputFormat); err != nil {
		return err
	}
	if _, err := table.ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	if _, err := table.ParseDecimalSeparator(c.DecimalSeparator); err != nil {
		return err
	}
	if _, err := table.ParseThousandsSeparator(c.ThousandsSeparator); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); c.LogLevel != "" && err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}
