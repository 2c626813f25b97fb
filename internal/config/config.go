// Package config loads fechamento settings from config/fechamento.yaml with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/datsun80zx/fechamento/internal/payroll"
	"github.com/datsun80zx/fechamento/internal/period"
	"github.com/datsun80zx/fechamento/internal/report"
)

const defaultPath = "config/fechamento.yaml"

type Config struct {
	DatabaseURL string             `yaml:"database_url"`
	Policy      string             `yaml:"policy"`
	OutputDir   string             `yaml:"output_dir"`
	LogLevel    string             `yaml:"log_level"`
	Discounts   map[string]float64 `yaml:"discounts"`
	Report      ReportConfig       `yaml:"report"`
}

// ReportConfig overrides the branding of the PDF template. Empty fields keep
// the defaults.
type ReportConfig struct {
	Title   string `yaml:"title"`
	Address string `yaml:"address"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	Phone   string `yaml:"phone"`
}

func defaults() *Config {
	return &Config{
		Policy:    string(period.NextFriday),
		OutputDir: "reports",
		LogLevel:  "info",
	}
}

// Load reads the file named by FECHAMENTO_CONFIG, or config/fechamento.yaml
// found from the working directory upwards. A missing default file is not an
// error. Environment variables override file values.
func Load() (*Config, error) {
	path := os.Getenv("FECHAMENTO_CONFIG")
	if path == "" {
		p, ok := findConfig()
		if !ok {
			cfg := defaults()
			applyEnv(cfg)
			return cfg, cfg.Validate()
		}
		path = p
	}
	return LoadFile(path)
}

// LoadFile reads the config at path and applies environment overrides
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	applyEnv(cfg)
	return cfg, cfg.Validate()
}

// Parse decodes YAML on top of the defaults without consulting the environment
func Parse(b []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfig() (string, bool) {
	path := defaultPath
	for i := 0; i < 8; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		path = filepath.Join("..", path)
	}
	return "", false
}

func applyEnv(cfg *Config) {
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Policy = getEnv("FECHAMENTO_POLICY", cfg.Policy)
	cfg.OutputDir = getEnv("FECHAMENTO_OUTPUT", cfg.OutputDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validate checks the policy name, discount rates and log level
func (c *Config) Validate() error {
	if _, err := period.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := c.DiscountTable(); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("config: output_dir must not be empty")
	}
	return nil
}

// PeriodPolicy returns the configured pay period policy
func (c *Config) PeriodPolicy() period.Policy {
	p, err := period.ParsePolicy(c.Policy)
	if err != nil {
		return period.NextFriday
	}
	return p
}

// DiscountTable returns the configured rates, or the built-in table when none are set
func (c *Config) DiscountTable() (payroll.DiscountTable, error) {
	if len(c.Discounts) == 0 {
		return payroll.DefaultDiscounts(), nil
	}
	return payroll.NewDiscountTable(c.Discounts)
}

// Template applies the branding overrides to the default report template
func (c *Config) Template() report.Template {
	t := report.DefaultTemplate()
	if c.Report.Title != "" {
		t.Title = c.Report.Title
	}
	if c.Report.Address != "" {
		t.Address = c.Report.Address
	}
	if c.Report.City != "" {
		t.City = c.Report.City
	}
	if c.Report.State != "" {
		t.State = c.Report.State
	}
	if c.Report.Phone != "" {
		t.Phone = c.Report.Phone
	}
	return t
}

// Level returns the slog level for LogLevel
func (c *Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid log_level %q", s)
	}
	return l, nil
}
