package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/datsun80zx/fechamento/internal/period"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FECHAMENTO_CONFIG", "DATABASE_URL", "FECHAMENTO_POLICY", "FECHAMENTO_OUTPUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fechamento.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
policy: most-recent
output_dir: out
log_level: debug
discounts:
  pm3: 0.25
report:
  title: Acme Remodeling
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PeriodPolicy() != period.MostRecent || cfg.OutputDir != "out" || cfg.Level() != slog.LevelDebug {
		t.Fatalf("cfg=%+v", cfg)
	}

	table, err := cfg.DiscountTable()
	if err != nil {
		t.Fatalf("discounts: %v", err)
	}
	if !table.Rate("PM3").Equal(decimal.RequireFromString("0.25")) || !table.Rate("PM2").IsZero() {
		t.Fatalf("table=%v", table)
	}

	tmpl := cfg.Template()
	if tmpl.Title != "Acme Remodeling" || tmpl.City != "Sample City" {
		t.Fatalf("template title=%s city=%s", tmpl.Title, tmpl.City)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "policy: most-recent\noutput_dir: out\n")
	t.Setenv("FECHAMENTO_POLICY", "next-friday")
	t.Setenv("FECHAMENTO_OUTPUT", "/tmp/reports")
	t.Setenv("DATABASE_URL", "postgres://localhost/fechamento")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PeriodPolicy() != period.NextFriday || cfg.OutputDir != "/tmp/reports" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://localhost/fechamento" || cfg.Level() != slog.LevelWarn {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PeriodPolicy() != period.NextFriday || cfg.OutputDir != "reports" || cfg.Level() != slog.LevelInfo {
		t.Fatalf("cfg=%+v", cfg)
	}
	table, err := cfg.DiscountTable()
	if err != nil || !table.Rate("PM6").Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("default discounts=%v err=%v", table, err)
	}
}

func TestLoadFindsConfigUpwards(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "config", "fechamento.yaml"), []byte("output_dir: found\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, nested)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputDir != "found" {
		t.Fatalf("output dir=%s", cfg.OutputDir)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown policy", "policy: every-monday\n"},
		{"discount out of range", "discounts:\n  PM3: 1.5\n"},
		{"negative discount", "discounts:\n  PM3: -0.1\n"},
		{"bad log level", "log_level: chatty\n"},
		{"empty output", "output_dir: \"  \"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := LoadFile(writeConfig(t, tc.body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestRepositoryConfigIsValid(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(filepath.Join("..", "..", "config", "fechamento.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	table, _ := cfg.DiscountTable()
	if len(table.Installers()) != 7 {
		t.Fatalf("installers=%v", table.Installers())
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
