package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"financeiro/internal/config"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("FINANCEIRO_TEST_VALUE=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINANCEIRO_TEST_VALUE", "")
	os.Unsetenv("FINANCEIRO_TEST_VALUE")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("FINANCEIRO_TEST_VALUE"); got != "from-file" {
		t.Errorf("expected value from file, got %q", got)
	}
}

func TestLoadEnvFileMissingIsIgnored(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := SetupLogger(&config.Config{LogLevel: "loud"}, &buf); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestLoadAndValidateConfigOverrides(t *testing.T) {
	t.Setenv("DATA_BACKEND", "")
	cfg, err := LoadAndValidateConfig(func(c *config.Config) { c.DataBackend = config.BackendMemory })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataBackend != config.BackendMemory {
		t.Errorf("override not applied: %s", cfg.DataBackend)
	}

	if _, err := LoadAndValidateConfig(func(c *config.Config) { c.Port = "x" }); err == nil {
		t.Error("expected validation error")
	}
}
