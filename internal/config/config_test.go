package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "CALORIX_DB=/tmp/from-file.db\nPORT=9090\nOPENAI_MODEL=file-model\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("OPENAI_MODEL", "env-model")
	// Registered so values loaded from the file are removed after the test.
	t.Setenv("CALORIX_DB", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("CALORIX_DB")
	os.Unsetenv("PORT")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/from-file.db" || cfg.Port != 9090 || cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.OpenAIModel != "env-model" {
		t.Fatalf("expected environment to win, got %q", cfg.OpenAIModel)
	}
	if cfg.ReminderTimezone != "Europe/Istanbul" || cfg.AWSRegion == "" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("PORT", "eighty")
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatalf("expected invalid PORT error")
	}

	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatalf("expected invalid LOG_LEVEL error")
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("CALORIX_VERBOSE", "true")
	if !Verbose() {
		t.Fatalf("expected verbose")
	}
	t.Setenv("CALORIX_VERBOSE", "maybe")
	if getEnvBool("CALORIX_VERBOSE", false) {
		t.Fatalf("expected fallback for unparsable bool")
	}
}
