package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	coreconfig "github.com/K0rzet/obuffka-assistant/core/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 99
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("unexpected token %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 99 {
		t.Fatalf("unexpected admin id %d", cfg.Telegram.AdminID)
	}
	if cfg.Telegram.RunMode != coreconfig.RunModeLongpoll {
		t.Fatalf("expected run mode to default to longpoll, got %q", cfg.Telegram.RunMode)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging level %q", cfg.Logging.Level)
	}
}

func TestLoadConfigRequiresAdminID(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for missing admin_id")
	}
	if !strings.Contains(err.Error(), "admin_id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 99
`)
	t.Setenv("TELEGRAM_ADMIN_ID", "777")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Telegram.AdminID != 777 {
		t.Fatalf("expected env override to win, got %d", cfg.Telegram.AdminID)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
