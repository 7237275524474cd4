package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, k := range []string{"DB_PATH", "REMINDER_DELAY", "WEEK_DAYS", "MONTH_DAYS", "TIMEZONE", "LOG_LEVEL", "HTTP_ADDR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBName != DBName {
		t.Errorf("DBName = %q", cfg.DBName)
	}
	if cfg.ReminderDelay != 600*time.Second {
		t.Errorf("ReminderDelay = %v, want 10m", cfg.ReminderDelay)
	}
	if cfg.Windows.WeekDays != 7 || cfg.Windows.MonthDays != 30 {
		t.Errorf("Windows = %+v", cfg.Windows)
	}
	if cfg.Location != time.Local {
		t.Errorf("Location = %v, want Local", cfg.Location)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("REMINDER_DELAY", "90s")
	t.Setenv("WEEK_DAYS", "5")
	t.Setenv("MONTH_DAYS", "31")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBName != "/tmp/x.db" || cfg.ReminderDelay != 90*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Windows.WeekDays != 5 || cfg.Windows.MonthDays != 31 {
		t.Errorf("Windows = %+v", cfg.Windows)
	}
	if cfg.Location.String() != "UTC" || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("Location = %v, LogLevel = %v", cfg.Location, cfg.LogLevel)
	}
}

func TestReminderDelaySeconds(t *testing.T) {
	t.Setenv("REMINDER_DELAY", "600")
	if d := getEnvDuration("REMINDER_DELAY", 0); d != 10*time.Minute {
		t.Errorf("got %v", d)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown timezone")
	}
	t.Setenv("TIMEZONE", "UTC")

	t.Setenv("WEEK_DAYS", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for WEEK_DAYS=0")
	}
}

func TestDotEnvIsRead(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	os.Unsetenv("MONTH_DAYS")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MONTH_DAYS=28\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("MONTH_DAYS") })

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Windows.MonthDays != 28 {
		t.Errorf("MonthDays = %d, want 28", cfg.Windows.MonthDays)
	}
}

func TestBotToken(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "token")
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")

	if got := getBotToken(secret); got != "from-env" {
		t.Errorf("without secret got %q", got)
	}
	if err := os.WriteFile(secret, []byte(" from-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := getBotToken(secret); got != "from-secret" {
		t.Errorf("with secret got %q", got)
	}

	c := &Config{}
	if c.ValidateBot() == nil {
		t.Error("empty token must fail ValidateBot")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
