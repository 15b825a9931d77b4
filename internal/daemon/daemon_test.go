package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HEALTHQUEST_HOME", home)
	t.Setenv("PORT", "")
	cfg := DefaultConfig()
	cfg.API.Port = 0
	cfg.Logging.Level = "quiet"
	return cfg
}

func TestNewWithConfig_SQLite(t *testing.T) {
	cfg := testConfig(t)
	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if d.DB == nil || d.Backups == nil {
		t.Fatal("durable daemon should have a database and a backup manager")
	}
	if _, err := os.Stat(filepath.Join(Home(), "state.db")); err != nil {
		t.Errorf("state.db not created: %v", err)
	}

	d.Health.RunOnce(context.Background())
	if !d.Health.IsHealthy() {
		t.Errorf("fresh daemon unhealthy: %+v", d.Health.Statuses())
	}

	info, err := d.Backups.Create(context.Background())
	if err != nil {
		t.Fatalf("Backups.Create() error: %v", err)
	}
	if filepath.Dir(info.Path) != filepath.Join(Home(), "backups") {
		t.Errorf("backup written to %s", info.Path)
	}
}

func TestNewWithConfig_Ephemeral(t *testing.T) {
	cfg := testConfig(t)
	fixed := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	d, err := NewWithConfig(cfg, Ephemeral(), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if d.DB != nil || d.Backups != nil {
		t.Error("ephemeral daemon should not open a database")
	}
	if _, err := os.Stat(filepath.Join(Home(), "state.db")); !os.IsNotExist(err) {
		t.Errorf("ephemeral daemon touched state.db: %v", err)
	}
	if got := d.Engine.Today(); got != "2026-06-01" {
		t.Errorf("Engine.Today() = %q, want 2026-06-01", got)
	}
}

func TestNewWithConfig_Invalid(t *testing.T) {
	cfg := testConfig(t)
	cfg.Clock.Timezone = "Nowhere/Special"
	if _, err := NewWithConfig(cfg, Ephemeral()); err == nil {
		t.Error("NewWithConfig() should reject an unknown timezone")
	}
}

func TestNewWithConfig_LogFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logging.File = "logs/healthquest.log"
	d, err := NewWithConfig(cfg, Ephemeral())
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	d.Close()
	if _, err := os.Stat(filepath.Join(Home(), "logs", "healthquest.log")); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.Host = "127.0.0.1"
	d, err := NewWithConfig(cfg, Ephemeral())
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Serve(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not stop after cancel")
	}
}
