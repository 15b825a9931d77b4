package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/healthquest/healthquest/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type ledgerFunc func(ctx context.Context) error

func (f ledgerFunc) VerifyLedger(ctx context.Context) error { return f(ctx) }

var okLedger = ledgerFunc(func(context.Context) error { return nil })

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestStandardChecks(t *testing.T) {
	db := newTestDB(t)
	if got := len(StandardChecks(db, t.TempDir(), okLedger)); got != 3 {
		t.Errorf("checks = %d, want 3", got)
	}
	if got := len(StandardChecks(nil, t.TempDir(), okLedger)); got != 2 {
		t.Errorf("checks without store = %d, want 2", got)
	}
}

func TestChecker_RunAllHealthy(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(0, StandardChecks(db, t.TempDir(), okLedger)...)
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("Statuses() = %d, want 3", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	c := NewChecker(0, StandardChecks(nil, t.TempDir(), okLedger)...)

	// No statuses yet, so IsHealthy is vacuously true.
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run (no statuses)")
	}
}

func TestChecker_ClosedDB(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(0, StandardChecks(db, t.TempDir(), okLedger)...)
	db.Close()
	c.RunOnce(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() should be false with a closed database")
	}
	for _, s := range c.Statuses() {
		if s.Name == "store" && (s.Healthy || s.Error == "") {
			t.Errorf("store status = %+v, want unhealthy with error", s)
		}
	}
}

func TestChecker_RecoversMissingDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	c := NewChecker(0, StandardChecks(nil, dir, okLedger)...)
	c.RunOnce(context.Background())

	if !c.IsHealthy() {
		t.Errorf("missing data dir should be recreated: %+v", c.Statuses())
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("data dir not recreated: %v", err)
	}
}

func TestChecker_DataDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := checkDataDir(path); err == nil {
		t.Error("checkDataDir() should fail for a regular file")
	}
}

func TestChecker_LedgerMismatch(t *testing.T) {
	bad := ledgerFunc(func(context.Context) error { return errors.New("balance mismatch") })
	c := NewChecker(0, StandardChecks(nil, t.TempDir(), bad)...)
	c.RunOnce(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() should be false on a ledger mismatch")
	}
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	c := NewChecker(0, StandardChecks(nil, t.TempDir(), okLedger)...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
	if len(c.Statuses()) != 2 {
		t.Errorf("Statuses() = %d, want 2 after the initial run", len(c.Statuses()))
	}
}
