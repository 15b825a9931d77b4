// Package sqlite provides SQLite-based persistent storage for HealthQuest.
// Uses WAL mode for crash-safe writes. Every engine operation runs inside
// one SQL transaction, so a failed operation leaves no trace.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/healthquest/healthquest/internal/domain"
)

// FileName is the database file inside the data dir.
const FileName = "state.db"

// DB wraps a SQLite connection with WAL mode and migrations.
// It implements domain.Store.
type DB struct {
	db   *sql.DB
	path string
}

var _ domain.Store = (*DB)(nil)

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
// An unreadable or corrupt database is an error; it is never reset.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return OpenFile(filepath.Join(dir, FileName))
}

// OpenFile opens the database file at dbPath, such as a backup copy.
func OpenFile(dbPath string) (*DB, error) {
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db, path: dbPath}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Profile: a single row, created once at setup.
		`CREATE TABLE IF NOT EXISTS profile (
			id             INTEGER PRIMARY KEY CHECK (id = 1),
			name           TEXT NOT NULL,
			gender         TEXT NOT NULL,
			birthdate      TEXT NOT NULL,
			height         REAL NOT NULL,
			initial_weight REAL NOT NULL,
			target_weight  REAL NOT NULL,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS weight_history (
			date   TEXT PRIMARY KEY,
			weight REAL NOT NULL,
			height REAL NOT NULL
		)`,

		// Daily logs: one row per date, items as a set per kind.
		`CREATE TABLE IF NOT EXISTS daily_logs (
			date         TEXT PRIMARY KEY,
			completed    BOOLEAN NOT NULL DEFAULT 0,
			completed_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS daily_items (
			date     TEXT NOT NULL REFERENCES daily_logs(date),
			kind     TEXT NOT NULL,
			item     TEXT NOT NULL,
			added_at INTEGER NOT NULL,
			PRIMARY KEY (date, kind, item)
		)`,

		// Points ledger: append-only, balance is the running total.
		`CREATE TABLE IF NOT EXISTS points_ledger (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ref         TEXT NOT NULL UNIQUE,
			timestamp   INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			delta       INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			balance     INTEGER NOT NULL CHECK (balance >= 0)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_ts ON points_ledger(timestamp)`,

		// Dynamic tasks: AUTOINCREMENT so ids are never reused.
		`CREATE TABLE IF NOT EXISTS dynamic_tasks (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			points_reward INTEGER NOT NULL CHECK (points_reward > 0),
			start_at      INTEGER NOT NULL,
			end_at        INTEGER NOT NULL,
			completed     BOOLEAN NOT NULL DEFAULT 0,
			completed_at  INTEGER,
			deleted       BOOLEAN NOT NULL DEFAULT 0,
			created_at    INTEGER NOT NULL,
			CHECK (end_at > start_at)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_end ON dynamic_tasks(end_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Transactions ───────────────────────────────────────────────────────────

// tx implements domain.Tx over one *sql.Tx.
type tx struct {
	ctx context.Context
	tx  *sql.Tx
}

var _ domain.Tx = (*tx)(nil)

// View runs fn in a transaction that is always rolled back.
func (d *DB) View(ctx context.Context, fn func(domain.Tx) error) error {
	t, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer t.Rollback()
	return fn(&tx{ctx: ctx, tx: t})
}

// Update runs fn in a transaction and commits it if fn returns nil.
func (d *DB) Update(ctx context.Context, fn func(domain.Tx) error) error {
	t, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&tx{ctx: ctx, tx: t}); err != nil {
		t.Rollback()
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *tx) exec(query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(t.ctx, query, args...)
}

func (t *tx) query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(t.ctx, query, args...)
}

func (t *tx) queryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(t.ctx, query, args...)
}

// ─── Backup ─────────────────────────────────────────────────────────────────

// Backup writes a consistent copy of the database to dest.
// dest must not exist.
func (d *DB) Backup(ctx context.Context, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup %s already exists", dest)
	}
	if _, err := d.db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromNullUnix(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(n.Int64, 0)
}

func nullableUnixNano(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNullUnixNano(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(0, n.Int64)
}
