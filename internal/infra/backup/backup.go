// Package backup writes point-in-time copies of the HealthQuest database and
// prunes old ones on a cron schedule.
package backup

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron"

	"github.com/healthquest/healthquest/internal/infra/metrics"
)

const (
	prefix = "healthquest-"
	suffix = ".db"
	stamp  = "20060102-150405.000"
)

// Source is satisfied by the SQLite store.
type Source interface {
	Backup(ctx context.Context, dest string) error
}

// Info describes one backup file.
type Info struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

// Manager creates, lists and prunes backups in one directory.
type Manager struct {
	mu   sync.Mutex
	src  Source
	dir  string
	keep int
	now  func() time.Time

	cron *cron.Cron
}

// NewManager returns a manager writing into dir. keep <= 0 keeps everything.
func NewManager(src Source, dir string, keep int) *Manager {
	return &Manager{src: src, dir: dir, keep: keep, now: time.Now}
}

// Dir is the backup directory.
func (m *Manager) Dir() string { return m.dir }

// Create writes a new backup and prunes the oldest beyond keep.
func (m *Manager) Create(ctx context.Context) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, 0700); err != nil {
		metrics.BackupsWritten.WithLabelValues("error").Inc()
		return Info{}, fmt.Errorf("create backup dir: %w", err)
	}
	name := prefix + strings.Replace(m.now().UTC().Format(stamp), ".", "", 1) + suffix
	path := filepath.Join(m.dir, name)
	if err := m.src.Backup(ctx, path); err != nil {
		metrics.BackupsWritten.WithLabelValues("error").Inc()
		return Info{}, fmt.Errorf("backup: %w", err)
	}
	metrics.BackupsWritten.WithLabelValues("ok").Inc()

	if err := m.prune(); err != nil {
		log.Printf("[backup] prune: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: name, Path: path, Size: fi.Size(), Created: fi.ModTime()}, nil
}

// List returns the backups, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:    e.Name(),
			Path:    filepath.Join(m.dir, e.Name()),
			Size:    fi.Size(),
			Created: fi.ModTime(),
		})
	}
	// Names embed a sortable timestamp.
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (m *Manager) prune() error {
	if m.keep <= 0 {
		return nil
	}
	all, err := m.List()
	if err != nil {
		return err
	}
	for _, b := range all[min(m.keep, len(all)):] {
		if err := os.Remove(b.Path); err != nil {
			return err
		}
	}
	return nil
}

// ─── Scheduling ─────────────────────────────────────────────────────────────

// Start runs Create on schedule, a cron expression or descriptor such as
// "@daily" or "@every 6h".
func (m *Manager) Start(schedule string) error {
	if _, err := cron.Parse(schedule); err != nil {
		return fmt.Errorf("backup schedule %q: %w", schedule, err)
	}
	c := cron.New()
	err := c.AddFunc(schedule, func() {
		info, err := m.Create(context.Background())
		if err != nil {
			log.Printf("[backup] scheduled backup failed: %v", err)
			return
		}
		log.Printf("[backup] wrote %s (%d bytes)", info.Name, info.Size)
	})
	if err != nil {
		return err
	}
	c.Start()

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()
	return nil
}

// Stop halts the schedule.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron != nil {
		m.cron.Stop()
		m.cron = nil
	}
}
