package daemon

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/healthquest/healthquest/internal/api"
	"github.com/healthquest/healthquest/internal/app/engine"
	"github.com/healthquest/healthquest/internal/domain"
	"github.com/healthquest/healthquest/internal/health"
	"github.com/healthquest/healthquest/internal/infra/backup"
	"github.com/healthquest/healthquest/internal/infra/memstore"
	"github.com/healthquest/healthquest/internal/infra/sqlite"
)

// Daemon is the running HealthQuest instance.
type Daemon struct {
	Config  Config
	Store   domain.Store
	DB      *sqlite.DB // nil for an ephemeral store
	Engine  *engine.Engine
	Health  *health.Checker
	Backups *backup.Manager // nil for an ephemeral store
	Server  *api.Server

	logFile *os.File
	cancel  context.CancelFunc
}

// Option adjusts how the daemon is built.
type Option func(*options)

type options struct {
	ephemeral bool
	clock     func() time.Time
}

// Ephemeral keeps all state in memory; nothing survives the process.
func Ephemeral() Option {
	return func(o *options) { o.ephemeral = true }
}

// WithClock replaces the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// New creates a daemon from the config on disk.
func New(opts ...Option) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, opts...)
}

// NewWithConfig creates a daemon with the given config.
func NewWithConfig(cfg Config, opts ...Option) (*Daemon, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Daemon{Config: cfg}
	if err := d.setupLogging(); err != nil {
		return nil, err
	}

	home := Home()
	if o.ephemeral {
		d.Store = memstore.New()
	} else {
		db, err := sqlite.Open(home)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open database: %w", err)
		}
		d.DB = db
		d.Store = db
		d.Backups = backup.NewManager(db, backupDir(cfg), cfg.Backup.Keep)
	}

	ecfg, err := cfg.EngineConfig()
	if err != nil {
		d.Close()
		return nil, err
	}
	var engineOpts []engine.Option
	if o.clock != nil {
		engineOpts = append(engineOpts, engine.WithClock(o.clock))
	}
	d.Engine, err = engine.New(d.Store, ecfg, engineOpts...)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("engine: %w", err)
	}

	var pinger health.Pinger
	if d.DB != nil {
		pinger = d.DB
	}
	d.Health = health.NewChecker(60*time.Second, health.StandardChecks(pinger, home, d.Engine)...)

	d.Server = api.NewServer(d.Engine, d.Health)
	if len(cfg.API.CORSOrigins) > 0 {
		d.Server.SetCORSOrigins(cfg.API.CORSOrigins)
	}
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}
	if cfg.Logging.Level != "quiet" {
		d.Server.SetAccessLog(log.Writer())
	}

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)

	if d.Config.Backup.Enabled && d.Backups != nil {
		if err := d.Backups.Start(d.Config.Backup.Schedule); err != nil {
			return err
		}
		log.Printf("[daemon] backups scheduled %q into %s", d.Config.Backup.Schedule, d.Backups.Dir())
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if d.Backups != nil {
			d.Backups.Stop()
		}
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("HealthQuest serving on http://%s\n", addr)
	if d.DB != nil {
		fmt.Printf("  Data: %s\n", d.DB.Path())
	} else {
		fmt.Println("  Data: in memory (ephemeral)")
	}
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Backups != nil {
		d.Backups.Stop()
	}
	if d.Store != nil {
		_ = d.Store.Close()
	}
	if d.logFile != nil {
		log.SetOutput(os.Stderr)
		_ = d.logFile.Close()
		d.logFile = nil
	}
}

// setupLogging tees the standard logger into logging.file when set.
func (d *Daemon) setupLogging() error {
	if d.Config.Logging.File == "" {
		return nil
	}
	path := d.Config.Logging.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(Home(), path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	d.logFile = f
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

func backupDir(cfg Config) string {
	if cfg.Backup.Dir == "" {
		return filepath.Join(Home(), "backups")
	}
	if filepath.IsAbs(cfg.Backup.Dir) {
		return cfg.Backup.Dir
	}
	return filepath.Join(Home(), cfg.Backup.Dir)
}
