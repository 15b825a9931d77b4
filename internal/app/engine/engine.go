// Package engine is the HealthQuest rules facade. Every operation runs under
// one mutex and inside one store transaction, so a read-modify-write on the
// persisted record is serialized and either fully applies or leaves the
// store untouched.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/healthquest/healthquest/internal/app/bmi"
	"github.com/healthquest/healthquest/internal/app/daily"
	"github.com/healthquest/healthquest/internal/app/reward"
	"github.com/healthquest/healthquest/internal/app/streak"
	"github.com/healthquest/healthquest/internal/domain"
	"github.com/healthquest/healthquest/internal/infra/metrics"
)

// Config holds the rules the engine applies.
type Config struct {
	// Location decides which calendar date "today" is.
	Location *time.Location

	DietItemPoints     int64
	ExerciseItemPoints int64
	// RequireActivity refuses to complete a day with nothing logged.
	RequireActivity bool
	StreakBonuses   []streak.Bonus

	Classifier bmi.Classifier
	Rewards    *reward.Catalog
	Items      daily.Options
	Tips       []string

	// Debug logs every operation.
	Debug bool
}

// DefaultConfig returns the stock scoring rules with an empty catalog.
func DefaultConfig() Config {
	return Config{
		Location:           time.Local,
		DietItemPoints:     1,
		ExerciseItemPoints: 2,
		RequireActivity:    true,
		StreakBonuses:      streak.DefaultBonuses(),
		Classifier:         bmi.FixedClassifier{Bands: bmi.DefaultBands()},
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

// Engine is the facade the shells call.
type Engine struct {
	mu    sync.Mutex
	store domain.Store
	cfg   Config
	clock func() time.Time
}

// New validates cfg and returns an engine over store.
func New(store domain.Store, cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.DietItemPoints < 0 || cfg.ExerciseItemPoints < 0 {
		return nil, fmt.Errorf("item points must not be negative")
	}
	if err := streak.ValidateBonuses(cfg.StreakBonuses); err != nil {
		return nil, err
	}
	if cfg.Classifier == nil {
		cfg.Classifier = bmi.FixedClassifier{Bands: bmi.DefaultBands()}
	}
	if cfg.Rewards == nil {
		empty, _ := reward.NewCatalog(nil)
		cfg.Rewards = empty
	}

	e := &Engine{store: store, cfg: cfg, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the rules in effect.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) now() time.Time {
	return e.clock().In(e.cfg.Location)
}

// Today is the current calendar date in the engine's location.
func (e *Engine) Today() domain.Date {
	return domain.DateOf(e.now())
}

// update runs fn as one serialized, atomic write.
func (e *Engine) update(ctx context.Context, op string, fn func(tx domain.Tx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()
	err := e.store.Update(ctx, fn)
	e.observe(op, start, err)
	return err
}

// view runs fn as one serialized read.
func (e *Engine) view(ctx context.Context, op string, fn func(tx domain.Tx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()
	err := e.store.View(ctx, fn)
	e.observe(op, start, err)
	return err
}

func (e *Engine) observe(op string, start time.Time, err error) {
	metrics.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil {
		if e.cfg.Debug {
			log.Printf("[engine] %s ok (%s)", op, time.Since(start))
		}
		return
	}
	kind := domain.KindOf(err)
	metrics.OperationErrors.WithLabelValues(op, kind).Inc()
	if kind == domain.KindInternal || e.cfg.Debug {
		log.Printf("[engine] %s failed: %v", op, err)
	}
}
