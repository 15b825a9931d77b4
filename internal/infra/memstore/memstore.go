// Package memstore is an in-memory domain.Store.
// State is kept as append-only arenas plus key→index maps. Update runs fn
// against a copy and swaps it in only on success, so a failed operation
// leaves the store exactly as it was.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/healthquest/healthquest/internal/domain"
)

// Store is safe for concurrent use; writers are serialized.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// View runs fn against the current state. Writes made inside fn are discarded.
func (s *Store) View(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(snapshot)
}

// Update runs fn against a copy and commits it if fn returns nil.
func (s *Store) Update(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

type state struct {
	profile *domain.Profile
	weights []domain.WeightEntry

	days     []domain.DailyLog
	dayIndex map[domain.Date]int

	ledger      []domain.LedgerEntry
	nextEntryID int64

	tasks      []domain.DynamicTask
	taskIndex  map[int64]int
	nextTaskID int64
}

func newState() *state {
	return &state{
		dayIndex:    make(map[domain.Date]int),
		taskIndex:   make(map[int64]int),
		nextEntryID: 1,
		nextTaskID:  1,
	}
}

func (s *state) clone() *state {
	c := &state{
		weights:     slices.Clone(s.weights),
		days:        make([]domain.DailyLog, len(s.days)),
		dayIndex:    make(map[domain.Date]int, len(s.dayIndex)),
		ledger:      slices.Clone(s.ledger),
		nextEntryID: s.nextEntryID,
		tasks:       slices.Clone(s.tasks),
		taskIndex:   make(map[int64]int, len(s.taskIndex)),
		nextTaskID:  s.nextTaskID,
	}
	if s.profile != nil {
		p := *s.profile
		c.profile = &p
	}
	for i, d := range s.days {
		c.days[i] = copyLog(d)
	}
	for k, v := range s.dayIndex {
		c.dayIndex[k] = v
	}
	for k, v := range s.taskIndex {
		c.taskIndex[k] = v
	}
	return c
}

func copyLog(l domain.DailyLog) domain.DailyLog {
	l.Diet = slices.Clone(l.Diet)
	l.Exercise = slices.Clone(l.Exercise)
	return l
}

// ─── Profile ────────────────────────────────────────────────────────────────

func (s *state) Profile() (*domain.Profile, error) {
	if s.profile == nil {
		return nil, nil
	}
	p := *s.profile
	return &p, nil
}

func (s *state) InsertProfile(p domain.Profile) error {
	if s.profile != nil {
		return domain.Errorf(domain.ErrState, "profile already exists")
	}
	s.profile = &p
	return nil
}

func (s *state) UpdateProfileHeight(height float64) error {
	if s.profile == nil {
		return domain.Errorf(domain.ErrNotFound, "profile not found")
	}
	s.profile.Height = height
	return nil
}

func (s *state) PutWeight(e domain.WeightEntry) error {
	for i := range s.weights {
		if s.weights[i].Date == e.Date {
			s.weights[i] = e
			return nil
		}
	}
	s.weights = append(s.weights, e)
	sort.SliceStable(s.weights, func(i, j int) bool { return s.weights[i].Date < s.weights[j].Date })
	return nil
}

func (s *state) WeightHistory() ([]domain.WeightEntry, error) {
	return slices.Clone(s.weights), nil
}

// ─── Daily Logs ─────────────────────────────────────────────────────────────

func (s *state) DailyLog(date domain.Date) (*domain.DailyLog, error) {
	i, ok := s.dayIndex[date]
	if !ok {
		return nil, nil
	}
	l := copyLog(s.days[i])
	return &l, nil
}

func (s *state) ensureDay(date domain.Date) int {
	if i, ok := s.dayIndex[date]; ok {
		return i
	}
	s.days = append(s.days, domain.DailyLog{Date: date})
	i := len(s.days) - 1
	s.dayIndex[date] = i
	return i
}

func (s *state) AddDailyItems(date domain.Date, kind domain.ItemKind, items []string) error {
	i := s.ensureDay(date)
	log := &s.days[i]
	set := &log.Diet
	if kind == domain.ItemExercise {
		set = &log.Exercise
	}
	for _, item := range items {
		if !slices.Contains(*set, item) {
			*set = append(*set, item)
		}
	}
	slices.Sort(*set)
	return nil
}

func (s *state) MarkDailyCompleted(date domain.Date, at time.Time) error {
	i := s.ensureDay(date)
	if !s.days[i].Completed {
		s.days[i].Completed = true
		s.days[i].CompletedAt = at
	}
	return nil
}

func (s *state) DailyLogs() ([]domain.DailyLog, error) {
	out := make([]domain.DailyLog, len(s.days))
	for i, d := range s.days {
		out[i] = copyLog(d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

func (s *state) AppendLedger(e domain.LedgerEntry) (domain.LedgerEntry, error) {
	e.ID = s.nextEntryID
	s.nextEntryID++
	s.ledger = append(s.ledger, e)
	return e, nil
}

func (s *state) LastLedgerEntry() (*domain.LedgerEntry, error) {
	if len(s.ledger) == 0 {
		return nil, nil
	}
	e := s.ledger[len(s.ledger)-1]
	return &e, nil
}

func (s *state) LedgerRange(from, to time.Time) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, e := range s.ledger {
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *state) RecentLedger(limit int) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for i := len(s.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.ledger[i])
	}
	return out, nil
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func (s *state) InsertTask(t domain.DynamicTask) (domain.DynamicTask, error) {
	t.ID = s.nextTaskID
	s.nextTaskID++
	s.tasks = append(s.tasks, t)
	s.taskIndex[t.ID] = len(s.tasks) - 1
	return t, nil
}

func (s *state) Task(id int64) (*domain.DynamicTask, error) {
	i, ok := s.taskIndex[id]
	if !ok {
		return nil, nil
	}
	t := s.tasks[i]
	return &t, nil
}

func (s *state) UpdateTask(t domain.DynamicTask) error {
	i, ok := s.taskIndex[t.ID]
	if !ok {
		return domain.Errorf(domain.ErrNotFound, "task %d not found", t.ID)
	}
	s.tasks[i] = t
	return nil
}

func (s *state) Tasks() ([]domain.DynamicTask, error) {
	return slices.Clone(s.tasks), nil
}
