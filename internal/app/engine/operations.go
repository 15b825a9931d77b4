package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/healthquest/healthquest/internal/app/bmi"
	"github.com/healthquest/healthquest/internal/app/daily"
	"github.com/healthquest/healthquest/internal/app/points"
	"github.com/healthquest/healthquest/internal/app/quest"
	"github.com/healthquest/healthquest/internal/app/streak"
	"github.com/healthquest/healthquest/internal/domain"
	"github.com/healthquest/healthquest/internal/infra/metrics"
)

// ─── Profile & Body Metrics ─────────────────────────────────────────────────

// ProfileInput is the setup form.
type ProfileInput struct {
	Name          string  `json:"name"`
	Gender        string  `json:"gender"`
	Birthdate     string  `json:"birthdate"`
	Height        float64 `json:"height"`
	InitialWeight float64 `json:"initial_weight"`
	TargetWeight  float64 `json:"target_weight"`
}

// SaveInitialProfile creates the profile and the first weight entry.
func (e *Engine) SaveInitialProfile(ctx context.Context, in ProfileInput) (domain.Profile, error) {
	now := e.now()
	today := domain.DateOf(now)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Profile{}, domain.Errorf(domain.ErrValidation, "name is required")
	}
	gender, ok := domain.ParseGender(strings.ToLower(strings.TrimSpace(in.Gender)))
	if !ok {
		return domain.Profile{}, domain.Errorf(domain.ErrValidation, "gender must be boy or girl, got %q", in.Gender)
	}
	birth, err := domain.ParseDate(in.Birthdate)
	if err != nil {
		return domain.Profile{}, err
	}
	if birth > today {
		return domain.Profile{}, domain.Errorf(domain.ErrValidation, "birthdate %s is in the future", birth)
	}
	if err := positive("height", in.Height); err != nil {
		return domain.Profile{}, err
	}
	if err := positive("initial weight", in.InitialWeight); err != nil {
		return domain.Profile{}, err
	}
	if err := positive("target weight", in.TargetWeight); err != nil {
		return domain.Profile{}, err
	}

	p := domain.Profile{
		Name:          name,
		Gender:        gender,
		Birthdate:     birth,
		Height:        in.Height,
		InitialWeight: in.InitialWeight,
		TargetWeight:  in.TargetWeight,
		CreatedAt:     now,
	}
	err = e.update(ctx, "save_profile", func(tx domain.Tx) error {
		existing, err := tx.Profile()
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if existing != nil {
			return domain.Errorf(domain.ErrState, "profile already exists")
		}
		if err := tx.InsertProfile(p); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return tx.PutWeight(domain.WeightEntry{Date: today, Weight: in.InitialWeight, Height: in.Height})
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// SaveHeightAndWeight records today's measurement. A second update on the
// same date replaces the first.
func (e *Engine) SaveHeightAndWeight(ctx context.Context, height, weight float64) (domain.WeightEntry, error) {
	if err := positive("height", height); err != nil {
		return domain.WeightEntry{}, err
	}
	if err := positive("weight", weight); err != nil {
		return domain.WeightEntry{}, err
	}
	today := e.Today()

	var entry domain.WeightEntry
	err := e.update(ctx, "save_health", func(tx domain.Tx) error {
		p, err := tx.Profile()
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if p == nil {
			return domain.Errorf(domain.ErrState, "create a profile first")
		}
		history, err := tx.WeightHistory()
		if err != nil {
			return fmt.Errorf("load weight history: %w", err)
		}
		if n := len(history); n > 0 && history[n-1].Date > today {
			return domain.Errorf(domain.ErrValidation, "latest weight entry %s is after today %s", history[n-1].Date, today)
		}

		entry = domain.WeightEntry{Date: today, Weight: weight, Height: height}
		if err := tx.PutWeight(entry); err != nil {
			return err
		}
		if err := tx.UpdateProfileHeight(height); err != nil {
			return fmt.Errorf("update height: %w", err)
		}
		entry = e.withBMI(p, entry)
		return nil
	})
	if err != nil {
		return domain.WeightEntry{}, err
	}
	return entry, nil
}

func (e *Engine) withBMI(p *domain.Profile, w domain.WeightEntry) domain.WeightEntry {
	s := bmi.Subject{HeightCm: w.Height, WeightKg: w.Weight, MeasuredOn: w.Date}
	if p != nil {
		s.Gender = p.Gender
		s.Birthdate = p.Birthdate
	}
	r := e.cfg.Classifier.Classify(s)
	w.BMI = r.BMI
	w.BMIStatus = r.Status
	return w
}

func positive(field string, v float64) error {
	if v <= 0 {
		return domain.Errorf(domain.ErrValidation, "%s must be a positive number", field)
	}
	return nil
}

// ─── Daily Logging ──────────────────────────────────────────────────────────

// SaveDiet merges items into today's diet set.
func (e *Engine) SaveDiet(ctx context.Context, items []string) ([]string, error) {
	return e.saveItems(ctx, "save_diet", domain.ItemDiet, items)
}

// SaveExercise merges items into today's exercise set.
func (e *Engine) SaveExercise(ctx context.Context, items []string) ([]string, error) {
	return e.saveItems(ctx, "save_exercise", domain.ItemExercise, items)
}

func (e *Engine) saveItems(ctx context.Context, op string, kind domain.ItemKind, items []string) ([]string, error) {
	today := e.Today()
	var out []string
	err := e.update(ctx, op, func(tx domain.Tx) error {
		days := daily.New(tx, e.cfg.Items)
		var err error
		if kind == domain.ItemExercise {
			out, err = days.RecordExercise(today, items)
		} else {
			out, err = days.RecordDiet(today, items)
		}
		return err
	})
	return out, err
}

// DayResult is what completing a day produced.
type DayResult struct {
	Total   int64                `json:"total"`
	Streak  int                  `json:"streak"`
	Day     domain.DailyLog      `json:"day"`
	Awards  []domain.LedgerEntry `json:"awards"`
	Earned  int64                `json:"earned"`
	Message string               `json:"message"`
}

// CompleteDay scores today's log, marks it complete, and pays any streak
// bonus the day reaches. Completing the same day twice is a state error.
func (e *Engine) CompleteDay(ctx context.Context) (DayResult, error) {
	now := e.now()
	today := domain.DateOf(now)

	var res DayResult
	err := e.update(ctx, "complete_day", func(tx domain.Tx) error {
		days := daily.New(tx, e.cfg.Items)
		day, err := days.Get(today)
		if err != nil {
			return err
		}
		if day.Completed {
			return domain.Errorf(domain.ErrState, "%s is already completed", today)
		}
		if e.cfg.RequireActivity && len(day.Diet) == 0 && len(day.Exercise) == 0 {
			return domain.Errorf(domain.ErrValidation, "log diet or exercise before completing the day")
		}

		if _, err := days.MarkCompleted(today, now); err != nil {
			return err
		}
		n, err := streak.NewTracker(tx).EndingAt(today)
		if err != nil {
			return err
		}

		ledger := points.New(tx)
		award := func(kind domain.EntryKind, pts int64, desc string) error {
			if pts <= 0 {
				return nil
			}
			entry, err := ledger.Append(kind, pts, desc, now)
			if err != nil {
				return err
			}
			res.Awards = append(res.Awards, entry)
			res.Earned += pts
			return nil
		}
		if err := award(domain.EntryDiet, int64(len(day.Diet))*e.cfg.DietItemPoints,
			fmt.Sprintf("Diet: %d item(s) on %s", len(day.Diet), today)); err != nil {
			return err
		}
		if err := award(domain.EntryExercise, int64(len(day.Exercise))*e.cfg.ExerciseItemPoints,
			fmt.Sprintf("Exercise: %d item(s) on %s", len(day.Exercise), today)); err != nil {
			return err
		}
		for _, b := range streak.BonusesAt(n, e.cfg.StreakBonuses) {
			if err := award(domain.EntryStreakBonus, b.Points, fmt.Sprintf("%d-day streak bonus", b.Days)); err != nil {
				return err
			}
		}

		if res.Total, err = ledger.CurrentTotal(); err != nil {
			return err
		}
		if res.Day, err = days.Get(today); err != nil {
			return err
		}
		res.Streak = n
		res.Message = completionMessage(res.Earned, n)
		return nil
	})
	if err != nil {
		return DayResult{}, err
	}

	metrics.DaysCompleted.Inc()
	metrics.StreakCurrent.Set(float64(res.Streak))
	metrics.PointsBalance.Set(float64(res.Total))
	for _, a := range res.Awards {
		metrics.PointsAwarded.WithLabelValues(string(a.Kind)).Add(float64(a.Delta))
	}
	return res, nil
}

func completionMessage(earned int64, streakDays int) string {
	msg := fmt.Sprintf("Day complete! You earned %d point(s).", earned)
	if streakDays > 1 {
		msg += fmt.Sprintf(" %d days in a row!", streakDays)
	}
	return msg
}

// ─── Rewards ────────────────────────────────────────────────────────────────

// Redemption is the outcome of spending points on a reward.
type Redemption struct {
	Reward  domain.Reward      `json:"reward"`
	Entry   domain.LedgerEntry `json:"entry"`
	Total   int64              `json:"total"`
	Message string             `json:"message"`
}

// RedeemReward spends cost points on the matching catalog reward.
func (e *Engine) RedeemReward(ctx context.Context, cost int64) (Redemption, error) {
	now := e.now()
	var res Redemption
	err := e.update(ctx, "redeem_reward", func(tx domain.Tx) error {
		r, entry, err := e.cfg.Rewards.Redeem(points.New(tx), cost, now)
		if err != nil {
			return err
		}
		res = Redemption{
			Reward:  r,
			Entry:   entry,
			Total:   entry.Balance,
			Message: fmt.Sprintf("Enjoy your reward: %s!", r.Description),
		}
		return nil
	})
	if err != nil {
		return Redemption{}, err
	}
	metrics.PointsRedeemed.Add(float64(cost))
	metrics.PointsBalance.Set(float64(res.Total))
	return res, nil
}

// Rewards lists the catalog against the current balance.
func (e *Engine) Rewards(ctx context.Context) ([]domain.RewardView, error) {
	var out []domain.RewardView
	err := e.view(ctx, "rewards", func(tx domain.Tx) error {
		total, err := points.New(tx).CurrentTotal()
		if err != nil {
			return err
		}
		out = e.cfg.Rewards.List(total)
		return nil
	})
	return out, err
}

// ─── Dynamic Tasks ──────────────────────────────────────────────────────────

// TaskResult is a completed task and the reward it paid.
type TaskResult struct {
	Task  domain.DynamicTask `json:"task"`
	Entry domain.LedgerEntry `json:"entry"`
	Total int64              `json:"total"`
}

// CreateDynamicTask stores a new time-boxed task.
func (e *Engine) CreateDynamicTask(ctx context.Context, in quest.TaskInput) (domain.DynamicTask, error) {
	now := e.now()
	var t domain.DynamicTask
	err := e.update(ctx, "create_task", func(tx domain.Tx) error {
		var err error
		t, err = quest.NewManager(tx, points.New(tx)).Create(in, now)
		return err
	})
	if err != nil {
		return domain.DynamicTask{}, err
	}
	metrics.TasksCreated.Inc()
	return t, nil
}

// CompleteDynamicTask completes an active task and pays its reward.
func (e *Engine) CompleteDynamicTask(ctx context.Context, id int64) (TaskResult, error) {
	now := e.now()
	var res TaskResult
	err := e.update(ctx, "complete_task", func(tx domain.Tx) error {
		t, entry, err := quest.NewManager(tx, points.New(tx)).Complete(id, now)
		if err != nil {
			return err
		}
		res = TaskResult{Task: t, Entry: entry, Total: entry.Balance}
		return nil
	})
	if err != nil {
		return TaskResult{}, err
	}
	metrics.TasksCompleted.Inc()
	metrics.PointsAwarded.WithLabelValues(string(domain.EntryTaskReward)).Add(float64(res.Entry.Delta))
	metrics.PointsBalance.Set(float64(res.Total))
	return res, nil
}

// DeleteDynamicTask soft-deletes a task.
func (e *Engine) DeleteDynamicTask(ctx context.Context, id int64) (domain.DynamicTask, error) {
	var t domain.DynamicTask
	err := e.update(ctx, "delete_task", func(tx domain.Tx) error {
		var err error
		t, err = quest.NewManager(tx, points.New(tx)).SoftDelete(id)
		return err
	})
	return t, err
}

// ListActiveDynamicTasks lists tasks active at now. A zero now means the
// engine clock.
func (e *Engine) ListActiveDynamicTasks(ctx context.Context, now time.Time) ([]domain.TaskView, error) {
	if now.IsZero() {
		now = e.now()
	}
	var out []domain.TaskView
	err := e.view(ctx, "list_active_tasks", func(tx domain.Tx) error {
		var err error
		out, err = quest.NewManager(tx, points.New(tx)).ListActive(now)
		return err
	})
	return out, err
}

// ListAllDynamicTasks lists every task with its derived status.
func (e *Engine) ListAllDynamicTasks(ctx context.Context) ([]domain.TaskView, error) {
	now := e.now()
	var out []domain.TaskView
	err := e.view(ctx, "list_tasks", func(tx domain.Tx) error {
		var err error
		out, err = quest.NewManager(tx, points.New(tx)).ListAll(now)
		return err
	})
	return out, err
}
