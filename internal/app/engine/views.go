package engine

import (
	"context"
	"regexp"
	"slices"

	"github.com/healthquest/healthquest/internal/app/daily"
	"github.com/healthquest/healthquest/internal/app/points"
	"github.com/healthquest/healthquest/internal/app/quest"
	"github.com/healthquest/healthquest/internal/app/streak"
	"github.com/healthquest/healthquest/internal/domain"
)

// AppData is the bootstrap read for a shell.
type AppData struct {
	Profile *domain.Profile `json:"profile"`
	Views   Views           `json:"views"`
	Config  ConfigView      `json:"config"`
}

// Views are the values derived from the stored record.
type Views struct {
	Today         domain.Date          `json:"today"`
	CurrentWeight *domain.WeightEntry  `json:"current_weight,omitempty"`
	WeightHistory []domain.WeightEntry `json:"weight_history"`
	TodayLog      domain.DailyLog      `json:"today_log"`
	Streak        streak.Summary       `json:"streak"`
	Points        int64                `json:"points"`
	ActiveTasks   []domain.TaskView    `json:"active_tasks"`
	Rewards       []domain.RewardView  `json:"rewards"`
	Tip           string               `json:"tip,omitempty"`
}

// ConfigView is the part of the configuration a shell renders.
type ConfigView struct {
	DietOptions        []string        `json:"diet_options"`
	ExerciseOptions    []string        `json:"exercise_options"`
	Rewards            []domain.Reward `json:"rewards"`
	Tips               []string        `json:"tips"`
	DietItemPoints     int64           `json:"diet_item_points"`
	ExerciseItemPoints int64           `json:"exercise_item_points"`
	StreakBonuses      []streak.Bonus  `json:"streak_bonuses"`
}

// AppData loads the profile, every derived view, and the display config.
func (e *Engine) AppData(ctx context.Context) (AppData, error) {
	now := e.now()
	today := domain.DateOf(now)

	out := AppData{Config: e.configView()}
	out.Views.Today = today
	out.Views.Tip = e.tipFor(today)

	err := e.view(ctx, "app_data", func(tx domain.Tx) error {
		p, err := tx.Profile()
		if err != nil {
			return err
		}
		out.Profile = p

		history, err := tx.WeightHistory()
		if err != nil {
			return err
		}
		out.Views.WeightHistory = make([]domain.WeightEntry, len(history))
		for i, w := range history {
			out.Views.WeightHistory[i] = e.withBMI(p, w)
		}
		if n := len(out.Views.WeightHistory); n > 0 {
			cur := out.Views.WeightHistory[n-1]
			out.Views.CurrentWeight = &cur
		}

		if out.Views.TodayLog, err = daily.New(tx, e.cfg.Items).Get(today); err != nil {
			return err
		}
		if out.Views.Streak, err = streak.NewTracker(tx).At(today); err != nil {
			return err
		}
		if out.Views.Points, err = points.New(tx).CurrentTotal(); err != nil {
			return err
		}
		if out.Views.ActiveTasks, err = quest.NewManager(tx, points.New(tx)).ListActive(now); err != nil {
			return err
		}
		out.Views.Rewards = e.cfg.Rewards.List(out.Views.Points)
		return nil
	})
	if err != nil {
		return AppData{}, err
	}
	return out, nil
}

func (e *Engine) configView() ConfigView {
	return ConfigView{
		DietOptions:        slices.Clone(e.cfg.Items.Diet),
		ExerciseOptions:    slices.Clone(e.cfg.Items.Exercise),
		Rewards:            e.cfg.Rewards.Entries(),
		Tips:               slices.Clone(e.cfg.Tips),
		DietItemPoints:     e.cfg.DietItemPoints,
		ExerciseItemPoints: e.cfg.ExerciseItemPoints,
		StreakBonuses:      slices.Clone(e.cfg.StreakBonuses),
	}
}

// tipFor picks the same tip all day and a different one the next.
func (e *Engine) tipFor(d domain.Date) string {
	if len(e.cfg.Tips) == 0 {
		return ""
	}
	days := d.Start(e.cfg.Location).Unix() / 86400
	if days < 0 {
		days = -days
	}
	return e.cfg.Tips[days%int64(len(e.cfg.Tips))]
}

// ─── History & Calendar ─────────────────────────────────────────────────────

// CalendarDay is one date's completion state.
type CalendarDay struct {
	Date          domain.Date `json:"date"`
	Completed     bool        `json:"completed"`
	DietItems     int         `json:"diet_items"`
	ExerciseItems int         `json:"exercise_items"`
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// CalendarData projects the daily logs to completion flags, oldest first.
// month ("YYYY-MM") narrows it to one month; empty means all.
func (e *Engine) CalendarData(ctx context.Context, month string) ([]CalendarDay, error) {
	if month != "" && !monthPattern.MatchString(month) {
		return nil, domain.Errorf(domain.ErrValidation, "invalid month %q, want YYYY-MM", month)
	}
	out := []CalendarDay{}
	err := e.view(ctx, "calendar", func(tx domain.Tx) error {
		logs, err := daily.New(tx, e.cfg.Items).All()
		if err != nil {
			return err
		}
		for _, l := range logs {
			if month != "" && l.Date.Month() != month {
				continue
			}
			out = append(out, CalendarDay{
				Date:          l.Date,
				Completed:     l.Completed,
				DietItems:     len(l.Diet),
				ExerciseItems: len(l.Exercise),
			})
		}
		return nil
	})
	return out, err
}

// DayHistory returns every daily log, newest first.
func (e *Engine) DayHistory(ctx context.Context) ([]domain.DailyLog, error) {
	var out []domain.DailyLog
	err := e.view(ctx, "day_history", func(tx domain.Tx) error {
		logs, err := daily.New(tx, e.cfg.Items).All()
		if err != nil {
			return err
		}
		slices.Reverse(logs)
		out = logs
		return nil
	})
	return out, err
}

// PointsOn returns the ledger entries dated date, in insertion order.
func (e *Engine) PointsOn(ctx context.Context, date domain.Date) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	err := e.view(ctx, "points_on", func(tx domain.Tx) error {
		var err error
		out, err = points.New(tx).EntriesOn(date, e.cfg.Location)
		return err
	})
	return out, err
}

// PointsHistory returns the latest ledger entries, newest first.
func (e *Engine) PointsHistory(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	err := e.view(ctx, "points_history", func(tx domain.Tx) error {
		var err error
		out, err = points.New(tx).History(limit)
		return err
	})
	return out, err
}

// VerifyLedger replays the points ledger and reports the first entry whose
// recorded balance disagrees with the running sum.
func (e *Engine) VerifyLedger(ctx context.Context) error {
	return e.view(ctx, "verify_ledger", func(tx domain.Tx) error {
		return points.New(tx).Verify()
	})
}
