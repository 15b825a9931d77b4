package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthquest/healthquest/internal/app/quest"
	"github.com/healthquest/healthquest/internal/app/reward"
	"github.com/healthquest/healthquest/internal/domain"
	"github.com/healthquest/healthquest/internal/infra/memstore"
	"github.com/healthquest/healthquest/internal/infra/sqlite"
)

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var start = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) Config {
	t.Helper()
	catalog, err := reward.NewCatalog([]domain.Reward{
		{Cost: 3, Description: "Sticker"},
		{Cost: 10, Description: "Extra screen time"},
		{Cost: 50, Description: "Trip to the zoo"},
	})
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Location = time.UTC
	cfg.Rewards = catalog
	cfg.Tips = []string{"Drink water", "Eat greens", "Sleep early"}
	return cfg
}

func newEngine(t *testing.T, store domain.Store) (*Engine, *clock) {
	t.Helper()
	c := &clock{now: start}
	e, err := New(store, testConfig(t), WithClock(c.Now))
	require.NoError(t, err)
	return e, c
}

func setup(t *testing.T, e *Engine) {
	t.Helper()
	_, err := e.SaveInitialProfile(context.Background(), ProfileInput{
		Name: "Leo", Gender: "boy", Birthdate: "2016-05-01",
		Height: 150, InitialWeight: 50, TargetWeight: 45,
	})
	require.NoError(t, err)
}

func TestEndToEnd_CompleteDay(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, memstore.New())
	setup(t, e)

	_, err := e.SaveDiet(ctx, []string{"fruit", "veg"})
	require.NoError(t, err)
	_, err = e.SaveExercise(ctx, []string{"run"})
	require.NoError(t, err)

	res, err := e.CompleteDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
	assert.Equal(t, 1, res.Streak)
	assert.True(t, res.Day.Completed)
	require.Len(t, res.Awards, 2)
	assert.Equal(t, domain.EntryDiet, res.Awards[0].Kind)
	assert.Equal(t, int64(2), res.Awards[0].Delta)
	assert.Equal(t, domain.EntryExercise, res.Awards[1].Kind)
	assert.Equal(t, int64(2), res.Awards[1].Delta)

	_, err = e.CompleteDay(ctx)
	require.ErrorIs(t, err, domain.ErrState)

	data, err := e.AppData(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), data.Views.Points)
}

func TestCompleteDay_RequiresActivity(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, memstore.New())

	_, err := e.CompleteDay(ctx)
	require.ErrorIs(t, err, domain.ErrValidation)

	days, err := e.DayHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, days, "a rejected completion must not create a log")
}

func TestCompleteDay_EmptyAllowedWhenConfigured(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.RequireActivity = false
	e, err := New(memstore.New(), cfg, WithClock(func() time.Time { return start }))
	require.NoError(t, err)

	res, err := e.CompleteDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Total)
	assert.Empty(t, res.Awards)
	assert.Equal(t, 1, res.Streak)
}

func TestStreakBonus_OnlyOnSeventhDay(t *testing.T) {
	ctx := context.Background()
	e, c := newEngine(t, memstore.New())

	for day := 1; day <= 8; day++ {
		_, err := e.SaveDiet(ctx, []string{"fruit"})
		require.NoError(t, err)
		res, err := e.CompleteDay(ctx)
		require.NoError(t, err)
		assert.Equal(t, day, res.Streak)

		var bonuses int
		for _, a := range res.Awards {
			if a.Kind == domain.EntryStreakBonus {
				bonuses++
				assert.Equal(t, int64(10), a.Delta)
			}
		}
		if day == 7 {
			assert.Equal(t, 1, bonuses, "day 7 pays the bonus")
		} else {
			assert.Zero(t, bonuses, "day %d pays no bonus", day)
		}
		c.Advance(24 * time.Hour)
	}

	total, err := e.PointsHistory(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(8+10), total[0].Balance)
}

func TestStreak_GapResets(t *testing.T) {
	ctx := context.Background()
	e, c := newEngine(t, memstore.New())

	for i := 0; i < 3; i++ {
		_, _ = e.SaveExercise(ctx, []string{"swim"})
		_, err := e.CompleteDay(ctx)
		require.NoError(t, err)
		c.Advance(24 * time.Hour)
	}
	c.Advance(24 * time.Hour) // skip a day
	_, _ = e.SaveExercise(ctx, []string{"swim"})
	res, err := e.CompleteDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)

	data, err := e.AppData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, data.Views.Streak.Current)
	assert.Equal(t, 3, data.Views.Streak.Longest)
}

func TestSaveDiet_AfterCompletion(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, memstore.New())
	_, _ = e.SaveDiet(ctx, []string{"fruit"})
	_, err := e.CompleteDay(ctx)
	require.NoError(t, err)

	_, err = e.SaveDiet(ctx, []string{"veg"})
	require.ErrorIs(t, err, domain.ErrState)
}

func TestRedeemReward(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, memstore.New())
	_, _ = e.SaveDiet(ctx, []string{"fruit", "veg"})
	_, _ = e.SaveExercise(ctx, []string{"run", "swim"})
	_, err := e.CompleteDay(ctx)
	require.NoError(t, err) // 2 + 4 = 6 points

	_, err = e.RedeemReward(ctx, 10)
	require.ErrorIs(t, err, domain.ErrInsufficientPoints)

	_, err = e.RedeemReward(ctx, 7)
	require.ErrorIs(t, err, domain.ErrNotFound)

	res, err := e.RedeemReward(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, "Sticker", res.Reward.Description)
	assert.Equal(t, domain.EntryRedemption, res.Entry.Kind)

	views, err := e.Rewards(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.True(t, views[0].Affordable)
	assert.False(t, views[1].Affordable)
}

func TestRedeemReward_ConcurrentNeverOverspends(t *testing.T) {
	ctx := context.Background()
	e, c := newEngine(t, memstore.New())
	// Earn 4 points per day for 3 days: 12 points.
	for i := 0; i < 3; i++ {
		_, _ = e.SaveDiet(ctx, []string{"a", "b", "c", "d"})
		_, err := e.CompleteDay(ctx)
		require.NoError(t, err)
		c.Advance(24 * time.Hour)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.RedeemReward(ctx, 3); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, succeeded)
	hist, err := e.PointsHistory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), hist[0].Balance)
}

func TestDynamicTask_Lifecycle(t *testing.T) {
	ctx := context.Background()
	e, c := newEngine(t, memstore.New())
	now := c.Now()

	task, err := e.CreateDynamicTask(ctx, quest.TaskInput{
		Title: "Walk the dog", PointsReward: 15,
		Start: now.Add(time.Hour), End: now.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	active, err := e.ListActiveDynamicTasks(ctx, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = e.CompleteDynamicTask(ctx, task.ID)
	require.ErrorIs(t, err, domain.ErrState, "upcoming task")

	c.Set(task.Start.Add(30 * time.Minute))
	active, err = e.ListActiveDynamicTasks(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1800), active[0].TimeRemainingSeconds)

	res, err := e.CompleteDynamicTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.Total)
	assert.True(t, res.Task.Completed)

	all, err := e.ListAllDynamicTasks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.TaskCompleted, all[0].Status)
}

func TestDynamicTask_ExpiredAndDeleted(t *testing.T) {
	ctx := context.Background()
	e, c := newEngine(t, memstore.New())
	now := c.Now()

	task, err := e.CreateDynamicTask(ctx, quest.TaskInput{
		Title: "Homework", PointsReward: 5, Start: now, End: now.Add(time.Hour),
	})
	require.NoError(t, err)

	c.Set(task.End.Add(time.Minute))
	_, err = e.CompleteDynamicTask(ctx, task.ID)
	require.ErrorIs(t, err, domain.ErrState)

	_, err = e.DeleteDynamicTask(ctx, task.ID)
	require.NoError(t, err)
	_, err = e.DeleteDynamicTask(ctx, task.ID)
	require.NoError(t, err, "delete is idempotent")

	_, err = e.CompleteDynamicTask(ctx, task.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	all, err := e.ListAllDynamicTasks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Deleted)
	assert.Equal(t, domain.TaskExpired, all[0].Status)

	_, err = e.CreateDynamicTask(ctx, quest.TaskInput{Title: "bad", PointsReward: 5, Start: now, End: now})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSaveInitialProfile(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, memstore.New())

	bad := []ProfileInput{
		{Name: "", Gender: "boy", Birthdate: "2016-05-01", Height: 150, InitialWeight: 50, TargetWeight: 45},
		{Name: "Leo", Gender: "dragon", Birthdate: "2016-05-01", Height: 150, InitialWeight: 50, TargetWeight: 45},
		{Name: "Leo", Gender: "boy", Birthdate: "05/01/2016", Height: 150, InitialWeight: 50, TargetWeight: 45},
		{Name: "Leo", Gender: "boy", Birthdate: "2030-01-01", Height: 150, InitialWeight: 50, TargetWeight: 45},
		{Name: "Leo", Gender: "boy", Birthdate: "2016-05-01", Height: 0, InitialWeight: 50, TargetWeight: 45},
		{Name: "Leo", Gender: "boy", Birthdate: "2016-05-01", Height: 150, InitialWeight: -1, TargetWeight: 45},
	}
	for _, in := range bad {
		_, err := e.SaveInitialProfile(ctx, in)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %+v", in)
	}

	setup(t, e)
	_, err := e.SaveInitialProfile(ctx, ProfileInput{
		Name: "Again", Gender: "girls", Birthdate: "2016-05-01", Height: 140, InitialWeight: 40, TargetWeight: 38,
	})
	require.ErrorIs(t, err, domain.ErrState)

	data, err := e.AppData(ctx)
	require.NoError(t, err)
	require.NotNil(t, data.Profile)
	assert.Equal(t, "Leo", data.Profile.Name)
	require.NotNil(t, data.Views.CurrentWeight)
	assert.Equal(t, 22.2, data.Views.CurrentWeight.BMI)
	assert.Equal(t, "normal", data.Views.CurrentWeight.BMIStatus)
}

func TestSaveHeightAndWeight(t *testing.T) {
	ctx := context.Background()
	e, c := newEngine(t, memstore.New())

	_, err := e.SaveHeightAndWeight(ctx, 170, 65)
	require.ErrorIs(t, err, domain.ErrState, "no profile yet")

	setup(t, e)
	_, err = e.SaveHeightAndWeight(ctx, 0, 65)
	require.ErrorIs(t, err, domain.ErrValidation)

	w, err := e.SaveHeightAndWeight(ctx, 170, 65)
	require.NoError(t, err)
	assert.Equal(t, 22.5, w.BMI)
	assert.Equal(t, "normal", w.BMIStatus)

	c.Advance(24 * time.Hour)
	w, err = e.SaveHeightAndWeight(ctx, 160, 75)
	require.NoError(t, err)
	assert.Equal(t, 29.3, w.BMI)
	assert.Equal(t, "obese", w.BMIStatus)

	data, err := e.AppData(ctx)
	require.NoError(t, err)
	require.Len(t, data.Views.WeightHistory, 2, "same-day update replaces the setup entry")
	assert.Equal(t, 160.0, data.Profile.Height)
	assert.Equal(t, domain.Date("2026-03-02"), data.Views.CurrentWeight.Date)
}

func TestCalendarAndHistory(t *testing.T) {
	ctx := context.Background()
	e, c := newEngine(t, memstore.New())
	c.Set(time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC))

	for i := 0; i < 4; i++ {
		_, _ = e.SaveDiet(ctx, []string{"fruit"})
		if i%2 == 0 {
			_, err := e.CompleteDay(ctx)
			require.NoError(t, err)
		}
		c.Advance(24 * time.Hour)
	}

	all, err := e.CalendarData(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].Completed)
	assert.False(t, all[1].Completed)

	march, err := e.CalendarData(ctx, "2026-03")
	require.NoError(t, err)
	require.Len(t, march, 2)
	assert.Equal(t, domain.Date("2026-03-01"), march[0].Date)

	_, err = e.CalendarData(ctx, "2026-13")
	require.ErrorIs(t, err, domain.ErrValidation)

	history, err := e.DayHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.Date("2026-03-02"), history[0].Date)

	entries, err := e.PointsOn(ctx, "2026-02-27")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Delta)
}

func TestAppData_TipChangesDaily(t *testing.T) {
	ctx := context.Background()
	e, c := newEngine(t, memstore.New())

	first, err := e.AppData(ctx)
	require.NoError(t, err)
	again, err := e.AppData(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Views.Tip, again.Views.Tip)

	c.Advance(24 * time.Hour)
	next, err := e.AppData(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Views.Tip, next.Views.Tip)
	assert.Nil(t, first.Profile)
	assert.Len(t, first.Config.Rewards, 3)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DietItemPoints = -1
	_, err := New(memstore.New(), cfg)
	assert.Error(t, err)
}

func TestEngine_SQLiteDurable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := sqlite.Open(dir)
	require.NoError(t, err)
	e, c := newEngine(t, db)
	setup(t, e)
	_, err = e.SaveDiet(ctx, []string{"fruit", "veg"})
	require.NoError(t, err)
	_, err = e.SaveExercise(ctx, []string{"run"})
	require.NoError(t, err)
	_, err = e.CompleteDay(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = sqlite.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	e2, err := New(db, testConfig(t), WithClock(c.Now))
	require.NoError(t, err)

	data, err := e2.AppData(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), data.Views.Points)
	assert.True(t, data.Views.TodayLog.Completed)
	assert.Equal(t, []string{"fruit", "veg"}, data.Views.TodayLog.Diet)

	_, err = e2.CompleteDay(ctx)
	require.ErrorIs(t, err, domain.ErrState)
}

func TestDynamicTask_SubSecondWindowOnBothStores(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stores := map[string]domain.Store{"memstore": memstore.New(), "sqlite": db}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e, c := newEngine(t, store)
			now := c.Now()

			task, err := e.CreateDynamicTask(ctx, quest.TaskInput{
				Title:        "Blink",
				PointsReward: 2,
				Start:        now,
				End:          now.Add(500 * time.Millisecond),
			})
			require.NoError(t, err)

			c.Advance(500 * time.Millisecond)
			active, err := e.ListActiveDynamicTasks(ctx, time.Time{})
			require.NoError(t, err)
			require.Len(t, active, 1, "task must stay active through its end instant")

			res, err := e.CompleteDynamicTask(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), res.Total)
		})
	}
}
