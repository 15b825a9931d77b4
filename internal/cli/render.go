package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/healthquest/healthquest/internal/app/engine"
	"github.com/healthquest/healthquest/internal/domain"
	"github.com/healthquest/healthquest/internal/infra/backup"
)

// ─── Text Rendering ─────────────────────────────────────────────────────────
// Shared by the one-shot commands and the interactive shell.

func renderStatus(w io.Writer, app engine.AppData) {
	if app.Profile == nil {
		fmt.Fprintln(w, "No profile yet. Run 'healthquest setup' to get started.")
	} else {
		fmt.Fprintf(w, "Hi %s! Today is %s.\n", app.Profile.Name, app.Views.Today)
	}
	if cw := app.Views.CurrentWeight; cw != nil {
		fmt.Fprintf(w, "Weight:   %.1f kg  Height: %.1f cm  BMI: %.1f (%s)\n", cw.Weight, cw.Height, cw.BMI, cw.BMIStatus)
		if app.Profile != nil {
			fmt.Fprintf(w, "Target:   %.1f kg\n", app.Profile.TargetWeight)
		}
	}
	fmt.Fprintf(w, "Points:   %s\n", humanize.Comma(app.Views.Points))
	fmt.Fprintf(w, "Streak:   %d day(s), best %d\n", app.Views.Streak.Current, app.Views.Streak.Longest)

	log := app.Views.TodayLog
	state := "open"
	if log.Completed {
		state = "completed"
	}
	fmt.Fprintf(w, "Today:    %s\n", state)
	fmt.Fprintf(w, "  Diet:     %s\n", listOrDash(log.Diet))
	fmt.Fprintf(w, "  Exercise: %s\n", listOrDash(log.Exercise))

	if n := len(app.Views.ActiveTasks); n > 0 {
		fmt.Fprintf(w, "Tasks:    %d active (see 'healthquest task ls')\n", n)
	}
	if app.Views.Tip != "" {
		fmt.Fprintf(w, "Tip:      %s\n", app.Views.Tip)
	}
}

func renderItems(w io.Writer, label string, items []string) {
	fmt.Fprintf(w, "%s today: %s\n", label, listOrDash(items))
}

func renderDayResult(w io.Writer, res engine.DayResult) {
	fmt.Fprintln(w, res.Message)
	for _, a := range res.Awards {
		fmt.Fprintf(w, "  %+d  %s\n", a.Delta, a.Description)
	}
	fmt.Fprintf(w, "Total: %s points\n", humanize.Comma(res.Total))
}

func renderRedemption(w io.Writer, r engine.Redemption) {
	fmt.Fprintln(w, r.Message)
	fmt.Fprintf(w, "Spent %d, %s points left.\n", r.Reward.Cost, humanize.Comma(r.Total))
}

func renderRewards(w io.Writer, rewards []domain.RewardView) error {
	if len(rewards) == 0 {
		fmt.Fprintln(w, "No rewards configured. Add [[rewards]] to config.toml.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COST\tREWARD\tAFFORDABLE")
	for _, r := range rewards {
		ok := "no"
		if r.Affordable {
			ok = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Cost, r.Description, ok)
	}
	return tw.Flush()
}

func renderLedger(w io.Writer, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No points yet.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tDELTA\tBALANCE\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%+d\t%d\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04"), e.Kind, e.Delta, e.Balance, e.Description)
	}
	return tw.Flush()
}

func renderTasks(w io.Writer, tasks []domain.TaskView, now time.Time) error {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPOINTS\tSTATUS\tWINDOW")
	for _, t := range tasks {
		window := t.Start.Format("01-02 15:04") + " → " + t.End.Format("01-02 15:04")
		if t.Status == domain.TaskActive {
			window = humanize.RelTime(now, t.End, "left", "overdue")
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", t.ID, t.Title, t.PointsReward, t.Status, window)
	}
	return tw.Flush()
}

func renderTaskResult(w io.Writer, res engine.TaskResult) {
	fmt.Fprintf(w, "Task %q done! %+d points, %s total.\n",
		res.Task.Title, res.Entry.Delta, humanize.Comma(res.Total))
}

func renderCalendar(w io.Writer, days []engine.CalendarDay) error {
	if len(days) == 0 {
		fmt.Fprintln(w, "No days logged.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDONE\tDIET\tEXERCISE")
	for _, d := range days {
		done := "-"
		if d.Completed {
			done = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", d.Date, done, d.DietItems, d.ExerciseItems)
	}
	return tw.Flush()
}

func renderHistory(w io.Writer, logs []domain.DailyLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No days logged.")
		return
	}
	for _, l := range logs {
		mark := " "
		if l.Completed {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s\n", mark, l.Date)
		fmt.Fprintf(w, "    Diet:     %s\n", listOrDash(l.Diet))
		fmt.Fprintf(w, "    Exercise: %s\n", listOrDash(l.Exercise))
	}
}

func renderBackups(w io.Writer, list []backup.Info) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No backups.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tCREATED")
	for _, b := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Name, humanize.Bytes(uint64(b.Size)), humanize.Time(b.Created))
	}
	return tw.Flush()
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
