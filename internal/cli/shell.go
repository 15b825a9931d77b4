package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/healthquest/healthquest/internal/daemon"
)

func init() {
	rootCmd.AddCommand(shellCmd)
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session over the same data",
	Long: `Open an interactive prompt. With --ephemeral the session keeps
everything in memory, which is handy for trying the rules out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		shell := ishell.New()
		shell.SetPrompt("healthquest> ")
		for _, c := range shellCommands(d, os.Stdout) {
			shell.AddCmd(c)
		}

		shell.Println()
		figure.NewFigure("HealthQuest", "", true).Print()
		shell.Println("Type 'help' to see a list of commands.")
		shell.Run()
		return nil
	},
}

// shellCommands maps each engine operation to a REPL command writing to out.
func shellCommands(d *daemon.Daemon, out io.Writer) []*ishell.Cmd {
	ctx := context.Background()
	fail := func(err error) { fmt.Fprintln(out, "Error:", err) }

	return []*ishell.Cmd{
		{
			Name: "status",
			Help: "show profile, points, streak and today's log",
			Func: func(c *ishell.Context) {
				app, err := d.Engine.AppData(ctx)
				if err != nil {
					fail(err)
					return
				}
				renderStatus(out, app)
			},
		},
		{
			Name: "weigh",
			Help: "weigh HEIGHT_CM WEIGHT_KG",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 2 {
					fail(fmt.Errorf("usage: weigh HEIGHT_CM WEIGHT_KG"))
					return
				}
				h, herr := strconv.ParseFloat(c.Args[0], 64)
				w, werr := strconv.ParseFloat(c.Args[1], 64)
				if herr != nil || werr != nil {
					fail(fmt.Errorf("height and weight must be numbers"))
					return
				}
				entry, err := d.Engine.SaveHeightAndWeight(ctx, h, w)
				if err != nil {
					fail(err)
					return
				}
				fmt.Fprintf(out, "BMI %.1f (%s)\n", entry.BMI, entry.BMIStatus)
			},
		},
		{
			Name: "diet",
			Help: "diet ITEM... (separate multi-word items with commas)",
			Func: func(c *ishell.Context) {
				items, err := d.Engine.SaveDiet(ctx, splitItems(c.Args))
				if err != nil {
					fail(err)
					return
				}
				renderItems(out, "Diet", items)
			},
		},
		{
			Name: "exercise",
			Help: "exercise ITEM... (separate multi-word items with commas)",
			Func: func(c *ishell.Context) {
				items, err := d.Engine.SaveExercise(ctx, splitItems(c.Args))
				if err != nil {
					fail(err)
					return
				}
				renderItems(out, "Exercise", items)
			},
		},
		{
			Name: "complete",
			Help: "complete today and collect points",
			Func: func(c *ishell.Context) {
				res, err := d.Engine.CompleteDay(ctx)
				if err != nil {
					fail(err)
					return
				}
				renderDayResult(out, res)
			},
		},
		{
			Name: "rewards",
			Help: "list rewards",
			Func: func(c *ishell.Context) {
				rewards, err := d.Engine.Rewards(ctx)
				if err != nil {
					fail(err)
					return
				}
				_ = renderRewards(out, rewards)
			},
		},
		{
			Name: "redeem",
			Help: "redeem COST",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					fail(fmt.Errorf("usage: redeem COST"))
					return
				}
				cost, err := strconv.ParseInt(c.Args[0], 10, 64)
				if err != nil {
					fail(fmt.Errorf("cost %q is not a number", c.Args[0]))
					return
				}
				res, err := d.Engine.RedeemReward(ctx, cost)
				if err != nil {
					fail(err)
					return
				}
				renderRedemption(out, res)
			},
		},
		{
			Name: "points",
			Help: "show recent ledger entries",
			Func: func(c *ishell.Context) {
				entries, err := d.Engine.PointsHistory(ctx, 20)
				if err != nil {
					fail(err)
					return
				}
				_ = renderLedger(out, entries)
			},
		},
		{
			Name: "tasks",
			Help: "list active tasks",
			Func: func(c *ishell.Context) {
				tasks, err := d.Engine.ListActiveDynamicTasks(ctx, time.Time{})
				if err != nil {
					fail(err)
					return
				}
				_ = renderTasks(out, tasks, time.Now())
			},
		},
		{
			Name: "done",
			Help: "done TASK_ID",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					fail(fmt.Errorf("usage: done TASK_ID"))
					return
				}
				id, err := parseTaskID(c.Args[0])
				if err != nil {
					fail(err)
					return
				}
				res, err := d.Engine.CompleteDynamicTask(ctx, id)
				if err != nil {
					fail(err)
					return
				}
				renderTaskResult(out, res)
			},
		},
		{
			Name: "history",
			Help: "show every logged day",
			Func: func(c *ishell.Context) {
				logs, err := d.Engine.DayHistory(ctx)
				if err != nil {
					fail(err)
					return
				}
				renderHistory(out, logs)
			},
		},
		{
			Name: "calendar",
			Help: "calendar [YYYY-MM]",
			Func: func(c *ishell.Context) {
				month := d.Engine.Today().Month()
				if len(c.Args) > 0 {
					month = c.Args[0]
				}
				days, err := d.Engine.CalendarData(ctx, month)
				if err != nil {
					fail(err)
					return
				}
				_ = renderCalendar(out, days)
			},
		},
	}
}

// splitItems joins the words back together and splits on commas, so
// "diet ate fruit, no soda" logs two items.
func splitItems(args []string) []string {
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, ",") {
		return args
	}
	return strings.Split(joined, ",")
}
