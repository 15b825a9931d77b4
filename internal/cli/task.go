package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/healthquest/healthquest/internal/app/quest"
	"github.com/healthquest/healthquest/internal/daemon"
	"github.com/healthquest/healthquest/internal/domain"
)

func init() {
	taskCreateCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskCreateCmd.Flags().StringVar(&taskDesc, "desc", "", "Task description")
	taskCreateCmd.Flags().Int64Var(&taskPoints, "points", 0, "Points paid on completion (required)")
	taskCreateCmd.Flags().StringVar(&taskStart, "start", "", "Window start (default now)")
	taskCreateCmd.Flags().StringVar(&taskEnd, "end", "", "Window end (overrides --duration)")
	taskCreateCmd.Flags().DurationVar(&taskDuration, "duration", time.Hour, "Window length from start")
	_ = taskCreateCmd.MarkFlagRequired("title")
	_ = taskCreateCmd.MarkFlagRequired("points")

	taskListCmd.Flags().BoolVar(&taskAll, "all", false, "Include finished, expired and deleted tasks")

	taskCmd.AddCommand(taskCreateCmd, taskDoneCmd, taskRemoveCmd, taskListCmd)
	rootCmd.AddCommand(taskCmd)
}

var (
	taskTitle    string
	taskDesc     string
	taskPoints   int64
	taskStart    string
	taskEnd      string
	taskDuration time.Duration
	taskAll      bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage time-limited bonus tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task with a reward and a time window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		in, err := taskInput(d, time.Now())
		if err != nil {
			return err
		}
		t, err := d.Engine.CreateDynamicTask(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s (%d points, until %s)\n",
			t.ID, t.Title, t.PointsReward, t.End.Format("2006-01-02 15:04"))
		return nil
	},
}

// taskInput builds the task window from the flags in the engine's timezone.
func taskInput(d *daemon.Daemon, now time.Time) (quest.TaskInput, error) {
	loc := d.Engine.Config().Location
	start := now.In(loc)
	if taskStart != "" {
		var err error
		if start, err = parseTime(taskStart, now, loc); err != nil {
			return quest.TaskInput{}, err
		}
	}
	end := start.Add(taskDuration)
	if taskEnd != "" {
		var err error
		if end, err = parseTime(taskEnd, now, loc); err != nil {
			return quest.TaskInput{}, err
		}
	}
	return quest.TaskInput{
		Title:        taskTitle,
		Description:  taskDesc,
		PointsReward: taskPoints,
		Start:        start,
		End:          end,
	}, nil
}

var taskDoneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Complete an active task and collect its points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Engine.CompleteDynamicTask(cmd.Context(), id)
		if err != nil {
			return err
		}
		renderTaskResult(cmd.OutOrStdout(), res)
		return nil
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		t, err := d.Engine.DeleteDynamicTask(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d: %s\n", t.ID, t.Title)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List active tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		var tasks []domain.TaskView
		if taskAll {
			tasks, err = d.Engine.ListAllDynamicTasks(cmd.Context())
		} else {
			tasks, err = d.Engine.ListActiveDynamicTasks(cmd.Context(), time.Time{})
		}
		if err != nil {
			return err
		}
		return renderTasks(cmd.OutOrStdout(), tasks, time.Now())
	},
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
