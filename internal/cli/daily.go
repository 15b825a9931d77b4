package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show (YYYY-MM, default current; \"all\" for every day)")
	rootCmd.AddCommand(dietCmd, exerciseCmd, completeCmd, historyCmd, calendarCmd)
}

var dietCmd = &cobra.Command{
	Use:   "diet ITEM...",
	Short: "Log healthy eating for today",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		items, err := d.Engine.SaveDiet(cmd.Context(), args)
		if err != nil {
			return err
		}
		renderItems(cmd.OutOrStdout(), "Diet", items)
		return nil
	},
}

var exerciseCmd = &cobra.Command{
	Use:   "exercise ITEM...",
	Short: "Log exercise for today",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		items, err := d.Engine.SaveExercise(cmd.Context(), args)
		if err != nil {
			return err
		}
		renderItems(cmd.OutOrStdout(), "Exercise", items)
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete today and collect points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Engine.CompleteDay(cmd.Context())
		if err != nil {
			return err
		}
		renderDayResult(cmd.OutOrStdout(), res)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show every logged day, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		logs, err := d.Engine.DayHistory(cmd.Context())
		if err != nil {
			return err
		}
		renderHistory(cmd.OutOrStdout(), logs)
		return nil
	},
}

var calendarMonth string

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show which days were completed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		month := calendarMonth
		switch month {
		case "":
			month = d.Engine.Today().Month()
		case "all":
			month = ""
		}
		days, err := d.Engine.CalendarData(cmd.Context(), month)
		if err != nil {
			return err
		}
		return renderCalendar(cmd.OutOrStdout(), days)
	},
}
