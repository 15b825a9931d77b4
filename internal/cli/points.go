package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/healthquest/healthquest/internal/domain"
)

func init() {
	pointsCmd.Flags().StringVar(&pointsDate, "date", "", "Show entries for one date (YYYY-MM-DD)")
	pointsCmd.Flags().IntVar(&pointsLimit, "limit", 20, "Number of recent entries to show")
	rootCmd.AddCommand(pointsCmd, rewardsCmd, redeemCmd)
}

var (
	pointsDate  string
	pointsLimit int
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show the points ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		var entries []domain.LedgerEntry
		if pointsDate != "" {
			date, err := domain.ParseDate(pointsDate)
			if err != nil {
				return err
			}
			entries, err = d.Engine.PointsOn(cmd.Context(), date)
			if err != nil {
				return err
			}
		} else {
			entries, err = d.Engine.PointsHistory(cmd.Context(), pointsLimit)
			if err != nil {
				return err
			}
		}
		return renderLedger(cmd.OutOrStdout(), entries)
	},
}

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "List rewards and which ones you can afford",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		rewards, err := d.Engine.Rewards(cmd.Context())
		if err != nil {
			return err
		}
		return renderRewards(cmd.OutOrStdout(), rewards)
	},
}

var redeemCmd = &cobra.Command{
	Use:   "redeem COST",
	Short: "Spend points on the reward with this cost",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("cost %q is not a number", args[0])
		}

		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Engine.RedeemReward(cmd.Context(), cost)
		if err != nil {
			return err
		}
		renderRedemption(cmd.OutOrStdout(), res)
		return nil
	},
}
