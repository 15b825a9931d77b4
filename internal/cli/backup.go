package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/healthquest/healthquest/internal/daemon"
)

func init() {
	backupCmd.AddCommand(backupCreateCmd, backupListCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create and list database backups",
}

func openBackups() (*daemon.Daemon, error) {
	if ephemeral {
		return nil, errors.New("backups need the on-disk store; drop --ephemeral")
	}
	return openDaemon()
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a backup of the database now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openBackups()
		if err != nil {
			return err
		}
		defer d.Close()

		info, err := d.Backups.Create(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written: %s (%s)\n", info.Path, humanize.Bytes(uint64(info.Size)))
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List backups, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openBackups()
		if err != nil {
			return err
		}
		defer d.Close()

		list, err := d.Backups.List()
		if err != nil {
			return err
		}
		return renderBackups(cmd.OutOrStdout(), list)
	},
}
