package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/healthquest/healthquest/internal/daemon"
)

// serveFlags are applied on top of config.toml, .env and $PORT.
type serveFlags struct {
	host      string
	port      int
	dataDir   string
	cors      []string
	noMetrics bool
	backup    string
}

var serveOpts serveFlags

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveOpts.host, "host", "", "Host to listen on (overrides config and $PORT's 0.0.0.0)")
	f.IntVar(&serveOpts.port, "port", 0, "Port to listen on (overrides config and $PORT)")
	f.StringVar(&serveOpts.dataDir, "data-dir", "", "Data directory (overrides $HEALTHQUEST_HOME and /data)")
	f.StringSliceVar(&serveOpts.cors, "cors", nil, "Allowed CORS origins, comma separated")
	f.BoolVar(&serveOpts.noMetrics, "no-metrics", false, "Do not expose /metrics")
	f.StringVar(&serveOpts.backup, "backup", "", "Enable scheduled backups with this cron spec (e.g. @daily)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HealthQuest API server",
	Long: `Start the JSON API server on 127.0.0.1:8000.

When $PORT is set (as on most container platforms) the server listens on
0.0.0.0:$PORT. Data is kept in $HEALTHQUEST_HOME, else a mounted /data
volume, else ~/.healthquest. Flags override all of these.`,
	Example: `  healthquest serve --port 9000
  healthquest serve --data-dir ./data --backup @daily
  PORT=8080 healthquest serve --no-metrics`,
	RunE: runServe,
}

// config resolves the data directory, loads the config and applies the
// flags. The data directory must be set before loading since it decides
// where config.toml and the default backup directory live.
func (f serveFlags) config() (daemon.Config, error) {
	if f.dataDir != "" {
		if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
			return daemon.Config{}, fmt.Errorf("data dir: %w", err)
		}
		if err := os.Setenv("HEALTHQUEST_HOME", f.dataDir); err != nil {
			return daemon.Config{}, err
		}
	}

	cfg, err := daemon.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if f.host != "" {
		cfg.API.Host = f.host
	}
	if f.port < 0 || f.port > 65535 {
		return cfg, fmt.Errorf("invalid --port %d", f.port)
	}
	if f.port > 0 {
		cfg.API.Port = f.port
	}
	if len(f.cors) > 0 {
		cfg.API.CORSOrigins = f.cors
	}
	if f.noMetrics {
		cfg.Telemetry.Prometheus = false
	}
	if f.backup != "" {
		cfg.Backup.Enabled = true
		cfg.Backup.Schedule = f.backup
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := serveOpts.config()
	if err != nil {
		return err
	}

	var opts []daemon.Option
	if ephemeral {
		opts = append(opts, daemon.Ephemeral())
	}
	d, err := daemon.NewWithConfig(cfg, opts...)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Serve(cmd.Context())
}
