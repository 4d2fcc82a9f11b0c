// Command torba runs the bag inventory server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/torba/internal/config"
)

// options are the flags shared by all commands. Flags that are set override
// the environment.
type options struct {
	envFile string
	dbPath  string
	logPath string
	port    int
}

// config loads the configuration and applies flag overrides.
func (o *options) config(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DatabasePath = o.dbPath
	}
	if flags.Changed("log") {
		cfg.LogFile = o.logPath
	}
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	return cfg, nil
}

func newRootCommand(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "torba",
		Short: "Inventory tracking for bags and kits",
		Long: `torba tracks bags (kits) owned by sites, their checklists, and the
inventory checks recorded against them by scanning a bag's QR token.

Configuration is read from the environment and an optional .env file:
PORT, DATABASE_PATH, JWT_SECRET, JWT_EXPIRES_HOURS, ADMIN_USERNAME,
ADMIN_PASSWORD, LOG_FILE.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", ".env", "file to load environment variables from, if it exists")
	pf.StringVarP(&opts.dbPath, "db", "d", config.DefaultDatabasePath, "SQLite database path (overrides DATABASE_PATH)")
	pf.StringVarP(&opts.logPath, "log", "l", "", "log file path (overrides LOG_FILE)")

	root.AddCommand(newServeCommand(opts), newSeedAdminCommand(opts))
	return root
}

func main() {
	if err := newRootCommand(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}
