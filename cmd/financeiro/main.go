package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"financeiro/internal/cli"
	"financeiro/internal/config"
)

var version = "dev"

// rootFlags are the persistent flags shared by every subcommand. Empty
// values leave the environment configuration untouched.
type rootFlags struct {
	envFile   string
	logLevel  string
	logFormat string
	backend   string
	ledger    string
}

func (f *rootFlags) apply(cfg *config.Config) {
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}
	if f.backend != "" {
		cfg.DataBackend = f.backend
	}
	if f.ledger != "" {
		switch cfg.DataBackend {
		case config.BackendSQLite:
			cfg.SQLiteDBPath = f.ledger
		case config.BackendBolt:
			cfg.BoltDBPath = f.ledger
		default:
			cfg.LedgerFile = f.ledger
		}
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "financeiro",
		Short: "Personal finance ledger and dashboard",
		Long: `financeiro records income and expense transactions in a ledger and
summarises them: totals, current balance, expenses by category, the monthly
balance and a simple spending recommendation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if flags.envFile == "" {
				return cli.LoadEnvFile()
			}
			return cli.LoadEnvFile(flags.envFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", "", "env file to load (default: .env when present)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format (text, json)")
	pf.StringVar(&flags.backend, "backend", "", fmt.Sprintf("ledger backend %v", config.Backends()))
	pf.StringVar(&flags.ledger, "ledger", "", "ledger location for the csv, sqlite or bolt backend")

	root.AddCommand(
		newServeCmd(flags),
		newAddCmd(flags),
		newSummaryCmd(flags),
		newImportCmd(flags),
	)
	return root
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
