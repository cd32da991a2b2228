package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:   "idlewatch",
	Short: "idlewatch - idle shutdown monitor for workspace hosts",
	Long: `idlewatch watches indirect activity signals (reverse-proxy access log,
established connections, login sessions, interface byte counters) and powers
the host off after a configured period of continuous idleness.

Run the monitor:
  idlewatch run
  idlewatch run --once        # single evaluation pass (timer-unit mode)
  idlewatch run --dry-run     # log the decision, never power off

Inspect the current idle state:
  idlewatch status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/idlewatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}

// newLogger builds the process-wide logger. Output goes to stderr where the
// service supervisor (journald) collects it.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
