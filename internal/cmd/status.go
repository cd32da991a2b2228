package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/houseplanner/idlewatch/internal/config"
	"github.com/houseplanner/idlewatch/internal/lock"
	"github.com/houseplanner/idlewatch/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current idle state",
	Long:  `Show the persisted idle session and whether a monitor is currently running.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := state.NewStore(cfg.StateFile)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	session := store.Load()

	monitorState := "not running"
	if pid, alive := lock.Holder(cfg.LockFile); alive {
		monitorState = fmt.Sprintf("running (pid %d)", pid)
	}

	now := time.Now()

	// Create tabwriter for aligned output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "MONITOR\t%s\n", monitorState)
	_, _ = fmt.Fprintf(w, "THRESHOLD\t%s\n", cfg.IdleThreshold())

	if session.Idle() {
		elapsed := session.Elapsed(now)
		remaining := cfg.IdleThreshold() - elapsed
		if remaining < 0 {
			remaining = 0
		}
		_, _ = fmt.Fprintf(w, "STATE\tIDLE\n")
		_, _ = fmt.Fprintf(w, "IDLE SINCE\t%s\n", session.FirstIdleAt.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "ELAPSED\t%s\n", elapsed.Round(time.Second))
		_, _ = fmt.Fprintf(w, "REMAINING\t%s\n", remaining.Round(time.Second))
		_, _ = fmt.Fprintf(w, "LAST SAMPLE\t%s\n", session.UpdatedAt.Format("2006-01-02 15:04:05"))
	} else {
		_, _ = fmt.Fprintf(w, "STATE\tACTIVE\n")
	}

	_ = w.Flush()
	return nil
}
