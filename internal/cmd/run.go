package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/houseplanner/idlewatch/internal/config"
	"github.com/houseplanner/idlewatch/internal/lock"
	"github.com/houseplanner/idlewatch/internal/monitor"
	"github.com/houseplanner/idlewatch/internal/sampler"
	"github.com/houseplanner/idlewatch/internal/shutdown"
	"github.com/houseplanner/idlewatch/internal/state"
)

var (
	runOnce bool
	dryRun  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the idle shutdown monitor",
	Long: `Run the idle shutdown monitor until it powers the host off or is stopped.

Only one monitor runs per host: when a live instance already holds the lock
this command exits successfully without doing anything, so it is safe to
invoke repeatedly from a timer unit.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runOnce, "once", false, "perform a single evaluation pass and exit")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the shutdown decision without powering off")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	guard, err := lock.Acquire(cfg.LockFile)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			// Idempotent invocation: a live monitor is already on duty.
			logger.Info("another instance is running, nothing to do", "detail", err)
			return nil
		}
		return fmt.Errorf("failed to acquire singleton lock: %w", err)
	}
	defer guard.Release()

	store, err := state.NewStore(cfg.StateFile)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}

	samplers, err := sampler.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to build samplers: %w", err)
	}

	mon := monitor.New(
		sampler.NewAggregate(samplers...),
		state.NewTimer(store, cfg.IdleThreshold(), uuid.NewString()),
		shutdown.NewExecutor(dryRun, logger),
		logger,
		monitor.Options{
			Interval:  cfg.SampleInterval(),
			BootGrace: cfg.BootGrace(),
		},
	)

	if runOnce {
		_, err := mon.Tick()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return mon.Run(ctx)
}
