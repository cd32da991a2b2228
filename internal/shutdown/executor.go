// Package shutdown issues the terminal power-off request.
package shutdown

import (
	"fmt"
	"log/slog"
	"os/exec"
)

// Executor performs the host power-off. The request is fire-and-forget: the
// host may disappear at any point after the command is accepted, so callers
// must not schedule further work behind it.
type Executor struct {
	dryRun bool
	logger *slog.Logger
	run    func(name string, args ...string) error
}

// NewExecutor creates a power-off executor. With dryRun set the decision is
// logged but no command runs.
func NewExecutor(dryRun bool, logger *slog.Logger) *Executor {
	return &Executor{
		dryRun: dryRun,
		logger: logger.With("component", "shutdown"),
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// PowerOff requests host shutdown. systemctl is preferred; the legacy
// shutdown(8) path covers hosts without systemd. Failure of both is fatal to
// the run: callers log, exit non-zero, and do not retry.
func (e *Executor) PowerOff(reason string) error {
	e.logger.Error("shutting down host", "marker", "SHUTDOWN", "reason", reason, "dry_run", e.dryRun)

	if e.dryRun {
		return nil
	}

	err := e.run("systemctl", "poweroff")
	if err == nil {
		return nil
	}
	e.logger.Warn("systemctl poweroff failed, trying shutdown(8)", "error", err)

	if err := e.run("shutdown", "-h", "now"); err != nil {
		return fmt.Errorf("power-off request failed: %w", err)
	}
	return nil
}
