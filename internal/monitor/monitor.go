// Package monitor runs the decision loop: sample activity, advance or clear
// the idle timer, and power the host off once continuous idleness exceeds
// the threshold.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/houseplanner/idlewatch/internal/sampler"
	"github.com/houseplanner/idlewatch/internal/state"
	"github.com/houseplanner/idlewatch/internal/uptime"
)

// State is the decision loop's position in its lifecycle.
type State string

const (
	// StateActive means the most recent sample observed activity (or boot
	// grace is in effect).
	StateActive State = "ACTIVE"
	// StateIdlePending means idleness has been observed and the timer is
	// running.
	StateIdlePending State = "IDLE_PENDING"
	// StateShutdownTriggered is terminal: the power-off request has been
	// issued.
	StateShutdownTriggered State = "SHUTDOWN_TRIGGERED"
)

// PowerOffer issues the host power-off request.
type PowerOffer interface {
	PowerOff(reason string) error
}

// Options configures a Monitor.
type Options struct {
	Interval  time.Duration
	BootGrace time.Duration

	// Now and Uptime are injectable for tests; nil selects the real clock
	// and /proc/uptime.
	Now    func() time.Time
	Uptime func() (time.Duration, error)
}

// Monitor is the sequential decision loop. It is not safe for concurrent
// use; cross-process exclusion is the lock package's job.
type Monitor struct {
	agg       *sampler.Aggregate
	timer     *state.Timer
	power     PowerOffer
	logger    *slog.Logger
	interval  time.Duration
	bootGrace time.Duration
	now       func() time.Time
	uptime    func() (time.Duration, error)

	state State
}

// New creates a monitor in the ACTIVE state.
func New(agg *sampler.Aggregate, timer *state.Timer, power PowerOffer, logger *slog.Logger, opts Options) *Monitor {
	m := &Monitor{
		agg:       agg,
		timer:     timer,
		power:     power,
		logger:    logger.With("component", "monitor"),
		interval:  opts.Interval,
		bootGrace: opts.BootGrace,
		now:       opts.Now,
		uptime:    opts.Uptime,
		state:     StateActive,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.uptime == nil {
		m.uptime = uptime.Host
	}
	return m
}

// State returns the loop's current state.
func (m *Monitor) State() State {
	return m.state
}

// Run executes the decision loop until shutdown triggers or the context is
// cancelled. The first sample happens immediately; subsequent samples every
// interval.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor starting",
		"marker", "START",
		"interval", m.interval,
		"threshold", m.timer.Threshold(),
		"boot_grace", m.bootGrace,
	)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		done, err := m.Tick()
		if done || err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}

// Tick performs one sample/observe/decide pass. done reports that the loop
// must not run again: either the power-off request was issued, or issuing it
// failed (the only fatal error).
func (m *Monitor) Tick() (done bool, err error) {
	now := m.now()

	// Boot grace: a freshly booted host is never considered idle, and any
	// idle streak persisted before the reboot is discarded.
	if up, uerr := m.uptime(); uerr == nil && up < m.bootGrace {
		if rerr := m.timer.Reset(); rerr != nil {
			m.logger.Warn("failed to clear idle state during boot grace", "error", rerr)
		}
		m.state = StateActive
		m.logger.Info("within boot grace period",
			"marker", "GRACE",
			"uptime", up.Round(time.Second),
			"grace", m.bootGrace,
		)
		return false, nil
	}

	verdict := m.agg.Sample(now)

	status, oerr := m.timer.Observe(verdict.Active, now)
	if oerr != nil {
		// Persistence trouble must not crash the loop; skip the decision
		// this tick and try again next interval.
		m.logger.Warn("failed to update idle state", "error", oerr)
		return false, nil
	}

	if verdict.Active {
		m.state = StateActive
		m.logger.Info("activity observed",
			"marker", "ACTIVE",
			"signal", verdict.Source,
			"reason", verdict.Reason,
		)
		return false, nil
	}

	if status.Triggered {
		// Terminal transition: the power-off request follows immediately,
		// with no further sample in between.
		m.state = StateShutdownTriggered
		reason := fmt.Sprintf("idle for %s (threshold %s)",
			status.Elapsed.Round(time.Second), m.timer.Threshold())
		if perr := m.power.PowerOff(reason); perr != nil {
			return true, perr
		}
		return true, nil
	}

	m.state = StateIdlePending
	m.logger.Info("idle",
		"marker", "IDLE",
		"signal", verdict.Source,
		"reason", verdict.Reason,
		"idle_since", status.IdleSince.Format(time.RFC3339),
		"elapsed", status.Elapsed.Round(time.Second),
		"remaining", status.Remaining.Round(time.Second),
	)
	return false, nil
}
