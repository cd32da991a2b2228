package state

import "time"

// Timer applies activity observations to the persisted idle session and
// reports progress toward the shutdown threshold.
type Timer struct {
	store     *Store
	threshold time.Duration
	runID     string
}

// Status is the outcome of one observation.
type Status struct {
	// IdleSince is the start of the current idle streak; zero when active.
	IdleSince time.Time
	// Elapsed is how long the current idle streak has lasted.
	Elapsed time.Duration
	// Remaining is the idle budget left before shutdown triggers.
	Remaining time.Duration
	// Triggered is set once Elapsed has reached the threshold.
	Triggered bool
}

// NewTimer creates a timer over the given store. runID identifies the monitor
// run writing the state, for correlation with the log stream.
func NewTimer(store *Store, threshold time.Duration, runID string) *Timer {
	return &Timer{
		store:     store,
		threshold: threshold,
		runID:     runID,
	}
}

// Threshold returns the configured idle limit.
func (t *Timer) Threshold() time.Duration {
	return t.threshold
}

// Observe folds one aggregate activity verdict into the idle session.
// Any active observation clears the streak immediately; the first inactive
// observation starts it at now; subsequent inactive observations extend it.
// State is reloaded from disk on every call so a restarted monitor resumes
// the streak a previous run recorded.
func (t *Timer) Observe(active bool, now time.Time) (Status, error) {
	session := t.store.Load()

	if active {
		if session.Idle() {
			if err := t.store.Clear(); err != nil {
				return Status{}, err
			}
		}
		return Status{Remaining: t.threshold}, nil
	}

	if !session.Idle() {
		first := now
		session.FirstIdleAt = &first
	}
	session.UpdatedAt = now
	session.RunID = t.runID

	if err := t.store.Save(session); err != nil {
		return Status{}, err
	}

	elapsed := session.Elapsed(now)
	remaining := t.threshold - elapsed
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		IdleSince: *session.FirstIdleAt,
		Elapsed:   elapsed,
		Remaining: remaining,
		Triggered: elapsed >= t.threshold,
	}, nil
}

// Reset discards any recorded idle streak. Used by the boot-grace rule, which
// must not let a streak persisted before a reboot count against a freshly
// started host.
func (t *Timer) Reset() error {
	return t.store.Clear()
}
