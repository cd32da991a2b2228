package state

import "time"

// Session represents the current unbroken streak of inactivity being timed.
// FirstIdleAt is nil while activity is observed; once set it always refers to
// the start of the present idle streak.
type Session struct {
	FirstIdleAt *time.Time `json:"first_idle_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
	RunID       string     `json:"run_id,omitempty"`
}

// Idle reports whether an idle streak is currently being tracked.
func (s *Session) Idle() bool {
	return s.FirstIdleAt != nil
}

// Elapsed returns how long the current idle streak has lasted as of now,
// or zero when no streak is being tracked.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.FirstIdleAt == nil {
		return 0
	}
	elapsed := now.Sub(*s.FirstIdleAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
