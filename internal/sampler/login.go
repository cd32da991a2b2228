package sampler

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/houseplanner/idlewatch/internal/config"
)

// LoginSampler counts interactive login sessions. A safety signal: it keeps
// the monitor from powering the host off underneath an operator who is
// logged in over SSH, not a measure of application usage.
type LoginSampler struct {
	// who returns the output of who(1); replaceable in tests.
	who func() ([]byte, error)
}

// NewLoginSampler creates a logged-in-session sampler.
func NewLoginSampler() *LoginSampler {
	return &LoginSampler{
		who: func() ([]byte, error) {
			return exec.Command("who").Output()
		},
	}
}

// Name implements Sampler.
func (s *LoginSampler) Name() string {
	return config.SignalLoginSessions
}

// Sample implements Sampler. A failing who(1) reports inactive.
func (s *LoginSampler) Sample(now time.Time) Result {
	out, err := s.who()
	if err != nil {
		return Result{Reason: fmt.Sprintf("who failed: %v", err)}
	}

	count := 0
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}

	if count > 0 {
		return Result{
			Active: true,
			Reason: fmt.Sprintf("%d login session(s)", count),
		}
	}
	return Result{Reason: "no login sessions"}
}
