// Package sampler implements the activity signals the monitor consults each
// tick. Every heuristic the host offers (proxy log recency, log content,
// socket table, login sessions, interface counters) is one Sampler; the
// monitor combines them by logical OR, since any single channel of real usage
// proves the workspace is in use.
package sampler

import (
	"fmt"
	"time"

	"github.com/houseplanner/idlewatch/internal/config"
)

// Result is one sampler's verdict for the current sample.
type Result struct {
	Active bool
	Reason string
}

// Sampler produces an activity verdict from one evidence source. Sample never
// fails: a source that cannot be read reports inactive with the problem in
// Reason, so a missing log file degrades toward shutdown rather than keeping
// the host up forever.
type Sampler interface {
	Name() string
	Sample(now time.Time) Result
}

// Verdict is the aggregate outcome across all enabled samplers.
type Verdict struct {
	Active bool
	// Source names the sampler behind the verdict: the first active sampler,
	// or the last inactive one when nothing fired.
	Source string
	Reason string
}

// Aggregate combines sampler verdicts by logical OR.
type Aggregate struct {
	samplers []Sampler
}

// NewAggregate creates an aggregate over the given samplers.
func NewAggregate(samplers ...Sampler) *Aggregate {
	return &Aggregate{samplers: samplers}
}

// Sample polls every sampler in order and returns on the first active
// verdict. With no active sampler the verdict carries the last sampler's
// reason for context.
func (a *Aggregate) Sample(now time.Time) Verdict {
	verdict := Verdict{Reason: "no samplers enabled"}
	for _, s := range a.samplers {
		result := s.Sample(now)
		verdict.Source = s.Name()
		verdict.Reason = result.Reason
		if result.Active {
			verdict.Active = true
			return verdict
		}
	}
	return verdict
}

// FromConfig builds the enabled sampler set. Order follows the configured
// list, so operators can put the cheapest or most authoritative signal first.
func FromConfig(cfg *config.Config) ([]Sampler, error) {
	var samplers []Sampler
	for _, name := range cfg.Signals {
		switch name {
		case config.SignalAccessLog:
			filter, err := NewProbeFilter(cfg.AccessLog.IgnoreUserAgents, cfg.AccessLog.IgnoreSources)
			if err != nil {
				return nil, fmt.Errorf("invalid access_log filter: %w", err)
			}
			samplers = append(samplers, NewLogScanSampler(
				cfg.AccessLog.Path,
				cfg.AccessLog.ScanLines,
				cfg.IdleThreshold(),
				filter,
			))
		case config.SignalAccessLogMtime:
			samplers = append(samplers, NewMtimeSampler(cfg.AccessLog.Path, cfg.AccessLog.MtimeWindow()))
		case config.SignalTCPConnections:
			samplers = append(samplers, NewTCPSampler(cfg.TCP.Port))
		case config.SignalLoginSessions:
			samplers = append(samplers, NewLoginSampler())
		case config.SignalNetworkBytes:
			samplers = append(samplers, NewNetBytesSampler(cfg.Network.Interface, cfg.Network.ThresholdBytes))
		default:
			// Validate() rejects unknown names before we get here.
			return nil, fmt.Errorf("unknown signal %q", name)
		}
	}
	return samplers, nil
}
