package sampler

import (
	"fmt"
	"os"
	"time"

	"github.com/houseplanner/idlewatch/internal/config"
)

// MtimeSampler treats a recent write to the access log as activity. Cheap but
// coarse: health-check traffic touches the log too, so prefer the content
// scanner when probe filtering matters.
type MtimeSampler struct {
	path   string
	window time.Duration
}

// NewMtimeSampler creates a log-recency sampler.
func NewMtimeSampler(path string, window time.Duration) *MtimeSampler {
	return &MtimeSampler{path: path, window: window}
}

// Name implements Sampler.
func (s *MtimeSampler) Name() string {
	return config.SignalAccessLogMtime
}

// Sample implements Sampler. A missing log reports inactive.
func (s *MtimeSampler) Sample(now time.Time) Result {
	info, err := os.Stat(s.path)
	if err != nil {
		return Result{Reason: fmt.Sprintf("access log unavailable: %v", err)}
	}

	age := now.Sub(info.ModTime())
	if age >= 0 && age < s.window {
		return Result{
			Active: true,
			Reason: fmt.Sprintf("log written %s ago", age.Round(time.Second)),
		}
	}

	return Result{Reason: fmt.Sprintf("last log write %s ago", age.Round(time.Second))}
}
