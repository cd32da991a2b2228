package sampler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/houseplanner/idlewatch/internal/config"
)

// stubSampler returns a fixed result.
type stubSampler struct {
	name   string
	result Result
}

func (s *stubSampler) Name() string                { return s.name }
func (s *stubSampler) Sample(now time.Time) Result { return s.result }

func TestAggregate(t *testing.T) {
	now := time.Now()

	t.Run("any active sampler wins", func(t *testing.T) {
		agg := NewAggregate(
			&stubSampler{name: "a", result: Result{Reason: "quiet"}},
			&stubSampler{name: "b", result: Result{Active: true, Reason: "traffic"}},
			&stubSampler{name: "c", result: Result{Reason: "quiet"}},
		)

		verdict := agg.Sample(now)
		assert.True(t, verdict.Active)
		assert.Equal(t, "b", verdict.Source)
		assert.Equal(t, "traffic", verdict.Reason)
	})

	t.Run("all inactive yields inactive", func(t *testing.T) {
		agg := NewAggregate(
			&stubSampler{name: "a", result: Result{Reason: "quiet"}},
			&stubSampler{name: "b", result: Result{Reason: "silent"}},
		)

		verdict := agg.Sample(now)
		assert.False(t, verdict.Active)
		assert.Equal(t, "b", verdict.Source)
		assert.Equal(t, "silent", verdict.Reason)
	})

	t.Run("empty aggregate is inactive", func(t *testing.T) {
		verdict := NewAggregate().Sample(now)
		assert.False(t, verdict.Active)
	})
}

func TestFromConfig(t *testing.T) {
	base := &config.Config{
		IdleThresholdSeconds:  3600,
		SampleIntervalSeconds: 60,
		StateFile:             "/tmp/state.json",
		LockFile:              "/tmp/lock.pid",
		AccessLog: config.AccessLog{
			Path:               "/var/log/nginx/access.log",
			ScanLines:          500,
			MtimeWindowSeconds: 300,
		},
		TCP:     config.TCP{Port: 8501},
		Network: config.Network{ThresholdBytes: 1024},
	}

	t.Run("builds one sampler per enabled signal in order", func(t *testing.T) {
		cfg := *base
		cfg.Signals = []string{
			config.SignalAccessLog,
			config.SignalAccessLogMtime,
			config.SignalTCPConnections,
			config.SignalLoginSessions,
			config.SignalNetworkBytes,
		}

		samplers, err := FromConfig(&cfg)
		require.NoError(t, err)
		require.Len(t, samplers, 5)
		for i, name := range cfg.Signals {
			assert.Equal(t, name, samplers[i].Name())
		}
	})

	t.Run("bad filter source fails", func(t *testing.T) {
		cfg := *base
		cfg.Signals = []string{config.SignalAccessLog}
		cfg.AccessLog.IgnoreSources = []string{"not-an-ip"}

		_, err := FromConfig(&cfg)
		require.Error(t, err)
	})
}
