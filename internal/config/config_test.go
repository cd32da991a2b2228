package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 3600, cfg.IdleThresholdSeconds)
	assert.Equal(t, 60, cfg.SampleIntervalSeconds)
	assert.Equal(t, 600, cfg.BootGraceSeconds)
	assert.Equal(t, "/run/idlewatch/state.json", cfg.StateFile)
	assert.Equal(t, "/run/idlewatch/idlewatch.pid", cfg.LockFile)
	assert.Equal(t, []string{SignalAccessLog, SignalLoginSessions}, cfg.Signals)

	assert.Equal(t, "/var/log/nginx/access.log", cfg.AccessLog.Path)
	assert.Equal(t, 500, cfg.AccessLog.ScanLines)
	assert.Equal(t, 300, cfg.AccessLog.MtimeWindowSeconds)
	assert.Contains(t, cfg.AccessLog.IgnoreUserAgents, "ELB-HealthChecker")
	assert.Contains(t, cfg.AccessLog.IgnoreSources, "127.0.0.0/8")

	assert.Equal(t, 8501, cfg.TCP.Port)
	assert.Equal(t, uint64(1024), cfg.Network.ThresholdBytes)

	assert.Equal(t, time.Hour, cfg.IdleThreshold())
	assert.Equal(t, time.Minute, cfg.SampleInterval())
	assert.Equal(t, 10*time.Minute, cfg.BootGrace())
	assert.Equal(t, 5*time.Minute, cfg.AccessLog.MtimeWindow())
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
idle_threshold_seconds: 1800
sample_interval_seconds: 120
signals:
  - network_bytes
  - tcp_connections
access_log:
  path: /var/log/httpd/access_log
  scan_lines: 200
network:
  interface: eth0
  threshold_bytes: 4096
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1800, cfg.IdleThresholdSeconds)
	assert.Equal(t, 120, cfg.SampleIntervalSeconds)
	assert.Equal(t, []string{SignalNetworkBytes, SignalTCPConnections}, cfg.Signals)
	assert.Equal(t, "/var/log/httpd/access_log", cfg.AccessLog.Path)
	assert.Equal(t, 200, cfg.AccessLog.ScanLines)
	assert.Equal(t, "eth0", cfg.Network.Interface)
	assert.Equal(t, uint64(4096), cfg.Network.ThresholdBytes)

	// Untouched keys keep their defaults
	assert.Equal(t, 600, cfg.BootGraceSeconds)
	assert.Equal(t, 8501, cfg.TCP.Port)
}

func TestLoadUnknownSignal(t *testing.T) {
	path := writeConfig(t, `
signals:
  - access_log
  - crystal_ball
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crystal_ball")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			IdleThresholdSeconds:  3600,
			SampleIntervalSeconds: 60,
			BootGraceSeconds:      600,
			StateFile:             "/run/idlewatch/state.json",
			LockFile:              "/run/idlewatch/idlewatch.pid",
			Signals:               []string{SignalAccessLog},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects non-positive threshold", func(t *testing.T) {
		cfg := valid()
		cfg.IdleThresholdSeconds = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		cfg := valid()
		cfg.SampleIntervalSeconds = -5
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects negative boot grace", func(t *testing.T) {
		cfg := valid()
		cfg.BootGraceSeconds = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects empty signal set", func(t *testing.T) {
		cfg := valid()
		cfg.Signals = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects empty state file", func(t *testing.T) {
		cfg := valid()
		cfg.StateFile = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestSignalEnabled(t *testing.T) {
	cfg := &Config{Signals: []string{SignalAccessLog, SignalLoginSessions}}

	assert.True(t, cfg.SignalEnabled(SignalAccessLog))
	assert.True(t, cfg.SignalEnabled(SignalLoginSessions))
	assert.False(t, cfg.SignalEnabled(SignalNetworkBytes))
}
