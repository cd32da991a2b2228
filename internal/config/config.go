package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Signal names accepted in the "signals" list.
const (
	SignalAccessLog      = "access_log"
	SignalAccessLogMtime = "access_log_mtime"
	SignalTCPConnections = "tcp_connections"
	SignalLoginSessions  = "login_sessions"
	SignalNetworkBytes   = "network_bytes"
)

// KnownSignals lists every signal name the sampler layer implements.
var KnownSignals = []string{
	SignalAccessLog,
	SignalAccessLogMtime,
	SignalTCPConnections,
	SignalLoginSessions,
	SignalNetworkBytes,
}

// Config represents the idlewatch configuration
type Config struct {
	IdleThresholdSeconds  int       `mapstructure:"idle_threshold_seconds"`
	SampleIntervalSeconds int       `mapstructure:"sample_interval_seconds"`
	BootGraceSeconds      int       `mapstructure:"boot_grace_seconds"`
	StateFile             string    `mapstructure:"state_file"`
	LockFile              string    `mapstructure:"lock_file"`
	Signals               []string  `mapstructure:"signals"`
	AccessLog             AccessLog `mapstructure:"access_log"`
	TCP                   TCP       `mapstructure:"tcp"`
	Network               Network   `mapstructure:"network"`
}

// AccessLog configures the reverse-proxy log signals
type AccessLog struct {
	Path               string   `mapstructure:"path"`
	ScanLines          int      `mapstructure:"scan_lines"`
	MtimeWindowSeconds int      `mapstructure:"mtime_window_seconds"`
	IgnoreUserAgents   []string `mapstructure:"ignore_user_agents"`
	IgnoreSources      []string `mapstructure:"ignore_sources"`
}

// TCP configures the established-connection signal
type TCP struct {
	Port int `mapstructure:"port"`
}

// Network configures the byte-counter signal
type Network struct {
	Interface      string `mapstructure:"interface"`
	ThresholdBytes uint64 `mapstructure:"threshold_bytes"`
}

// IdleThreshold returns the configured idle limit as a duration.
func (c *Config) IdleThreshold() time.Duration {
	return time.Duration(c.IdleThresholdSeconds) * time.Second
}

// SampleInterval returns the sampling cadence as a duration.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalSeconds) * time.Second
}

// BootGrace returns the post-boot grace window as a duration.
func (c *Config) BootGrace() time.Duration {
	return time.Duration(c.BootGraceSeconds) * time.Second
}

// MtimeWindow returns the log-recency noise window as a duration.
func (a *AccessLog) MtimeWindow() time.Duration {
	return time.Duration(a.MtimeWindowSeconds) * time.Second
}

// SignalEnabled reports whether the named signal is in the enabled set.
func (c *Config) SignalEnabled(name string) bool {
	for _, s := range c.Signals {
		if s == name {
			return true
		}
	}
	return false
}

// Load loads the configuration from /etc/idlewatch/config.yaml (falling back
// to ~/.idlewatch/config.yaml) or returns defaults. An explicit path, when
// non-empty, overrides the search.
func Load(path string) (*Config, error) {
	setDefaults()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/idlewatch")
		if home, err := homedir.Dir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".idlewatch"))
		}

		// Try to read config file, but don't fail if it doesn't exist
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				// Config file was found but another error occurred
				return nil, err
			}
			// Config file not found, use defaults
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("idle_threshold_seconds", 3600)
	viper.SetDefault("sample_interval_seconds", 60)
	viper.SetDefault("boot_grace_seconds", 600)
	viper.SetDefault("state_file", "/run/idlewatch/state.json")
	viper.SetDefault("lock_file", "/run/idlewatch/idlewatch.pid")
	viper.SetDefault("signals", []string{SignalAccessLog, SignalLoginSessions})

	viper.SetDefault("access_log.path", "/var/log/nginx/access.log")
	viper.SetDefault("access_log.scan_lines", 500)
	viper.SetDefault("access_log.mtime_window_seconds", 300)
	viper.SetDefault("access_log.ignore_user_agents", []string{
		"ELB-HealthChecker",
		"Amazon CloudFront",
		"kube-probe",
	})
	viper.SetDefault("access_log.ignore_sources", []string{
		"127.0.0.0/8",
		"::1/128",
	})

	viper.SetDefault("tcp.port", 8501)
	viper.SetDefault("network.interface", "")
	viper.SetDefault("network.threshold_bytes", 1024)
}

// Validate checks the configuration for values the monitor cannot run with.
func (c *Config) Validate() error {
	if c.IdleThresholdSeconds <= 0 {
		return fmt.Errorf("idle_threshold_seconds must be positive, got %d", c.IdleThresholdSeconds)
	}
	if c.SampleIntervalSeconds <= 0 {
		return fmt.Errorf("sample_interval_seconds must be positive, got %d", c.SampleIntervalSeconds)
	}
	if c.BootGraceSeconds < 0 {
		return fmt.Errorf("boot_grace_seconds must not be negative, got %d", c.BootGraceSeconds)
	}
	if len(c.Signals) == 0 {
		return fmt.Errorf("at least one activity signal must be enabled")
	}

	known := make(map[string]bool, len(KnownSignals))
	for _, name := range KnownSignals {
		known[name] = true
	}
	for _, name := range c.Signals {
		if !known[name] {
			return fmt.Errorf("unknown signal %q (known signals: %v)", name, KnownSignals)
		}
	}

	if c.StateFile == "" {
		return fmt.Errorf("state_file must not be empty")
	}
	if c.LockFile == "" {
		return fmt.Errorf("lock_file must not be empty")
	}

	return nil
}

// ConfigDir returns the per-user idlewatch configuration directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".idlewatch"), nil
}
