package sampler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/houseplanner/idlewatch/internal/config"
)

// NetBytesSampler watches the RX+TX byte counters of the primary network
// interface and reports active when the delta between consecutive samples
// exceeds a threshold. Noisy (background chatter counts), so it is a
// fallback for hosts with no application-level log.
type NetBytesSampler struct {
	iface     string
	threshold uint64
	sysNet    string

	baseline    uint64
	hasBaseline bool
}

// NewNetBytesSampler creates a byte-counter sampler. An empty iface
// auto-detects the first non-loopback interface.
func NewNetBytesSampler(iface string, threshold uint64) *NetBytesSampler {
	return &NetBytesSampler{
		iface:     iface,
		threshold: threshold,
		sysNet:    "/sys/class/net",
	}
}

// Name implements Sampler.
func (s *NetBytesSampler) Name() string {
	return config.SignalNetworkBytes
}

// Sample implements Sampler. The first sample after start establishes the
// baseline and reports inactive; a missing interface reports inactive.
func (s *NetBytesSampler) Sample(now time.Time) Result {
	iface := s.iface
	if iface == "" {
		detected, err := s.detectInterface()
		if err != nil {
			return Result{Reason: fmt.Sprintf("no usable interface: %v", err)}
		}
		iface = detected
	}

	total, err := s.readCounters(iface)
	if err != nil {
		return Result{Reason: fmt.Sprintf("counters unreadable for %s: %v", iface, err)}
	}

	if !s.hasBaseline {
		s.baseline = total
		s.hasBaseline = true
		return Result{Reason: fmt.Sprintf("baseline recorded for %s", iface)}
	}

	var delta uint64
	if total >= s.baseline {
		delta = total - s.baseline
	}
	// Counter went backwards (interface reset); treat as no traffic and
	// re-baseline.
	s.baseline = total

	if delta > s.threshold {
		return Result{
			Active: true,
			Reason: fmt.Sprintf("%d bytes on %s since last sample", delta, iface),
		}
	}
	return Result{Reason: fmt.Sprintf("%d bytes on %s since last sample", delta, iface)}
}

// detectInterface picks the first non-loopback interface under /sys/class/net.
func (s *NetBytesSampler) detectInterface() (string, error) {
	entries, err := os.ReadDir(s.sysNet)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == "lo" {
			continue
		}
		return name, nil
	}
	return "", fmt.Errorf("no non-loopback interface in %s", s.sysNet)
}

// readCounters returns rx_bytes + tx_bytes for the interface.
func (s *NetBytesSampler) readCounters(iface string) (uint64, error) {
	var total uint64
	for _, counter := range []string{"rx_bytes", "tx_bytes"} {
		path := filepath.Join(s.sysNet, iface, "statistics", counter)
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		value, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad %s value: %w", counter, err)
		}
		total += value
	}
	return total, nil
}
