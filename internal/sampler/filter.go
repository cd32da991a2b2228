package sampler

import (
	"fmt"
	"net"
	"strings"
)

// ProbeFilter classifies access-log traffic that originates from
// infrastructure rather than a human: load-balancer health checks, CDN edge
// fetches, loopback requests. Without this exclusion the health checker
// touches the log every few seconds and the monitor never observes idleness.
type ProbeFilter struct {
	userAgents []string
	sources    []*net.IPNet
}

// NewProbeFilter builds a filter from user-agent substrings and source
// CIDRs. Bare IPs are accepted and treated as single-host networks.
func NewProbeFilter(userAgents, sources []string) (*ProbeFilter, error) {
	filter := &ProbeFilter{userAgents: userAgents}

	for _, spec := range sources {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		if !strings.Contains(spec, "/") {
			ip := net.ParseIP(spec)
			if ip == nil {
				return nil, fmt.Errorf("invalid ignore source %q", spec)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			spec = fmt.Sprintf("%s/%d", spec, bits)
		}

		_, network, err := net.ParseCIDR(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore source %q: %w", spec, err)
		}
		filter.sources = append(filter.sources, network)
	}

	return filter, nil
}

// Infrastructure reports whether a log line should be excluded from activity
// detection. line is the raw log entry; source is its client address (may be
// nil when the line had no parseable address).
func (f *ProbeFilter) Infrastructure(line string, source net.IP) bool {
	if source != nil {
		if source.IsLoopback() {
			return true
		}
		for _, network := range f.sources {
			if network.Contains(source) {
				return true
			}
		}
	}

	for _, ua := range f.userAgents {
		if ua != "" && strings.Contains(line, ua) {
			return true
		}
	}

	return false
}
