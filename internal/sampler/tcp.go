package sampler

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/houseplanner/idlewatch/internal/config"
)

// tcpEstablished is the TCP_ESTABLISHED state code in /proc/net/tcp.
const tcpEstablished = "01"

// TCPSampler counts established connections to the application port in the
// kernel socket table. A weak corroborating signal: it cannot tell a lingering
// connection from active use.
type TCPSampler struct {
	port   int
	tables []string
}

// NewTCPSampler creates a socket-table sampler for the given local port.
func NewTCPSampler(port int) *TCPSampler {
	return &TCPSampler{
		port:   port,
		tables: []string{"/proc/net/tcp", "/proc/net/tcp6"},
	}
}

// Name implements Sampler.
func (s *TCPSampler) Name() string {
	return config.SignalTCPConnections
}

// Sample implements Sampler. Missing tables (non-Linux hosts, restricted
// /proc) report inactive.
func (s *TCPSampler) Sample(now time.Time) Result {
	total := 0
	readable := false

	for _, table := range s.tables {
		count, err := s.countEstablished(table)
		if err != nil {
			continue
		}
		readable = true
		total += count
	}

	if !readable {
		return Result{Reason: "socket tables unreadable"}
	}
	if total > 0 {
		return Result{
			Active: true,
			Reason: fmt.Sprintf("%d established connection(s) on port %d", total, s.port),
		}
	}
	return Result{Reason: fmt.Sprintf("no established connections on port %d", s.port)}
}

// countEstablished parses one /proc/net/tcp-style table and counts
// ESTABLISHED sockets whose local port matches.
func (s *TCPSampler) countEstablished(table string) (int, error) {
	data, err := os.ReadFile(table)
	if err != nil {
		return 0, err
	}

	count := 0
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		// local_address is hex "ADDR:PORT"
		local := fields[1]
		sep := strings.LastIndexByte(local, ':')
		if sep < 0 {
			continue
		}
		port, err := strconv.ParseUint(local[sep+1:], 16, 32)
		if err != nil {
			continue
		}

		if int(port) == s.port && fields[3] == tcpEstablished {
			count++
		}
	}
	return count, nil
}
