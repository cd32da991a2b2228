package sampler

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/houseplanner/idlewatch/internal/config"
)

// clfTimestamp is the bracketed timestamp layout of common log format
// entries, e.g. [21/Aug/2026:14:03:27 +0000].
const clfTimestamp = "02/Jan/2006:15:04:05 -0700"

// maxLineBytes bounds how much of the log tail is read per sample; at 512
// bytes per line even generous access-log entries fit.
const maxLineBytes = 512

// LogScanSampler is the authoritative activity signal: it tails the
// reverse-proxy access log, parses each entry's embedded timestamp, drops
// infrastructure probes, and reports active if any real request falls inside
// the activity window.
type LogScanSampler struct {
	path      string
	scanLines int
	window    time.Duration
	filter    *ProbeFilter
}

// NewLogScanSampler creates a log content scanner. window is how far back an
// entry may be and still count as activity; the monitor passes the idle
// threshold here.
func NewLogScanSampler(path string, scanLines int, window time.Duration, filter *ProbeFilter) *LogScanSampler {
	return &LogScanSampler{
		path:      path,
		scanLines: scanLines,
		window:    window,
		filter:    filter,
	}
}

// Name implements Sampler.
func (s *LogScanSampler) Name() string {
	return config.SignalAccessLog
}

// Sample implements Sampler. A missing or unreadable log reports inactive.
func (s *LogScanSampler) Sample(now time.Time) Result {
	lines, err := tailLines(s.path, s.scanLines)
	if err != nil {
		return Result{Reason: fmt.Sprintf("access log unreadable: %v", err)}
	}

	// Newest entries last; walk backwards so the common case (recent
	// activity) exits after one or two lines.
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		ts, ok := parseEntryTime(line)
		if !ok {
			continue
		}

		age := now.Sub(ts)
		if age < 0 {
			// Clock skew; ignore the entry but keep scanning.
			continue
		}
		if age >= s.window {
			// Entries are appended in order; once one is too old,
			// everything before it is too.
			break
		}

		if s.filter.Infrastructure(line, parseSourceIP(line)) {
			continue
		}

		return Result{
			Active: true,
			Reason: fmt.Sprintf("request from %s %s ago", firstField(line), age.Round(time.Second)),
		}
	}

	return Result{Reason: "no non-probe requests in window"}
}

// tailLines returns up to n trailing lines of the file at path, reading a
// bounded chunk from the end rather than the whole file.
func tailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	readSize := int64(n) * maxLineBytes
	offset := info.Size() - readSize
	if offset < 0 {
		offset = 0
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	// Discard the first line when we started mid-file: it is almost
	// certainly a partial entry.
	if offset > 0 && len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// parseEntryTime extracts the bracketed CLF timestamp from a log line.
func parseEntryTime(line string) (time.Time, bool) {
	open := strings.IndexByte(line, '[')
	if open < 0 {
		return time.Time{}, false
	}
	end := strings.IndexByte(line[open:], ']')
	if end < 0 {
		return time.Time{}, false
	}

	ts, err := time.Parse(clfTimestamp, line[open+1:open+end])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// parseSourceIP extracts the client address from the first field of a common
// log format line. Returns nil when the field is not an address.
func parseSourceIP(line string) net.IP {
	return net.ParseIP(firstField(line))
}

func firstField(line string) string {
	if i := strings.IndexByte(line, ' '); i > 0 {
		return line[:i]
	}
	return line
}
