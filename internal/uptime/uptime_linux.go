//go:build linux

package uptime

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Host returns how long the host has been up, from /proc/uptime.
func Host() (time.Duration, error) {
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0, err
	}
	return parse(string(data))
}

// parse reads the first field of /proc/uptime content (seconds with
// fractional part).
func parse(content string) (time.Duration, error) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty uptime content")
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("bad uptime value %q: %w", fields[0], err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
