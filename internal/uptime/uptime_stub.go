//go:build !linux

package uptime

import (
	"errors"
	"time"
)

// ErrUnsupported is returned on platforms without an uptime source.
var ErrUnsupported = errors.New("host uptime not available on this platform")

// Host returns an error on non-Linux platforms. The monitor treats unknown
// uptime as "past the grace period" so the boot-grace rule can never keep a
// host alive forever.
func Host() (time.Duration, error) {
	return 0, ErrUnsupported
}
