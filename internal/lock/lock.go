// Package lock implements the host-wide singleton guard for the monitor.
// Mutual exclusion comes from an advisory flock on the PID file, which the
// kernel releases automatically when the holder dies, so a crashed monitor
// can never permanently block the next invocation.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// ErrHeld is returned when a live monitor instance already holds the lock.
// Callers treat it as a successful no-op, not a failure.
var ErrHeld = errors.New("another instance holds the lock")

// Guard is an acquired singleton lock. The underlying file handle stays open
// for the lifetime of the process to keep the flock held; Release it on every
// exit path.
type Guard struct {
	path  string
	token string
	file  *os.File
}

// Acquire claims the singleton lock at path. On contention it returns
// ErrHeld. A stale PID file whose flock is free (previous holder dead) is
// reclaimed silently.
func Acquire(path string) (*Guard, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if pid, _ := Holder(path); pid > 0 {
			return nil, fmt.Errorf("%w (pid %d)", ErrHeld, pid)
		}
		return nil, ErrHeld
	}

	// Lock acquired: whatever was recorded before belongs to a dead
	// process. Record our own identity.
	token := uuid.NewString()
	if err := f.Truncate(0); err != nil {
		releaseFile(f)
		return nil, fmt.Errorf("failed to truncate lock file: %w", err)
	}
	if _, err := f.WriteAt([]byte(fmt.Sprintf("%d:%s", os.Getpid(), token)), 0); err != nil {
		releaseFile(f)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	return &Guard{path: path, token: token, file: f}, nil
}

// Release drops the lock and removes the PID file, but only when the file
// still carries this guard's token, so a successor's lock file is never
// deleted by a slow predecessor.
func (g *Guard) Release() {
	if g.file != nil {
		releaseFile(g.file)
		g.file = nil
	}

	data, err := os.ReadFile(g.path)
	if err != nil {
		return
	}
	parts := strings.SplitN(strings.TrimSpace(string(data)), ":", 2)
	if len(parts) == 2 && parts[1] == g.token {
		os.Remove(g.path)
	}
}

// Holder reads the PID recorded in the lock file and reports whether that
// process is still alive (signal 0 probe).
func Holder(path string) (pid int, alive bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	parts := strings.SplitN(strings.TrimSpace(string(data)), ":", 2)
	pid, err = strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, unix.Kill(pid, 0) == nil
}

func releaseFile(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	f.Close()
}
