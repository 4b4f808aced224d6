//go:build !windows

package daemon

import (
	"fmt"
	"syscall"
)

// ProcessAlive reports whether a process with the given PID exists.
// Signal 0 tests for existence without sending a signal.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

// IsRunning checks if the PID file exists and the recorded process is alive.
func (r *Record) IsRunning() (int, bool) {
	pid, err := r.PID()
	if err != nil {
		return 0, false
	}
	return pid, ProcessAlive(pid)
}

// Stop sends SIGTERM to the recorded daemon process.
func (r *Record) Stop() error {
	pid, err := r.PID()
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}
	return syscall.Kill(pid, syscall.SIGTERM)
}
