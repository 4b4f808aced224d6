//go:build windows

package daemon

import (
	"fmt"
	"os"
	"syscall"
)

// ProcessAlive reports whether a process with the given PID exists.
// On Windows, FindProcess always succeeds, so check with a zero signal.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// IsRunning checks if the PID file exists and the recorded process is alive.
func (r *Record) IsRunning() (int, bool) {
	pid, err := r.PID()
	if err != nil {
		return 0, false
	}
	return pid, ProcessAlive(pid)
}

// Stop terminates the recorded daemon process. Windows has no SIGTERM
// delivery, so os.Kill is the only reliable option.
func (r *Record) Stop() error {
	pid, err := r.PID()
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	return proc.Signal(os.Kill)
}
