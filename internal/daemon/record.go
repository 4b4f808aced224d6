// Package daemon tracks the reminder daemon process through a PID file.
package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Record manages the reminder daemon's PID file.
type Record struct {
	Path string
}

// NewRecord creates a Record for the given PID file path.
func NewRecord(path string) *Record {
	return &Record{Path: path}
}

// Acquire writes the current process's PID, refusing if another reminder
// daemon is still alive.
func (r *Record) Acquire() error {
	if pid, running := r.IsRunning(); running {
		return fmt.Errorf("reminder daemon already running (pid %d)", pid)
	}
	return r.WritePID(os.Getpid())
}

// WritePID writes the given PID to the file.
func (r *Record) WritePID(pid int) error {
	return os.WriteFile(r.Path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// PID reads the recorded PID.
func (r *Record) PID() (int, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file content: %w", err)
	}
	return pid, nil
}

// Release deletes the PID file.
func (r *Record) Release() error {
	return os.Remove(r.Path)
}
