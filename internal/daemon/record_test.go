package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remind.pid")
	r := NewRecord(path)

	err := r.WritePID(12345)
	require.NoError(t, err)

	pid, err := r.PID()
	require.NoError(t, err)
	assert.Equal(t, 12345, pid)
}

func TestRecord_Acquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remind.pid")
	r := NewRecord(path)

	err := r.Acquire()
	require.NoError(t, err)

	pid, err := r.PID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRecord_Acquire_AlreadyRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remind.pid")
	r := NewRecord(path)

	// Current process is alive, so a second acquire must refuse.
	require.NoError(t, r.Acquire())

	err := r.Acquire()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestRecord_Acquire_StalePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remind.pid")
	r := NewRecord(path)

	// Use a very high PID that almost certainly doesn't exist.
	require.NoError(t, r.WritePID(999999))

	err := r.Acquire()
	require.NoError(t, err, "stale PID file should be overwritten")

	pid, err := r.PID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRecord_PID_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.pid")
	r := NewRecord(path)

	_, err := r.PID()
	assert.Error(t, err)
}

func TestRecord_PID_InvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-number\n"), 0o644))

	r := NewRecord(path)
	_, err := r.PID()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PID file content")
}

func TestRecord_Release(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remind.pid")
	r := NewRecord(path)

	require.NoError(t, r.WritePID(1))

	err := r.Release()
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRecord_IsRunning_CurrentProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remind.pid")
	r := NewRecord(path)

	require.NoError(t, r.WritePID(os.Getpid()))

	pid, running := r.IsRunning()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRecord_IsRunning_DeadProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remind.pid")
	r := NewRecord(path)

	require.NoError(t, r.WritePID(999999))

	pid, running := r.IsRunning()
	// PID is read regardless.
	assert.Equal(t, 999999, pid)
	assert.False(t, running)
}

func TestRecord_IsRunning_NoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.pid")
	r := NewRecord(path)

	pid, running := r.IsRunning()
	assert.Equal(t, 0, pid)
	assert.False(t, running)
}

func TestRecord_Stop_NoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.pid")
	r := NewRecord(path)

	err := r.Stop()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read PID file")
}
