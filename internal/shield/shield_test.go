package shield

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferventapp/fervent/internal/store"
)

// fakeEnforcer records calls and can be made to fail.
type fakeEnforcer struct {
	blocked    []string
	unblocks   int
	blockErr   error
	unblockErr error
}

func (f *fakeEnforcer) Block(_ context.Context, apps []string) error {
	if f.blockErr != nil {
		return f.blockErr
	}
	f.blocked = apps
	return nil
}

func (f *fakeEnforcer) Unblock(context.Context) error {
	f.unblocks++
	return f.unblockErr
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func enableShield(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	settings.ShieldEnabled = true
	require.NoError(t, s.SaveSettings(ctx, settings))
}

func TestEngage_DeniedWhenDisabled(t *testing.T) {
	s := newTestStore(t)
	enf := &fakeEnforcer{}
	c := NewController(s, enf)

	err := c.Engage(context.Background(), []string{"social"})
	require.ErrorIs(t, err, ErrNotAuthorized)
	assert.False(t, c.Engaged())
	assert.Nil(t, enf.blocked, "enforcer should not run when denied")
}

func TestEngage_Release(t *testing.T) {
	s := newTestStore(t)
	enableShield(t, s)
	enf := &fakeEnforcer{}
	c := NewController(s, enf)
	ctx := context.Background()

	err := c.Engage(ctx, []string{"social", "news"})
	require.NoError(t, err)
	assert.True(t, c.Engaged())
	assert.Equal(t, []string{"social", "news"}, enf.blocked)

	err = c.Release(ctx)
	require.NoError(t, err)
	assert.False(t, c.Engaged())
	assert.Equal(t, 1, enf.unblocks)
}

func TestEngage_EnforcerFailure(t *testing.T) {
	s := newTestStore(t)
	enableShield(t, s)
	enf := &fakeEnforcer{blockErr: fmt.Errorf("helper not running")}
	c := NewController(s, enf)

	err := c.Engage(context.Background(), []string{"social"})
	require.Error(t, err)
	assert.False(t, c.Engaged(), "failed engage should leave shield down")
}

func TestEmergencyRelease_IgnoresErrors(t *testing.T) {
	s := newTestStore(t)
	enableShield(t, s)
	enf := &fakeEnforcer{unblockErr: fmt.Errorf("already gone")}
	c := NewController(s, enf)
	ctx := context.Background()

	require.NoError(t, c.Engage(ctx, nil))
	require.True(t, c.Engaged())

	c.EmergencyRelease(ctx)
	assert.False(t, c.Engaged())
	assert.Equal(t, 1, enf.unblocks)
}

func TestEmergencyRelease_Idempotent(t *testing.T) {
	s := newTestStore(t)
	c := NewController(s, nil)
	ctx := context.Background()

	// Never engaged; releasing must still be safe.
	c.EmergencyRelease(ctx)
	c.EmergencyRelease(ctx)
	assert.False(t, c.Engaged())
}

func TestSelection_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	c := NewController(s, nil)
	ctx := context.Background()

	apps, err := c.Selection(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)

	err = c.SaveSelection(ctx, []string{"social", "video", "games"})
	require.NoError(t, err)

	apps, err = c.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"social", "video", "games"}, apps)
}

func TestDecodeSelection_Garbage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	settings.AppSelection = []byte("not json")
	require.NoError(t, s.SaveSettings(ctx, settings))

	c := NewController(s, nil)
	apps, err := c.Selection(ctx)
	require.NoError(t, err)
	assert.Nil(t, apps, "unreadable selection degrades to empty")
}

func TestNoopEnforcer(t *testing.T) {
	var e Noop
	assert.NoError(t, e.Block(context.Background(), []string{"a"}))
	assert.NoError(t, e.Unblock(context.Background()))
}

func TestExecEnforcer_EmptyCommands(t *testing.T) {
	e := &ExecEnforcer{}
	assert.NoError(t, e.Block(context.Background(), []string{"a"}))
	assert.NoError(t, e.Unblock(context.Background()))
}

func TestExecEnforcer_RunsCommand(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "blocked")
	e := &ExecEnforcer{
		BlockCmd:   "touch " + marker + " #",
		UnblockCmd: "rm " + marker,
	}
	ctx := context.Background()

	require.NoError(t, e.Block(ctx, []string{"social"}))
	require.NoError(t, e.Unblock(ctx))

	// Second unblock fails: the marker is already gone.
	assert.Error(t, e.Unblock(ctx))
}
