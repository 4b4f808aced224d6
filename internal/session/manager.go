// Package session implements the prayer-session lifecycle: a single current
// session is created at start, mutated in place while active, and terminated
// by exactly one of complete or cancel before entering history.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ferventapp/fervent/internal/daemon"
	"github.com/ferventapp/fervent/internal/models"
	"github.com/ferventapp/fervent/internal/store"
)

// ErrSessionActive is returned by Start when the current-session slot is
// already occupied.
var ErrSessionActive = fmt.Errorf("a session is already active")

// Manager coordinates session lifecycle against the store. It holds no
// session state of its own; the store's slot is the single source of truth.
type Manager struct {
	store store.Store
	now   func() time.Time // injectable clock for tests
	alive func(pid int) bool
}

// NewManager creates a lifecycle manager backed by the given store.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s, now: time.Now, alive: daemon.ProcessAlive}
}

// StartOptions configures a new session.
type StartOptions struct {
	Duration    time.Duration // falls back to Settings.DefaultDuration when zero
	BlockedApps []string
	FocusMode   bool
	OwnerPID    int // 0 = detached; see models.Session
}

// Start creates a fresh session, persists it as current, and records its ID
// in settings. Fails with ErrSessionActive if a session is already active.
func (m *Manager) Start(ctx context.Context, opts StartOptions) (*models.Session, error) {
	current, err := m.store.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("check current session: %w", err)
	}
	if current != nil {
		return nil, ErrSessionActive
	}

	duration := opts.Duration
	if duration <= 0 {
		settings, err := m.store.Settings(ctx)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		duration = settings.DefaultDuration
	}
	if duration <= 0 {
		return nil, fmt.Errorf("intended duration must be positive")
	}

	now := m.now().UTC()
	sess := &models.Session{
		StartedAt:        &now,
		IntendedDuration: duration,
		BlockedApps:      opts.BlockedApps,
		FocusMode:        opts.FocusMode,
		OwnerPID:         opts.OwnerPID,
	}

	if err := m.store.BeginSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return sess, nil
}

// Current returns the active session, or nil if none.
func (m *Manager) Current(ctx context.Context) (*models.Session, error) {
	return m.store.CurrentSession(ctx)
}

// Complete terminates the current session as successfully finished and
// appends it to history. Returns nil (no error) when no session is active.
func (m *Manager) Complete(ctx context.Context) (*models.Session, error) {
	return m.finish(ctx, true)
}

// Cancel terminates the current session as abandoned. The session is still
// appended to history, with Completed = false. Returns nil when no session
// is active.
func (m *Manager) Cancel(ctx context.Context) (*models.Session, error) {
	return m.finish(ctx, false)
}

func (m *Manager) finish(ctx context.Context, completed bool) (*models.Session, error) {
	sess, err := m.store.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("check current session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	now := m.now().UTC()
	sess.EndedAt = &now
	sess.Completed = completed

	if err := m.store.FinishSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}
	return sess, nil
}

// Update applies an in-place edit to the active session and persists it.
// No-op when no session is active.
func (m *Manager) Update(ctx context.Context, mutate func(*models.Session)) error {
	sess, err := m.store.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("check current session: %w", err)
	}
	if sess == nil {
		return nil
	}

	mutate(sess)
	if err := m.store.UpdateCurrentSession(ctx, sess); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// RecoverResult describes what crash recovery found.
type RecoverResult struct {
	Recovered     *models.Session // the cancelled session, nil if slot was empty
	ReleaseShield bool            // caller must release the shield immediately
}

// RecoverFromCrash is invoked at process start. A session whose owning
// process died never received a deliberate completion, so it is cancelled.
// Detached sessions (OwnerPID zero) are finished by a later invocation of
// amen or cancel, and sessions whose owner is still running belong to that
// process; both are left alone. Idempotent: cancelling empties the slot.
func (m *Manager) RecoverFromCrash(ctx context.Context) (*RecoverResult, error) {
	sess, err := m.store.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("check current session: %w", err)
	}
	if sess == nil {
		return &RecoverResult{}, nil
	}
	if sess.OwnerPID == 0 || m.alive(sess.OwnerPID) {
		return &RecoverResult{}, nil
	}

	cancelled, err := m.Cancel(ctx)
	if err != nil {
		return nil, fmt.Errorf("cancel abandoned session: %w", err)
	}

	return &RecoverResult{
		Recovered:     cancelled,
		ReleaseShield: len(cancelled.BlockedApps) > 0 || cancelled.FocusMode,
	}, nil
}
