// Package tui provides the Bubble Tea prayer interface.
package tui

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ferventapp/fervent/internal/gesture"
	"github.com/ferventapp/fervent/internal/nav"
	"github.com/ferventapp/fervent/internal/session"
	"github.com/ferventapp/fervent/internal/shield"
)

// Two independent timers drive the prayer screen: a fine tick for gesture
// feedback and the breathing glow, and a coarse tick for the visible clock.
const (
	gestureTickRate = 50 * time.Millisecond
	clockTickRate   = 250 * time.Millisecond

	// amenHold is how long the finish key must be held.
	amenHold = 2 * time.Second

	// repeatGap is the longest silence between key auto-repeats that still
	// counts as a continuous hold.
	repeatGap = 600 * time.Millisecond
)

type gestureTickMsg time.Time
type clockTickMsg time.Time

// StartConfig carries the options the user chose before the TUI opened.
type StartConfig struct {
	Duration    time.Duration
	FocusMode   bool
	UseShield   bool
	BlockedApps []string
}

// Model implements the prayer UI over the navigation coordinator.
type Model struct {
	ctx     context.Context
	manager *session.Manager
	shield  *shield.Controller
	coord   *nav.Coordinator
	hold    *gesture.Hold
	start   StartConfig
	now     func() time.Time // injectable clock for tests

	width  int
	height int

	holdBar  progress.Model
	progress float64 // gesture progress, 0..1

	shieldUp    bool
	shieldNote  string // permission-denied style notices, shown not fatal
	completedAt time.Time
	err         error
}

// NewModel constructs the prayer TUI model, opening on the Home screen.
func NewModel(ctx context.Context, mgr *session.Manager, sh *shield.Controller, cfg StartConfig) *Model {
	return &Model{
		ctx:     ctx,
		manager: mgr,
		shield:  sh,
		coord:   nav.NewCoordinator(),
		hold:    gesture.NewHold(amenHold, repeatGap, nil),
		start:   cfg,
		now:     time.Now,
		holdBar: progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(gestureTick(), clockTick())
}

func gestureTick() tea.Cmd {
	return tea.Tick(gestureTickRate, func(t time.Time) tea.Msg { return gestureTickMsg(t) })
}

func clockTick() tea.Cmd {
	return tea.Tick(clockTickRate, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.holdBar.Width = barWidth(m.width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case gestureTickMsg:
		if m.coord.Screen() == nav.Prayer {
			m.progress = m.hold.Tick(time.Time(msg))
			if m.hold.State() == gesture.Completed {
				m.finishSession()
			}
		}
		return m, gestureTick()

	case clockTickMsg:
		// Re-render the elapsed clock.
		return m, clockTick()

	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit()
	}

	switch m.coord.Screen() {
	case nav.Home:
		switch {
		case msg.Type == tea.KeyEnter:
			m.beginSession()
		case msg.String() == "q":
			return m, tea.Quit
		}

	case nav.Prayer:
		switch {
		case msg.Type == tea.KeyEnter, msg.Type == tea.KeySpace:
			// Key auto-repeat keeps the hold alive.
			m.hold.Press(m.now())
		case msg.String() == "c", msg.String() == "q":
			m.cancelSession()
			if msg.String() == "q" {
				return m, tea.Quit
			}
		}

	case nav.PrayerComplete:
		switch {
		case msg.Type == tea.KeyEnter, msg.String() == "h":
			m.err = m.coord.ReturnHome()
			m.hold.Reset()
			m.progress = 0
		case msg.String() == "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// beginSession creates the session, engages collaborators, and moves to the
// Prayer screen. A denied shield is a notice, never a failure: the session
// proceeds without it.
func (m *Model) beginSession() {
	sess, err := m.manager.Start(m.ctx, session.StartOptions{
		Duration:    m.start.Duration,
		BlockedApps: m.start.BlockedApps,
		FocusMode:   m.start.FocusMode,
		OwnerPID:    os.Getpid(),
	})
	if err != nil {
		m.err = err
		return
	}

	m.shieldNote = ""
	if m.start.UseShield {
		if err := m.shield.Engage(m.ctx, m.start.BlockedApps); err != nil {
			m.shieldNote = "shield unavailable: " + err.Error()
		} else {
			m.shieldUp = true
		}
	}

	m.err = m.coord.StartPrayer(sess)
}

// finishSession terminates the session on a completed Amen gesture and moves
// to the PrayerComplete screen.
func (m *Model) finishSession() {
	sess, err := m.manager.Complete(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	if sess == nil {
		return
	}

	m.releaseShield()
	m.completedAt = m.now()
	m.err = m.coord.CompletePrayer(sess)
}

// cancelSession abandons the session and returns Home.
func (m *Model) cancelSession() {
	if _, err := m.manager.Cancel(m.ctx); err != nil {
		m.err = err
	}
	m.releaseShield()
	m.hold.Reset()
	m.progress = 0
	_ = m.coord.ReturnHome()
}

// quit leaves the app. An in-flight session is cancelled rather than left
// for next-launch recovery, and the shield is force-cleared either way.
func (m *Model) quit() tea.Cmd {
	if m.coord.Screen() == nav.Prayer {
		_, _ = m.manager.Cancel(m.ctx)
	}
	m.shield.EmergencyRelease(m.ctx)
	m.shieldUp = false
	return tea.Quit
}

func (m *Model) releaseShield() {
	if !m.shieldUp {
		return
	}
	if err := m.shield.Release(m.ctx); err != nil {
		m.shieldNote = "shield release failed: " + err.Error()
	}
	m.shieldUp = false
}
