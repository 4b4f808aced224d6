// Package nav holds the screen-level state machine: Home, Prayer, and
// PrayerComplete. It tracks which screen is showing and which session it
// shows; it never touches the store.
package nav

import (
	"fmt"

	"github.com/ferventapp/fervent/internal/models"
)

// Screen identifies the visible screen.
type Screen int

const (
	Home Screen = iota
	Prayer
	PrayerComplete
)

func (s Screen) String() string {
	switch s {
	case Home:
		return "home"
	case Prayer:
		return "prayer"
	case PrayerComplete:
		return "prayer-complete"
	}
	return "unknown"
}

// Coordinator is the app-lifetime navigation state machine. Initial state is
// Home; there is no terminal state.
type Coordinator struct {
	screen  Screen
	session *models.Session
}

// NewCoordinator starts at Home.
func NewCoordinator() *Coordinator {
	return &Coordinator{screen: Home}
}

// Screen returns the current screen.
func (c *Coordinator) Screen() Screen { return c.screen }

// Session returns the session shown by the Prayer or PrayerComplete screen,
// nil when Home.
func (c *Coordinator) Session() *models.Session { return c.session }

// StartPrayer moves Home -> Prayer once the lifecycle manager has created
// the session and collaborators are engaged. A reminder tap lands here too.
func (c *Coordinator) StartPrayer(sess *models.Session) error {
	if c.screen != Home {
		return fmt.Errorf("cannot start prayer from %s", c.screen)
	}
	if sess == nil {
		return fmt.Errorf("cannot start prayer without a session")
	}
	c.screen = Prayer
	c.session = sess
	return nil
}

// CompletePrayer moves Prayer -> PrayerComplete after the session has been
// terminated and collaborators disengaged.
func (c *Coordinator) CompletePrayer(sess *models.Session) error {
	if c.screen != Prayer {
		return fmt.Errorf("cannot complete prayer from %s", c.screen)
	}
	c.screen = PrayerComplete
	c.session = sess
	return nil
}

// ReturnHome moves back to Home from Prayer (cancel) or PrayerComplete
// (explicit return).
func (c *Coordinator) ReturnHome() error {
	if c.screen == Home {
		return fmt.Errorf("already home")
	}
	c.screen = Home
	c.session = nil
	return nil
}
