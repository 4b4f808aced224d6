// Package gesture implements the hold-to-finish "Amen" state machine.
//
// Terminals deliver key auto-repeats rather than press/release pairs, so a
// hold is modeled as a stream of Press events: the hold is alive while
// presses keep arriving, and released once a tick observes a gap longer than
// the repeat threshold. Progress is pure transient state, never persisted.
package gesture

import "time"

// State is the gesture's current phase.
type State int

const (
	Idle State = iota
	Pressing
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressing:
		return "pressing"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Hold tracks one hold-to-finish gesture.
type Hold struct {
	holdDuration time.Duration // how long the key must be held
	releaseGap   time.Duration // max gap between repeats before release

	state     State
	pressedAt time.Time // when the current hold began
	lastPress time.Time // most recent press event
	fired     bool      // completion callback delivered

	onComplete func()
}

// NewHold creates a gesture tracker. onComplete fires at most once per hold,
// the first time progress reaches 1.0; it may be nil.
func NewHold(holdDuration, releaseGap time.Duration, onComplete func()) *Hold {
	return &Hold{
		holdDuration: holdDuration,
		releaseGap:   releaseGap,
		onComplete:   onComplete,
	}
}

// State returns the current phase.
func (h *Hold) State() State { return h.state }

// Press records a key press (or auto-repeat) at the given instant.
// The first press transitions Idle to Pressing; presses after completion
// are ignored until Reset.
func (h *Hold) Press(now time.Time) {
	switch h.state {
	case Idle:
		h.state = Pressing
		h.pressedAt = now
		h.lastPress = now
	case Pressing:
		h.lastPress = now
	}
}

// Tick advances the gesture and returns progress in [0,1]. A tick that
// arrives more than the release gap after the last press is a release:
// progress snaps back to 0 and the state returns to Idle.
func (h *Hold) Tick(now time.Time) float64 {
	switch h.state {
	case Completed:
		return 1.0
	case Idle:
		return 0
	}

	if now.Sub(h.lastPress) > h.releaseGap {
		h.state = Idle
		h.pressedAt = time.Time{}
		return 0
	}

	progress := float64(now.Sub(h.pressedAt)) / float64(h.holdDuration)
	if progress >= 1.0 {
		h.state = Completed
		if !h.fired {
			h.fired = true
			if h.onComplete != nil {
				h.onComplete()
			}
		}
		return 1.0
	}
	if progress < 0 {
		return 0
	}
	return progress
}

// Reset returns the gesture to Idle so a new hold can begin.
func (h *Hold) Reset() {
	h.state = Idle
	h.pressedAt = time.Time{}
	h.lastPress = time.Time{}
	h.fired = false
}
