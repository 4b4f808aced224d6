package models

import "time"

// Session represents one timed prayer interval from start to termination.
//
// OwnerPID records which process drives the session. Interactive sessions
// carry the PID of the screen that opened them, so a session whose owner is
// gone can be recognized as crashed. Detached sessions (started and finished
// by separate short-lived CLI invocations) carry zero and are never subject
// to crash recovery.
type Session struct {
	ID               string
	ScheduledStart   *time.Time
	StartedAt        *time.Time
	EndedAt          *time.Time
	IntendedDuration time.Duration
	BlockedApps      []string
	Completed        bool
	FocusMode        bool
	OwnerPID         int
}

// Active reports whether the session has started and not yet terminated.
func (s *Session) Active() bool {
	return s.StartedAt != nil && s.EndedAt == nil
}

// ActualDuration returns the elapsed wall time between start and end,
// or zero if either timestamp is missing.
func (s *Session) ActualDuration() time.Duration {
	if s.StartedAt == nil || s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(*s.StartedAt)
}
