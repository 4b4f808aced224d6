package models

import "time"

// Settings holds user preferences. A single row, persisted on every mutation.
type Settings struct {
	DefaultDuration      time.Duration
	FocusModeEnabled     bool
	ShieldEnabled        bool
	NotificationsEnabled bool
	LastActiveSessionID  string // mirrors the current-session slot, for recovery diagnostics
	AppSelection         []byte // opaque blob owned by the shield
	UpdatedAt            time.Time
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() *Settings {
	return &Settings{
		DefaultDuration:      10 * time.Minute,
		NotificationsEnabled: true,
	}
}
