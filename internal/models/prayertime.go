package models

import "time"

// PrayerTime is a recurring scheduled prayer reminder.
// An empty Weekdays set means every day.
type PrayerTime struct {
	ID        string
	Hour      int // 0-23
	Minute    int // 0-59
	Enabled   bool
	Weekdays  []time.Weekday
	Label     string
	Position  int // order within the settings list
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RepeatsOn reports whether the prayer time fires on the given weekday.
func (p *PrayerTime) RepeatsOn(d time.Weekday) bool {
	if len(p.Weekdays) == 0 {
		return true
	}
	for _, w := range p.Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// NextOccurrence returns the next instant strictly after now when this
// prayer time fires, in now's location. Returns the zero time if disabled.
func (p *PrayerTime) NextOccurrence(now time.Time) time.Time {
	if !p.Enabled {
		return time.Time{}
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), p.Hour, p.Minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	// At most a week until the next matching weekday.
	for i := 0; i < 7; i++ {
		if p.RepeatsOn(candidate.Weekday()) {
			return candidate
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
	return time.Time{}
}
