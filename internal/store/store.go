package store

import (
	"context"
	"time"

	"github.com/ferventapp/fervent/internal/models"
)

// SessionFilter specifies filters for listing history.
type SessionFilter struct {
	Today      bool // only sessions started on the current calendar day
	FailedOnly bool // only sessions with Completed = false
	Limit      int  // 0 = no limit
}

// Stats holds aggregates derived from session history.
type Stats struct {
	TotalPrayerTime time.Duration // completed sessions only
	AttemptedTime   time.Duration // cancelled sessions
	CompletedCount  int
	CancelledCount  int
	TodayCount      int
	CurrentStreak   int // consecutive calendar days with a completed session
}

// Store defines the persistence interface for fervent. It is the sole owner
// of Settings, History, and the current-session slot; every other component
// reads and mutates through it.
type Store interface {
	// Current session slot. At most one session is current at a time; the
	// slot and Settings.LastActiveSessionID move together atomically.
	BeginSession(ctx context.Context, s *models.Session) error
	CurrentSession(ctx context.Context) (*models.Session, error)
	UpdateCurrentSession(ctx context.Context, s *models.Session) error
	FinishSession(ctx context.Context, s *models.Session) error

	// History
	ListSessions(ctx context.Context, filter SessionFilter) ([]*models.Session, error)
	SessionStats(ctx context.Context) (*Stats, error)

	// Prayer times
	CreatePrayerTime(ctx context.Context, pt *models.PrayerTime) error
	GetPrayerTime(ctx context.Context, id string) (*models.PrayerTime, error)
	ListPrayerTimes(ctx context.Context) ([]*models.PrayerTime, error)
	UpdatePrayerTime(ctx context.Context, pt *models.PrayerTime) error
	DeletePrayerTime(ctx context.Context, id string) error

	// Settings
	Settings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
