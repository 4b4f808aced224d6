package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ferventapp/fervent/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Session slot + history ---

const sessionColumns = `id, scheduled_start, started_at, ended_at, intended_duration_secs, blocked_apps, completed, focus_mode, owner_pid`

// scanSession scans one session row. A malformed blocked_apps blob degrades
// to an empty list rather than failing the load.
func scanSession(row interface{ Scan(...any) error }) (*models.Session, error) {
	sess := &models.Session{}
	var scheduled, started, ended sql.NullTime
	var durationSecs int64
	var appsJSON string

	err := row.Scan(&sess.ID, &scheduled, &started, &ended, &durationSecs, &appsJSON, &sess.Completed, &sess.FocusMode, &sess.OwnerPID)
	if err != nil {
		return nil, err
	}

	if scheduled.Valid {
		t := scheduled.Time
		sess.ScheduledStart = &t
	}
	if started.Valid {
		t := started.Time
		sess.StartedAt = &t
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	sess.IntendedDuration = time.Duration(durationSecs) * time.Second

	var apps []string
	if err := json.Unmarshal([]byte(appsJSON), &apps); err == nil {
		sess.BlockedApps = apps
	}

	return sess, nil
}

func marshalApps(apps []string) string {
	if len(apps) == 0 {
		return "[]"
	}
	data, err := json.Marshal(apps)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// BeginSession inserts the session as the current one and records its ID in
// settings, atomically. Fails if the slot is already occupied (unique index).
func (s *SQLiteStore) BeginSession(ctx context.Context, sess *models.Session) error {
	if sess.ID == "" {
		sess.ID = newULID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, scheduled_start, started_at, ended_at, intended_duration_secs, blocked_apps, completed, focus_mode, owner_pid, current)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		sess.ID, nullTime(sess.ScheduledStart), nullTime(sess.StartedAt), nullTime(sess.EndedAt),
		int64(sess.IntendedDuration/time.Second), marshalApps(sess.BlockedApps),
		boolToInt(sess.Completed), boolToInt(sess.FocusMode), sess.OwnerPID,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err := setLastActiveTx(ctx, tx, sess.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit begin session: %w", err)
	}
	return nil
}

// CurrentSession returns the session occupying the slot, or nil if none.
func (s *SQLiteStore) CurrentSession(ctx context.Context) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE current = 1`)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get current session: %w", err)
	}
	return sess, nil
}

// UpdateCurrentSession persists in-place edits to the active session.
func (s *SQLiteStore) UpdateCurrentSession(ctx context.Context, sess *models.Session) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET scheduled_start = ?, started_at = ?, ended_at = ?, intended_duration_secs = ?, blocked_apps = ?, completed = ?, focus_mode = ?, owner_pid = ?
		WHERE id = ? AND current = 1`,
		nullTime(sess.ScheduledStart), nullTime(sess.StartedAt), nullTime(sess.EndedAt),
		int64(sess.IntendedDuration/time.Second), marshalApps(sess.BlockedApps),
		boolToInt(sess.Completed), boolToInt(sess.FocusMode), sess.OwnerPID, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update current session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session %s is not current", sess.ID)
	}
	return nil
}

// FinishSession writes the terminated session into history, vacates the
// slot, and clears settings.last_active_session_id, atomically.
func (s *SQLiteStore) FinishSession(ctx context.Context, sess *models.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, completed = ?, focus_mode = ?, blocked_apps = ?, current = 0
		WHERE id = ? AND current = 1`,
		nullTime(sess.EndedAt), boolToInt(sess.Completed), boolToInt(sess.FocusMode),
		marshalApps(sess.BlockedApps), sess.ID,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session %s is not current", sess.ID)
	}

	if err := setLastActiveTx(ctx, tx, ""); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finish session: %w", err)
	}
	return nil
}

// setLastActiveTx updates settings.last_active_session_id inside a tx,
// creating the settings row with defaults if it does not exist yet.
func setLastActiveTx(ctx context.Context, tx *sql.Tx, id string) error {
	def := models.DefaultSettings()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO settings (id, default_duration_secs, focus_mode_enabled, shield_enabled, notifications_enabled, last_active_session_id, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_active_session_id = excluded.last_active_session_id, updated_at = excluded.updated_at`,
		int64(def.DefaultDuration/time.Second), boolToInt(def.FocusModeEnabled),
		boolToInt(def.ShieldEnabled), boolToInt(def.NotificationsEnabled),
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set last active session: %w", err)
	}
	return nil
}

// ListSessions returns terminated sessions, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, filter SessionFilter) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE ended_at IS NOT NULL`
	var args []any
	if filter.FailedOnly {
		query += ` AND completed = 0`
	}
	query += ` ORDER BY started_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		// Calendar-day comparison happens in local time, so it stays in Go.
		if filter.Today && !startedToday(sess) {
			continue
		}
		sessions = append(sessions, sess)
		if filter.Limit > 0 && len(sessions) == filter.Limit {
			break
		}
	}
	return sessions, rows.Err()
}

func startedToday(sess *models.Session) bool {
	if sess.StartedAt == nil {
		return false
	}
	now := time.Now()
	y1, m1, d1 := sess.StartedAt.Local().Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// SessionStats computes history aggregates. Cancelled-session time is kept
// separate from completed prayer time.
func (s *SQLiteStore) SessionStats(ctx context.Context) (*Stats, error) {
	sessions, err := s.ListSessions(ctx, SessionFilter{})
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, sess := range sessions {
		if sess.Completed {
			stats.CompletedCount++
			stats.TotalPrayerTime += sess.ActualDuration()
		} else {
			stats.CancelledCount++
			stats.AttemptedTime += sess.ActualDuration()
		}
		if startedToday(sess) {
			stats.TodayCount++
		}
	}
	stats.CurrentStreak = currentStreak(sessions, time.Now())
	return stats, nil
}

// currentStreak counts consecutive local calendar days with at least one
// completed session, walking back from today. A day with no completion yet
// today does not break the streak; a missed full day does.
func currentStreak(sessions []*models.Session, now time.Time) int {
	prayed := make(map[string]bool)
	for _, sess := range sessions {
		if sess.Completed && sess.StartedAt != nil {
			prayed[sess.StartedAt.Local().Format("2006-01-02")] = true
		}
	}

	day := now
	if !prayed[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for prayed[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// --- Prayer times ---

func marshalWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return "[]"
	}
	ints := make([]int, len(days))
	for i, d := range days {
		ints[i] = int(d)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalWeekdays(s string) []time.Weekday {
	var ints []int
	if err := json.Unmarshal([]byte(s), &ints); err != nil {
		return nil
	}
	days := make([]time.Weekday, 0, len(ints))
	for _, n := range ints {
		if n >= 0 && n <= 6 {
			days = append(days, time.Weekday(n))
		}
	}
	if len(days) == 0 {
		return nil
	}
	return days
}

func (s *SQLiteStore) CreatePrayerTime(ctx context.Context, pt *models.PrayerTime) error {
	if pt.ID == "" {
		pt.ID = newULID()
	}
	now := time.Now().UTC()
	pt.CreatedAt = now
	pt.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prayer_times (id, hour, minute, enabled, weekdays, label, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pt.ID, pt.Hour, pt.Minute, boolToInt(pt.Enabled), marshalWeekdays(pt.Weekdays),
		pt.Label, pt.Position, pt.CreatedAt, pt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create prayer time: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPrayerTime(ctx context.Context, id string) (*models.PrayerTime, error) {
	pt := &models.PrayerTime{}
	var weekdays string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, hour, minute, enabled, weekdays, label, position, created_at, updated_at
		FROM prayer_times WHERE id = ?`, id,
	).Scan(&pt.ID, &pt.Hour, &pt.Minute, &pt.Enabled, &weekdays, &pt.Label, &pt.Position, &pt.CreatedAt, &pt.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prayer time not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get prayer time: %w", err)
	}
	pt.Weekdays = unmarshalWeekdays(weekdays)
	return pt, nil
}

func (s *SQLiteStore) ListPrayerTimes(ctx context.Context) ([]*models.PrayerTime, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hour, minute, enabled, weekdays, label, position, created_at, updated_at
		FROM prayer_times ORDER BY position, hour, minute`)
	if err != nil {
		return nil, fmt.Errorf("list prayer times: %w", err)
	}
	defer rows.Close()

	var times []*models.PrayerTime
	for rows.Next() {
		pt := &models.PrayerTime{}
		var weekdays string
		if err := rows.Scan(&pt.ID, &pt.Hour, &pt.Minute, &pt.Enabled, &weekdays, &pt.Label, &pt.Position, &pt.CreatedAt, &pt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan prayer time: %w", err)
		}
		pt.Weekdays = unmarshalWeekdays(weekdays)
		times = append(times, pt)
	}
	return times, rows.Err()
}

func (s *SQLiteStore) UpdatePrayerTime(ctx context.Context, pt *models.PrayerTime) error {
	pt.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE prayer_times SET hour = ?, minute = ?, enabled = ?, weekdays = ?, label = ?, position = ?, updated_at = ?
		WHERE id = ?`,
		pt.Hour, pt.Minute, boolToInt(pt.Enabled), marshalWeekdays(pt.Weekdays),
		pt.Label, pt.Position, pt.UpdatedAt, pt.ID,
	)
	if err != nil {
		return fmt.Errorf("update prayer time: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("prayer time not found: %s", pt.ID)
	}
	return nil
}

func (s *SQLiteStore) DeletePrayerTime(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prayer_times WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete prayer time: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("prayer time not found: %s", id)
	}
	return nil
}

// --- Settings ---

// Settings returns the singleton settings row. A missing or undecodable row
// falls back to defaults; query failures (closed DB, cancelled context, busy
// database) are real errors and surface to the caller.
func (s *SQLiteStore) Settings(ctx context.Context) (*models.Settings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT default_duration_secs, focus_mode_enabled, shield_enabled, notifications_enabled, last_active_session_id, app_selection, updated_at
		FROM settings WHERE id = 1`)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		return models.DefaultSettings(), nil
	}

	set := &models.Settings{}
	var durationSecs int64
	var appSelection []byte
	err = rows.Scan(&durationSecs, &set.FocusModeEnabled, &set.ShieldEnabled, &set.NotificationsEnabled, &set.LastActiveSessionID, &appSelection, &set.UpdatedAt)
	if err != nil {
		// A corrupt row decodes to defaults, never a failure.
		return models.DefaultSettings(), nil
	}
	set.DefaultDuration = time.Duration(durationSecs) * time.Second
	set.AppSelection = appSelection
	return set, nil
}

// SaveSettings upserts the singleton settings row.
func (s *SQLiteStore) SaveSettings(ctx context.Context, set *models.Settings) error {
	set.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (id, default_duration_secs, focus_mode_enabled, shield_enabled, notifications_enabled, last_active_session_id, app_selection, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			default_duration_secs = excluded.default_duration_secs,
			focus_mode_enabled = excluded.focus_mode_enabled,
			shield_enabled = excluded.shield_enabled,
			notifications_enabled = excluded.notifications_enabled,
			last_active_session_id = excluded.last_active_session_id,
			app_selection = excluded.app_selection,
			updated_at = excluded.updated_at`,
		int64(set.DefaultDuration/time.Second), boolToInt(set.FocusModeEnabled),
		boolToInt(set.ShieldEnabled), boolToInt(set.NotificationsEnabled),
		set.LastActiveSessionID, set.AppSelection, set.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// nullTime converts a *time.Time to a driver-friendly value.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
