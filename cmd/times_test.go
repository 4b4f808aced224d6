package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferventapp/fervent/internal/models"
	"github.com/ferventapp/fervent/internal/output"
	"github.com/ferventapp/fervent/internal/store"
)

func TestParseClock(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		hour, minute, err := parseClock("07:30")
		require.NoError(t, err)
		assert.Equal(t, 7, hour)
		assert.Equal(t, 30, minute)

		hour, minute, err = parseClock("23:59")
		require.NoError(t, err)
		assert.Equal(t, 23, hour)
		assert.Equal(t, 59, minute)

		hour, minute, err = parseClock("0:00")
		require.NoError(t, err)
		assert.Equal(t, 0, hour)
		assert.Equal(t, 0, minute)
	})

	t.Run("invalid", func(t *testing.T) {
		cases := []string{"", "7", "7:", ":30", "24:00", "12:60", "ab:cd", "-1:30"}
		for _, c := range cases {
			_, _, err := parseClock(c)
			assert.Error(t, err, "should reject %q", c)
		}
	})
}

func TestParseWeekdays(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		days, err := parseWeekdays("mon,wed,fri")
		require.NoError(t, err)
		assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, days)
	})

	t.Run("case and spaces", func(t *testing.T) {
		days, err := parseWeekdays("Sun, SAT")
		require.NoError(t, err)
		assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, days)
	})

	t.Run("empty means daily", func(t *testing.T) {
		days, err := parseWeekdays("")
		require.NoError(t, err)
		assert.Nil(t, days)
	})

	t.Run("unknown day", func(t *testing.T) {
		_, err := parseWeekdays("mon,funday")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "funday")
	})
}

func TestFormatWeekdays(t *testing.T) {
	assert.Equal(t, "daily", formatWeekdays(nil))
	assert.Equal(t, "mon,wed,fri", formatWeekdays([]time.Weekday{time.Monday, time.Wednesday, time.Friday}))
	assert.Equal(t, "sun", formatWeekdays([]time.Weekday{time.Sunday}))
}

func TestTimesUpdate_ExplicitEmptyClears(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	dataStore = s
	t.Cleanup(func() { dataStore = nil })
	ui = output.New()

	ctx := context.Background()
	pt := &models.PrayerTime{
		Hour:     7,
		Minute:   0,
		Enabled:  true,
		Weekdays: []time.Weekday{time.Monday},
		Label:    "morning",
	}
	require.NoError(t, s.CreatePrayerTime(ctx, pt))

	// --label "" clears the label, --days "" resets to every day.
	require.NoError(t, timesUpdateCmd.Flags().Set("label", ""))
	require.NoError(t, timesUpdateCmd.Flags().Set("days", ""))
	require.NoError(t, timesUpdateRun(timesUpdateCmd, pt.ID))

	got, err := s.GetPrayerTime(ctx, pt.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Label)
	assert.Empty(t, got.Weekdays)
}

func TestTimesUpdate_UnsetFlagsLeaveFields(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	dataStore = s
	t.Cleanup(func() { dataStore = nil })
	ui = output.New()

	ctx := context.Background()
	pt := &models.PrayerTime{
		Hour:     7,
		Minute:   0,
		Enabled:  true,
		Weekdays: []time.Weekday{time.Friday},
		Label:    "friday dawn",
	}
	require.NoError(t, s.CreatePrayerTime(ctx, pt))

	// A command whose flags were never touched changes nothing.
	fresh := &cobra.Command{Use: "update"}
	fresh.Flags().StringVar(&timesLabel, "label", "", "")
	fresh.Flags().StringVar(&timesDays, "days", "", "")
	require.NoError(t, timesUpdateRun(fresh, pt.ID))

	got, err := s.GetPrayerTime(ctx, pt.ID)
	require.NoError(t, err)
	assert.Equal(t, "friday dawn", got.Label)
	assert.Equal(t, []time.Weekday{time.Friday}, got.Weekdays)
}
