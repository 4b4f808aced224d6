package reflect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ferventapp/fervent/internal/models"
)

func sessionAt(t time.Time, intended, actual time.Duration, completed bool) *models.Session {
	end := t.Add(actual)
	return &models.Session{
		StartedAt:        &t,
		EndedAt:          &end,
		IntendedDuration: intended,
		Completed:        completed,
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("mixed sessions", func(t *testing.T) {
		started := time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)
		sessions := []*models.Session{
			sessionAt(started, 10*time.Minute, 10*time.Minute, true),
			sessionAt(started.Add(-24*time.Hour), 15*time.Minute, 4*time.Minute, false),
		}

		system, user := buildPrompt(sessions)

		assert.Contains(t, system, "Two or three sentences")
		assert.Contains(t, system, "never invent details")

		assert.Contains(t, user, "intended 10 minutes, actual 10 minutes, completed")
		assert.Contains(t, user, "intended 15 minutes, actual 4 minutes, stopped early")
		assert.Contains(t, user, "Write the reflection.")
	})

	t.Run("session without start time", func(t *testing.T) {
		_, user := buildPrompt([]*models.Session{
			{IntendedDuration: 10 * time.Minute},
		})
		assert.Contains(t, user, "unknown time")
	})
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "1 minute", formatMinutes(time.Minute))
	assert.Equal(t, "1 minute", formatMinutes(70*time.Second))
	assert.Equal(t, "5 minutes", formatMinutes(5*time.Minute))
	assert.Equal(t, "0 minutes", formatMinutes(10*time.Second))
}

func TestReflect_NoSessions(t *testing.T) {
	c := NewClient("", "claude-haiku-4-5-20251001")
	_, err := c.Reflect(context.Background(), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no sessions")
}
