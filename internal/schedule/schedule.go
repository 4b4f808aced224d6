// Package schedule turns PrayerTime records into reminder deliveries.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/ferventapp/fervent/internal/models"
	"github.com/ferventapp/fervent/internal/notify"
	"github.com/ferventapp/fervent/internal/output"
)

// Trigger is one upcoming reminder instant.
type Trigger struct {
	Time  *models.PrayerTime
	Fires time.Time
}

// NextTriggers computes the next occurrence of each enabled prayer time at
// or after now, ordered soonest first. Disabled times are skipped.
func NextTriggers(times []*models.PrayerTime, now time.Time) []Trigger {
	var triggers []Trigger
	for _, pt := range times {
		fires := pt.NextOccurrence(now)
		if fires.IsZero() {
			continue
		}
		triggers = append(triggers, Trigger{Time: pt, Fires: fires})
	}
	// Insertion sort; the list is a handful of entries.
	for i := 1; i < len(triggers); i++ {
		for j := i; j > 0 && triggers[j].Fires.Before(triggers[j-1].Fires); j-- {
			triggers[j], triggers[j-1] = triggers[j-1], triggers[j]
		}
	}
	return triggers
}

// TimeLister is the subset of the store the runner needs.
type TimeLister interface {
	ListPrayerTimes(ctx context.Context) ([]*models.PrayerTime, error)
}

// Runner delivers reminders as their trigger instants arrive.
type Runner struct {
	store    TimeLister
	notifier notify.Notifier
	ui       *output.UI
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a reminder runner.
func NewRunner(s TimeLister, n notify.Notifier, ui *output.UI) *Runner {
	return &Runner{
		store:    s,
		notifier: n,
		ui:       ui,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run loops until the context is cancelled: reload prayer times, sleep to
// the earliest trigger, deliver. Delivery is best effort; a failed reminder
// is logged and does not abort the ones after it.
func (r *Runner) Run(ctx context.Context) error {
	for {
		times, err := r.store.ListPrayerTimes(ctx)
		if err != nil {
			return fmt.Errorf("list prayer times: %w", err)
		}

		now := r.now()
		triggers := NextTriggers(times, now)
		if len(triggers) == 0 {
			// Nothing scheduled; poll again in a while in case times change.
			if err := r.sleep(ctx, time.Minute); err != nil {
				return err
			}
			continue
		}

		next := triggers[0]
		if err := r.sleep(ctx, next.Fires.Sub(now)); err != nil {
			return err
		}

		// Deliver every trigger due at this instant.
		for _, tr := range triggers {
			if tr.Fires.After(next.Fires) {
				break
			}
			if err := r.deliver(ctx, tr); err != nil {
				r.ui.Warning("reminder %s failed: %v", tr.Time.ID, err)
			}
		}
	}
}

func (r *Runner) deliver(ctx context.Context, tr Trigger) error {
	title := tr.Time.Label
	if title == "" {
		title = "Time to pray"
	}
	body := fmt.Sprintf("Scheduled for %02d:%02d. Open fervent to begin.", tr.Time.Hour, tr.Time.Minute)
	return r.notifier.Notify(ctx, title, body)
}
