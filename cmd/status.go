package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ferventapp/fervent/internal/output"
	"github.com/ferventapp/fervent/internal/schedule"
	"github.com/ferventapp/fervent/internal/session"
	"github.com/ferventapp/fervent/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's prayer status",
	Long: `Show the active session if one is running, today's sessions, and the
next scheduled prayer time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		ctx := context.Background()
		mgr := session.NewManager(s)
		recoverOnLaunch(ctx, s, mgr)
		return statusRun(ctx, s, mgr)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(ctx context.Context, s store.Store, mgr *session.Manager) error {
	current, err := mgr.Current(ctx)
	if err != nil {
		return err
	}
	if current != nil && current.StartedAt != nil {
		ui.Info("session %s active for %s (intended %s)",
			output.Cyan(current.ID),
			output.Duration(time.Since(*current.StartedAt)),
			output.Duration(current.IntendedDuration))
	}

	stats, err := s.SessionStats(ctx)
	if err != nil {
		return err
	}
	ui.Info("today: %d session(s) · all time: %d completed, %s prayed",
		stats.TodayCount, stats.CompletedCount, output.Duration(stats.TotalPrayerTime))

	times, err := s.ListPrayerTimes(ctx)
	if err != nil {
		return err
	}
	triggers := schedule.NextTriggers(times, time.Now())
	if len(triggers) == 0 {
		ui.Info("no prayer times scheduled. Use 'fervent times add' to create one.")
		return nil
	}

	next := triggers[0]
	label := next.Time.Label
	if label == "" {
		label = "prayer"
	}
	ui.Info("next reminder: %s at %s", output.Cyan(label), next.Fires.Format("Mon 15:04"))
	return nil
}
