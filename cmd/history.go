package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ferventapp/fervent/internal/output"
	"github.com/ferventapp/fervent/internal/store"
)

var (
	historyToday  bool
	historyFailed bool
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyRun()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show prayer time aggregates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsRun()
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyToday, "today", false, "Only today's sessions")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "Only cancelled sessions")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Max sessions to show (0 = all)")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

func historyRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	sessions, err := s.ListSessions(context.Background(), store.SessionFilter{
		Today:      historyToday,
		FailedOnly: historyFailed,
		Limit:      historyLimit,
	})
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		ui.Info("no sessions recorded yet")
		return nil
	}

	table := ui.Table([]string{"ID", "Started", "Intended", "Actual", "Status", "Focus"})
	for _, sess := range sessions {
		started := "-"
		if sess.StartedAt != nil {
			started = sess.StartedAt.Local().Format("Jan 02 15:04")
		}
		focus := ""
		if sess.FocusMode {
			focus = "✓"
		}
		table.Append([]string{
			output.Cyan(sess.ID),
			started,
			output.Duration(sess.IntendedDuration),
			output.Duration(sess.ActualDuration()),
			output.SessionStatus(false, sess.Completed),
			focus,
		})
	}
	table.Render()
	return nil
}

func statsRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	stats, err := s.SessionStats(context.Background())
	if err != nil {
		return err
	}

	// Cancelled time is shown but kept apart from total prayer time.
	table := ui.Table([]string{"Metric", "Value"})
	table.Append([]string{"Total prayer time", output.Green(output.Duration(stats.TotalPrayerTime))})
	table.Append([]string{"Completed sessions", fmt.Sprintf("%d", stats.CompletedCount)})
	table.Append([]string{"Cancelled sessions", fmt.Sprintf("%d", stats.CancelledCount)})
	table.Append([]string{"Time in cancelled sessions", output.Duration(stats.AttemptedTime)})
	table.Append([]string{"Sessions today", fmt.Sprintf("%d", stats.TodayCount)})
	table.Append([]string{"Current streak", fmt.Sprintf("%d day(s)", stats.CurrentStreak)})
	table.Render()
	return nil
}
