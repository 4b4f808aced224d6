package cmd

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ferventapp/fervent/internal/daemon"
	"github.com/ferventapp/fervent/internal/notify"
	"github.com/ferventapp/fervent/internal/output"
	"github.com/ferventapp/fervent/internal/schedule"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Deliver prayer-time reminders",
	Long: `Run the reminder loop in the foreground, or inspect and stop a running
one. With pushover credentials configured, reminders are pushed; otherwise
they print to the terminal.`,
}

var remindRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder loop (blocks until interrupted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return remindRunRun()
	},
}

var remindNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show upcoming reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return remindNextRun()
	},
}

var remindStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the reminder loop is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return remindStatusRun()
	},
}

var remindStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running reminder loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return remindStopRun()
	},
}

func init() {
	remindCmd.AddCommand(remindRunCmd)
	remindCmd.AddCommand(remindNextCmd)
	remindCmd.AddCommand(remindStatusCmd)
	remindCmd.AddCommand(remindStopCmd)
	rootCmd.AddCommand(remindCmd)
}

func remindPIDPath() string {
	return filepath.Join(viper.GetString("state_dir"), "remind.pid")
}

// newNotifier picks pushover when configured, terminal output otherwise.
func newNotifier() notify.Notifier {
	token := viper.GetString("pushover.token")
	user := viper.GetString("pushover.user")
	if token != "" && user != "" {
		return notify.NewPushover(token, user)
	}
	return notify.NewTerminal()
}

func remindRunRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	settings, err := s.Settings(context.Background())
	if err != nil {
		return err
	}
	if !settings.NotificationsEnabled {
		ui.Warning("notifications are disabled in settings")
		return nil
	}

	record := daemon.NewRecord(remindPIDPath())
	if err := record.Acquire(); err != nil {
		return err
	}
	defer record.Release()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ui.Info("reminder loop running; ctrl-c to stop")
	runner := schedule.NewRunner(s, newNotifier(), ui)
	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	ui.Info("reminder loop stopped")
	return nil
}

func remindNextRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	times, err := s.ListPrayerTimes(context.Background())
	if err != nil {
		return err
	}
	triggers := schedule.NextTriggers(times, time.Now())
	if len(triggers) == 0 {
		ui.Info("nothing scheduled")
		return nil
	}

	table := ui.Table([]string{"When", "Time", "Label"})
	for _, tr := range triggers {
		label := tr.Time.Label
		if label == "" {
			label = "-"
		}
		table.Append([]string{
			tr.Fires.Format("Mon Jan 02 15:04"),
			output.Cyan(tr.Time.ID),
			label,
		})
	}
	table.Render()
	return nil
}

func remindStatusRun() error {
	record := daemon.NewRecord(remindPIDPath())
	if pid, running := record.IsRunning(); running {
		ui.Success("reminder loop running (pid %d)", pid)
	} else {
		ui.Info("reminder loop not running")
	}
	return nil
}

func remindStopRun() error {
	record := daemon.NewRecord(remindPIDPath())
	pid, running := record.IsRunning()
	if !running {
		ui.Info("reminder loop not running")
		return nil
	}
	if err := record.Stop(); err != nil {
		return err
	}
	ui.Success("sent stop to reminder loop (pid %d)", pid)
	return nil
}
