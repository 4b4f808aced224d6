package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ferventapp/fervent/internal/models"
	"github.com/ferventapp/fervent/internal/output"
)

var (
	timesLabel    string
	timesDays     string
	timesDisabled bool
	timesEnabled  bool
)

var timesCmd = &cobra.Command{
	Use:   "times",
	Short: "Manage scheduled prayer times",
	Long:  "Add, list, update, and remove the recurring times reminders fire at.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timesListRun()
	},
}

var timesAddCmd = &cobra.Command{
	Use:   "add <HH:MM>",
	Short: "Add a prayer time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return timesAddRun(args[0])
	},
}

var timesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List prayer times",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timesListRun()
	},
}

var timesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a prayer time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return timesUpdateRun(cmd, args[0])
	},
}

var timesRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a prayer time",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return timesRemoveRun(args[0])
	},
}

func init() {
	timesAddCmd.Flags().StringVar(&timesLabel, "label", "", "Label shown in the reminder")
	timesAddCmd.Flags().StringVar(&timesDays, "days", "", "Comma-separated weekdays (mon,tue,...); empty = every day")

	timesUpdateCmd.Flags().StringVar(&timesLabel, "label", "", "New label")
	timesUpdateCmd.Flags().StringVar(&timesDays, "days", "", "New weekday set")
	timesUpdateCmd.Flags().BoolVar(&timesEnabled, "enable", false, "Enable the prayer time")
	timesUpdateCmd.Flags().BoolVar(&timesDisabled, "disable", false, "Disable the prayer time")

	timesCmd.AddCommand(timesAddCmd)
	timesCmd.AddCommand(timesListCmd)
	timesCmd.AddCommand(timesUpdateCmd)
	timesCmd.AddCommand(timesRemoveCmd)
	rootCmd.AddCommand(timesCmd)
}

// parseClock parses "HH:MM" into hour and minute.
func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// parseWeekdays parses "mon,wed,fri" into a weekday set.
func parseWeekdays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}

func formatWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return "daily"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = strings.ToLower(d.String()[:3])
	}
	return strings.Join(names, ",")
}

func timesAddRun(clock string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	hour, minute, err := parseClock(clock)
	if err != nil {
		return err
	}
	days, err := parseWeekdays(timesDays)
	if err != nil {
		return err
	}

	existing, err := s.ListPrayerTimes(ctx)
	if err != nil {
		return err
	}

	pt := &models.PrayerTime{
		Hour:     hour,
		Minute:   minute,
		Enabled:  true,
		Weekdays: days,
		Label:    timesLabel,
		Position: len(existing),
	}
	if err := s.CreatePrayerTime(ctx, pt); err != nil {
		return err
	}

	ui.Success("prayer time %s added: %02d:%02d %s", output.Cyan(pt.ID), hour, minute, formatWeekdays(days))
	return nil
}

func timesListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	times, err := s.ListPrayerTimes(ctx)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		ui.Info("no prayer times. Use 'fervent times add HH:MM' to create one.")
		return nil
	}

	now := time.Now()
	table := ui.Table([]string{"ID", "Time", "Days", "Label", "Enabled", "Next"})
	for _, pt := range times {
		next := "-"
		if occ := pt.NextOccurrence(now); !occ.IsZero() {
			next = occ.Format("Mon 15:04")
		}
		enabled := output.Green("yes")
		if !pt.Enabled {
			enabled = output.Red("no")
		}
		table.Append([]string{
			output.Cyan(pt.ID),
			fmt.Sprintf("%02d:%02d", pt.Hour, pt.Minute),
			formatWeekdays(pt.Weekdays),
			pt.Label,
			enabled,
			next,
		})
	}
	table.Render()
	return nil
}

func timesUpdateRun(cmd *cobra.Command, id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	pt, err := s.GetPrayerTime(ctx, id)
	if err != nil {
		return err
	}

	// Changed() rather than a non-empty check, so --label "" clears the
	// label and --days "" resets to every day.
	if cmd.Flags().Changed("label") {
		pt.Label = timesLabel
	}
	if cmd.Flags().Changed("days") {
		days, err := parseWeekdays(timesDays)
		if err != nil {
			return err
		}
		pt.Weekdays = days
	}
	if timesEnabled {
		pt.Enabled = true
	}
	if timesDisabled {
		pt.Enabled = false
	}

	if err := s.UpdatePrayerTime(ctx, pt); err != nil {
		return err
	}
	ui.Success("prayer time %s updated", output.Cyan(pt.ID))
	return nil
}

func timesRemoveRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	if err := s.DeletePrayerTime(context.Background(), id); err != nil {
		return err
	}
	ui.Success("prayer time %s removed", id)
	return nil
}
