package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ferventapp/fervent/internal/session"
	"github.com/ferventapp/fervent/internal/tui"
)

var (
	prayDuration time.Duration
	prayFocus    bool
	prayBlock    bool
)

var prayCmd = &cobra.Command{
	Use:   "pray",
	Short: "Start a prayer session",
	Long: `Open the interactive prayer screen. Press enter to begin; hold enter
to say Amen and finish. The session is timed and recorded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return prayRun()
	},
}

func init() {
	prayCmd.Flags().DurationVarP(&prayDuration, "duration", "d", 0, "Intended session length (default from settings)")
	prayCmd.Flags().BoolVar(&prayFocus, "focus", false, "Mark the session as a focus-mode session")
	prayCmd.Flags().BoolVar(&prayBlock, "block", false, "Engage the distraction shield for the session")
	rootCmd.AddCommand(prayCmd)
}

func prayRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	mgr := session.NewManager(s)
	recoverOnLaunch(ctx, s, mgr)

	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}

	duration := prayDuration
	if duration <= 0 {
		duration = settings.DefaultDuration
	}
	if duration <= 0 {
		return fmt.Errorf("no session duration configured")
	}

	sh := newShield(s)
	cfg := tui.StartConfig{
		Duration:  duration,
		FocusMode: prayFocus || settings.FocusModeEnabled,
		UseShield: prayBlock,
	}
	if prayBlock {
		apps, err := sh.Selection(ctx)
		if err != nil {
			return err
		}
		cfg.BlockedApps = apps
	}

	p := tea.NewProgram(tui.NewModel(ctx, mgr, sh, cfg), tea.WithAltScreen())
	// Shield force-clear at process end is unconditional, even on TUI error.
	defer sh.EmergencyRelease(ctx)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run prayer screen: %w", err)
	}
	return nil
}
