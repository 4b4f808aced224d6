package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ferventapp/fervent/internal/output"
	"github.com/ferventapp/fervent/internal/session"
)

var (
	sessionDuration time.Duration
	sessionFocus    bool
	sessionBlock    bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the current session without the interactive screen",
	Long: `Scriptable session lifecycle: start, amen (complete), cancel, show.
The same single-session rules apply as in the interactive screen.`,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionStartRun()
	},
}

var sessionAmenCmd = &cobra.Command{
	Use:   "amen",
	Short: "Complete the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionFinishRun(true)
	},
}

var sessionCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionFinishRun(false)
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionShowRun()
	},
}

func init() {
	sessionStartCmd.Flags().DurationVarP(&sessionDuration, "duration", "d", 0, "Intended session length (default from settings)")
	sessionStartCmd.Flags().BoolVar(&sessionFocus, "focus", false, "Mark the session as a focus-mode session")
	sessionStartCmd.Flags().BoolVar(&sessionBlock, "block", false, "Engage the distraction shield")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionAmenCmd)
	sessionCmd.AddCommand(sessionCancelCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}

func sessionStartRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	mgr := session.NewManager(s)
	recoverOnLaunch(ctx, s, mgr)

	sh := newShield(s)
	var apps []string
	if sessionBlock {
		if apps, err = sh.Selection(ctx); err != nil {
			return err
		}
	}

	sess, err := mgr.Start(ctx, session.StartOptions{
		Duration:    sessionDuration,
		BlockedApps: apps,
		FocusMode:   sessionFocus,
	})
	if err != nil {
		return err
	}

	if sessionBlock {
		if err := sh.Engage(ctx, apps); err != nil {
			// Denied shield is a notice; the session runs without it.
			ui.Warning("shield unavailable: %v", err)
		} else {
			ui.Success("shield engaged")
		}
	}

	ui.Success("session %s started (%s)", output.Cyan(sess.ID), output.Duration(sess.IntendedDuration))
	return nil
}

func sessionFinishRun(complete bool) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	mgr := session.NewManager(s)
	sess, err := mgr.Current(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		ui.Info("no active session")
		return nil
	}

	if complete {
		sess, err = mgr.Complete(ctx)
	} else {
		sess, err = mgr.Cancel(ctx)
	}
	if err != nil {
		return err
	}

	// Shield force-clear at session end, regardless of how it was engaged.
	newShield(s).EmergencyRelease(ctx)

	if complete {
		ui.Success("amen — %s recorded (%s)", output.Cyan(sess.ID), output.Duration(sess.ActualDuration()))
	} else {
		ui.Warning("session %s cancelled after %s", sess.ID, output.Duration(sess.ActualDuration()))
	}
	return nil
}

func sessionShowRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	sess, err := session.NewManager(s).Current(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		ui.Info("no active session")
		return nil
	}

	elapsed := time.Duration(0)
	if sess.StartedAt != nil {
		elapsed = time.Since(*sess.StartedAt)
	}
	ui.Info("session %s · %s of %s · focus=%v · %d blocked app(s)",
		output.Cyan(sess.ID), output.Duration(elapsed),
		output.Duration(sess.IntendedDuration), sess.FocusMode, len(sess.BlockedApps))
	return nil
}
