package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ferventapp/fervent/internal/shield"
)

var shieldCmd = &cobra.Command{
	Use:   "shield",
	Short: "Control the distraction shield",
	Long: `Engage or release the block over selected apps. 'panic' force-clears
the shield no matter what state it is in.`,
}

var shieldOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Engage the shield",
	RunE: func(cmd *cobra.Command, args []string) error {
		return shieldOnRun()
	},
}

var shieldOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Release the shield",
	RunE: func(cmd *cobra.Command, args []string) error {
		return shieldOffRun(false)
	},
}

var shieldPanicCmd = &cobra.Command{
	Use:   "panic",
	Short: "Force-clear the shield, ignoring errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return shieldOffRun(true)
	},
}

var shieldStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show shield settings and app selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return shieldStatusRun()
	},
}

var shieldSelectCmd = &cobra.Command{
	Use:   "select <app-id>...",
	Short: "Save the set of apps the shield blocks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return shieldSelectRun(args)
	},
}

var shieldEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Authorize the shield in settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return shieldSetEnabledRun(true)
	},
}

var shieldDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Revoke the shield authorization",
	RunE: func(cmd *cobra.Command, args []string) error {
		return shieldSetEnabledRun(false)
	},
}

func init() {
	shieldCmd.AddCommand(shieldOnCmd)
	shieldCmd.AddCommand(shieldOffCmd)
	shieldCmd.AddCommand(shieldPanicCmd)
	shieldCmd.AddCommand(shieldStatusCmd)
	shieldCmd.AddCommand(shieldSelectCmd)
	shieldCmd.AddCommand(shieldEnableCmd)
	shieldCmd.AddCommand(shieldDisableCmd)
	rootCmd.AddCommand(shieldCmd)
}

func shieldOnRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	sh := newShield(s)
	apps, err := sh.Selection(ctx)
	if err != nil {
		return err
	}

	if err := sh.Engage(ctx, apps); err != nil {
		if err == shield.ErrNotAuthorized {
			ui.Warning("shield is not enabled; run 'fervent shield enable' first")
			return nil
		}
		return err
	}
	ui.Success("shield engaged over %d app(s)", len(apps))
	return nil
}

func shieldOffRun(force bool) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	sh := newShield(s)
	if force {
		sh.EmergencyRelease(ctx)
		ui.Success("shield force-cleared")
		return nil
	}
	if err := sh.Release(ctx); err != nil {
		return err
	}
	ui.Success("shield released")
	return nil
}

func shieldStatusRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	apps := shield.DecodeSelection(settings)

	if settings.ShieldEnabled {
		ui.Success("shield enabled")
	} else {
		ui.Info("shield disabled")
	}
	if len(apps) == 0 {
		ui.Info("no apps selected")
	} else {
		ui.Info("blocking: %s", strings.Join(apps, ", "))
	}
	return nil
}

func shieldSelectRun(apps []string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	if err := newShield(s).SaveSelection(context.Background(), apps); err != nil {
		return err
	}
	ui.Success("%d app(s) selected", len(apps))
	return nil
}

func shieldSetEnabledRun(enabled bool) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	settings.ShieldEnabled = enabled
	if err := s.SaveSettings(ctx, settings); err != nil {
		return err
	}

	if enabled {
		ui.Success("shield enabled")
	} else {
		ui.Success("shield disabled")
	}
	return nil
}
