package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ferventapp/fervent/internal/output"
	"github.com/ferventapp/fervent/internal/session"
	"github.com/ferventapp/fervent/internal/shield"
	"github.com/ferventapp/fervent/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "fervent",
	Short: "Fervent - a prayer timer for the terminal",
	Long: `fervent times prayer sessions, schedules reminders, keeps a shield
over distracting apps while you pray, and records your history.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/fervent/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "fervent")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FERVENT")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "fervent")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "fervent.db"))
	viper.SetDefault("shield.block_cmd", "")
	viper.SetDefault("shield.unblock_cmd", "")
	viper.SetDefault("pushover.token", "")
	viper.SetDefault("pushover.user", "")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	// The store is initialized lazily, only when commands actually need it.
	// This lets config/version commands run without a db.
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// newShield builds the shield controller from configured block commands.
func newShield(s store.Store) *shield.Controller {
	blockCmd := viper.GetString("shield.block_cmd")
	unblockCmd := viper.GetString("shield.unblock_cmd")
	if blockCmd == "" && unblockCmd == "" {
		return shield.NewController(s, shield.Noop{})
	}
	return shield.NewController(s, &shield.ExecEnforcer{BlockCmd: blockCmd, UnblockCmd: unblockCmd})
}

// recoverOnLaunch cancels a session whose owning interactive process died,
// and force-clears the shield if that session had engaged it. Detached
// sessions and sessions with a living owner pass through untouched, so
// status and scriptable commands observe a live session instead of
// destroying it.
func recoverOnLaunch(ctx context.Context, s store.Store, mgr *session.Manager) {
	result, err := mgr.RecoverFromCrash(ctx)
	if err != nil {
		ui.Warning("crash recovery: %v", err)
		return
	}
	if result.Recovered == nil {
		return
	}

	ui.Warning("previous session %s was interrupted and has been recorded as cancelled", result.Recovered.ID)
	if result.ReleaseShield {
		newShield(s).EmergencyRelease(ctx)
	}
}

// rootRun handles `fervent` with no subcommand: today's picture at a glance.
func rootRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	mgr := session.NewManager(s)
	recoverOnLaunch(ctx, s, mgr)

	return statusRun(ctx, s, mgr)
}
