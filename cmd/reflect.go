package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ferventapp/fervent/internal/reflect"
	"github.com/ferventapp/fervent/internal/store"
)

var reflectLimit int

var reflectCmd = &cobra.Command{
	Use:   "reflect",
	Short: "Generate a short reflection on recent sessions",
	Long: `Send recent session history to the Anthropic API and print a brief
written reflection. Requires anthropic.api_key in config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reflectRun()
	},
}

func init() {
	reflectCmd.Flags().IntVar(&reflectLimit, "limit", 14, "How many recent sessions to reflect on")
	rootCmd.AddCommand(reflectCmd)
}

func reflectRun() error {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		return fmt.Errorf("anthropic.api_key not configured; run 'fervent config edit'")
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	sessions, err := s.ListSessions(ctx, store.SessionFilter{Limit: reflectLimit})
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		ui.Info("no sessions to reflect on yet")
		return nil
	}

	client := reflect.NewClient(apiKey, viper.GetString("anthropic.model"))
	text, err := client.Reflect(ctx, sessions)
	if err != nil {
		return err
	}

	fmt.Fprintln(ui.Out, text)
	return nil
}
