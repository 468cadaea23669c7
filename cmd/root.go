package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/supportbot/internal/config"
	"github.com/danielolaszy/supportbot/internal/logging"
)

// NewRootCmd builds the supportbot command tree.
func NewRootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:   "supportbot",
		Short: "Supportbot turns JIRA ticket decisions into customer notifications",
		Long: `Supportbot receives JIRA issue-update webhooks for customer support tickets,
runs the requested action when a ticket is approved and notifies the registered
conversations about approvals, rejections and other status changes.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv file(s) to read configuration from (default .env)")

	cfg := &config.Config{}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(envFiles...)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		*cfg = *loaded

		return logging.Configure(os.Stderr, logging.Options{
			Level:  logging.LogLevel(cfg.Log.Level),
			Format: logging.Format(cfg.Log.Format),
			File:   cfg.Log.File,
		})
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return logging.Close()
	}

	root.AddCommand(
		newServeCmd(cfg),
		newDateCmd(),
		newTicketCmd(cfg),
		newWebhookCmd(cfg),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
