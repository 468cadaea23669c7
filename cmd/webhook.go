package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/supportbot/internal/actions"
	"github.com/danielolaszy/supportbot/internal/config"
	"github.com/danielolaszy/supportbot/internal/jira"
	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/internal/webhook"
)

func newWebhookCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Inspect JIRA webhook deliveries",
	}
	cmd.AddCommand(newWebhookReplayCmd(cfg))
	return cmd
}

func newWebhookReplayCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <file.json>",
		Short: "Run a saved webhook payload through the pipeline",
		Long: `Run a saved JIRA webhook payload through classification, mock execution
and message formatting, printing the outcome and the notification text.
Nothing is sent; notifications go to the log.

Example:
  supportbot webhook replay testdata/cst-57.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}

			payload, err := webhook.DecodePayload(body)
			if err != nil {
				return err
			}

			opts := webhook.Options{
				BrowseURL: cfg.Jira.BrowseURL,
				Executor:  actions.NewMockExecutor(cfg.ProductName, nil),
			}
			client, err := newJiraClient(cfg)
			switch {
			case errors.Is(err, jira.ErrNotConfigured):
				logging.Debug("jira not configured, using default rejection comment")
			case err != nil:
				return err
			default:
				opts.Comments = client
			}

			result, err := webhook.NewProcessor(opts).Process(commandContext(cmd), payload)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Outcome: %s\n", result.Outcome)
			if result.Outcome != webhook.OutcomeProcessed {
				return nil
			}
			fmt.Fprintf(out, "Ticket: %s\n", result.Issue.Key)
			fmt.Fprintf(out, "Transition: %s -> %s\n", result.Change.FromStatus, result.Change.ToStatus)
			fmt.Fprintf(out, "Classification: %s\n", result.Classification)
			fmt.Fprintf(out, "\n%s\n", result.Message)
			return nil
		},
	}
}
