package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/supportbot/internal/actions"
	"github.com/danielolaszy/supportbot/internal/config"
	"github.com/danielolaszy/supportbot/internal/dateparse"
	"github.com/danielolaszy/supportbot/internal/jira"
	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/pkg/models"
)

func newTicketCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Manage customer support tickets in JIRA",
		Long: `Create and inspect the JIRA tickets that back customer requests.

Requires JIRA_URL, JIRA_USERNAME and JIRA_TOKEN.`,
	}
	cmd.AddCommand(
		newTicketCreateCmd(cfg),
		newTicketStatusCmd(cfg),
		newTicketGetCmd(cfg),
	)
	return cmd
}

func newTicketCreateCmd(cfg *config.Config) *cobra.Command {
	var (
		action  string
		email   string
		details map[string]string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a ticket for a customer request",
		Long: `Open a ticket for a customer request and move it to Pending.

Supported actions: approve_signup, extend_trial, enable_beta_features,
upgrade_subscription. Date details (end_date, trial_end_date, new_end_date)
accept natural-language dates and must lie in the future.

Example:
  supportbot ticket create --action extend_trial --email trial@acmecorp.com \
    --detail end_date="20th July 2025" --detail reason="evaluation"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := actions.NormalizeRequest(models.ActionRequest{
				Action:  models.ParseActionType(action),
				Email:   email,
				Source:  models.SourceFreeText,
				Details: details,
			}, dateparse.New())
			if err != nil {
				return err
			}

			client, err := newJiraClient(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize jira client: %w", err)
			}

			key, url, err := client.CreateTicket(commandContext(cmd), jira.TicketRequest{
				Action:  req.Action,
				Email:   req.Email,
				Details: req.Details,
			})
			if err != nil {
				return err
			}

			logging.Info("ticket created", "ticket", key, "action", req.Action)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", key, url)
			return nil
		},
	}

	cmd.Flags().StringVarP(&action, "action", "a", "", "requested action")
	cmd.Flags().StringVarP(&email, "email", "e", "", "customer email")
	cmd.Flags().StringToStringVarP(&details, "detail", "d", nil, "request detail as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("action")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newTicketStatusCmd(cfg *config.Config) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "status <key> <status>",
		Short: "Transition a ticket to a new status",
		Long: `Transition a ticket to the named status, adding an optional comment first.

Example:
  supportbot ticket status CST-57 Approved --comment "Extended as requested"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			status := strings.Join(args[1:], " ")

			client, err := newJiraClient(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize jira client: %w", err)
			}

			if err := client.UpdateTicketStatus(commandContext(cmd), key, status, comment); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", key, status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "c", "", "comment to add before the transition")
	return cmd
}

func newTicketGetCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show a ticket's status and latest comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			client, err := newJiraClient(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize jira client: %w", err)
			}

			ctx := commandContext(cmd)
			status, err := client.TicketStatus(ctx, key)
			if err != nil {
				return err
			}
			comment, err := client.LatestComment(ctx, key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ticket: %s\n", key)
			fmt.Fprintf(out, "URL: %s\n", jira.BrowseURL(cfg.Jira.BrowseURL, key))
			fmt.Fprintf(out, "Status: %s\n", status)
			fmt.Fprintf(out, "Latest comment: %s\n", comment)
			return nil
		},
	}
}
