package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/supportbot/internal/actions"
	"github.com/danielolaszy/supportbot/internal/config"
	"github.com/danielolaszy/supportbot/internal/dateparse"
	"github.com/danielolaszy/supportbot/internal/jira"
	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/internal/notify"
	"github.com/danielolaszy/supportbot/internal/server"
	"github.com/danielolaszy/supportbot/internal/webhook"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Long: `Start the HTTP server that receives JIRA webhooks and Slack events.

Endpoints:
  POST /webhook/jira        JIRA issue-update webhook
  GET  /webhook/health      liveness check
  POST /slack/events        Slack Events API (registers conversations)
  POST /api/conversations   register a conversation, optionally opening a ticket

Example:
  supportbot serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := buildServer(cfg)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SERVER_ADDR)")
	return cmd
}

// buildServer wires the configured collaborators into an HTTP server.
func buildServer(cfg *config.Config) (*server.Server, error) {
	dates := dateparse.New()
	directory := notify.NewDirectory()

	for _, channel := range cfg.Slack.Channels {
		if err := directory.Register(channel, notify.Endpoint{ConversationID: channel, Source: "config"}); err != nil {
			return nil, fmt.Errorf("failed to register channel %q: %w", channel, err)
		}
	}

	sender := newSender(cfg.Slack)

	opts := webhook.Options{
		BrowseURL: cfg.Jira.BrowseURL,
		Executor:  actions.NewMockExecutor(cfg.ProductName, dates),
		Directory: directory,
		Sender:    sender,
	}
	if cfg.Webhook.DedupWindow > 0 {
		opts.Deduper = webhook.NewDeduper(cfg.Webhook.DedupWindow, nil)
	}

	deps := server.Deps{
		Directory:          directory,
		Dates:              dates,
		SlackSigningSecret: cfg.Slack.SigningSecret,
	}

	jiraClient, err := newJiraClient(cfg)
	switch {
	case errors.Is(err, jira.ErrNotConfigured):
		logging.Warn("jira is not configured, rejection comments and ticket creation are disabled", "error", err)
	case err != nil:
		return nil, err
	default:
		opts.Comments = jiraClient
		deps.Tickets = jiraClient
	}

	deps.Processor = webhook.NewProcessor(opts)

	logging.Info("server configured",
		"addr", cfg.Server.Addr,
		"channels", directory.Len(),
		"slack", cfg.Slack.BotToken != "",
		"jira", jiraClient != nil,
		"dedup_window", cfg.Webhook.DedupWindow)

	return server.New(cfg.Server.Addr, deps), nil
}

// newSender posts to Slack when a bot token is set and logs otherwise.
// A missing signing secret leaves /slack/events unverified.
func newSender(slack config.SlackConfig) notify.Sender {
	if err := config.ValidateSlackConfig(slack); err != nil {
		logging.Warn("slack is not fully configured", "error", err)
	}
	if slack.BotToken == "" {
		return notify.LogSender{}
	}
	return notify.NewSlackSender(slack.BotToken)
}

func newJiraClient(cfg *config.Config) (*jira.Client, error) {
	return jira.NewClient(cfg.Jira, cfg.ProductName)
}

// commandContext returns the command's context, or Background when it has none.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
