package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/danielolaszy/supportbot/internal/logging"
)

// SlackSender posts notifications to Slack channels.
type SlackSender struct {
	client *slack.Client
}

// NewSlackSender creates a sender authenticated with a bot token.
func NewSlackSender(token string, options ...slack.Option) *SlackSender {
	return &SlackSender{client: slack.New(token, options...)}
}

// Send posts text to ep.Channel.
func (s *SlackSender) Send(ctx context.Context, ep Endpoint, text string) error {
	_, ts, err := s.client.PostMessageContext(
		ctx,
		ep.Channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("slack: failed to post message (channel=%s): %w", ep.Channel, err)
	}

	logging.Debug("posted slack message", "channel", ep.Channel, "ts", ts)
	return nil
}

// LogSender writes notifications to the log instead of a chat transport.
type LogSender struct{}

// Send logs text at info level. It never fails.
func (LogSender) Send(_ context.Context, ep Endpoint, text string) error {
	logging.Info("notification", "conversation", ep.ConversationID, "channel", ep.Channel, "text", text)
	return nil
}
