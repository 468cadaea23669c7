package server

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/internal/notify"
)

var ticketKeyPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)

// SlackEventsHandler registers Slack conversations as notification endpoints.
// A channel that mentions the bot is registered under its channel ID, the
// author's user ID, and every ticket key in the message.
type SlackEventsHandler struct {
	signingSecret string
	directory     *notify.Directory
}

// NewSlackEventsHandler creates the Slack Events API endpoint. An empty
// signingSecret disables request verification.
func NewSlackEventsHandler(signingSecret string, directory *notify.Directory) *SlackEventsHandler {
	return &SlackEventsHandler{signingSecret: signingSecret, directory: directory}
}

func (h *SlackEventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	if h.signingSecret != "" {
		sv, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
		if err != nil {
			logging.Warn("slack request verification failed", "error", err)
			writeError(w, http.StatusUnauthorized, "signature verification failed")
			return
		}
		if _, err := sv.Write(body); err != nil {
			writeError(w, http.StatusInternalServerError, "signature verification failed")
			return
		}
		if err := sv.Ensure(); err != nil {
			logging.Warn("slack signature mismatch", "error", err)
			writeError(w, http.StatusUnauthorized, "signature verification failed")
			return
		}
	}

	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		// Unsupported inner events still get a 200 so Slack does not retry them.
		logging.Debug("ignoring slack event", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge.Challenge))
		return

	case slackevents.CallbackEvent:
		switch ev := event.InnerEvent.Data.(type) {
		case *slackevents.AppMentionEvent:
			if ev.BotID == "" {
				h.register(ev.Channel, ev.User, ev.Text, "slack_mention")
			}
		case *slackevents.MessageEvent:
			if ev.BotID == "" && ev.SubType != "bot_message" {
				h.register(ev.Channel, ev.User, ev.Text, "slack_message")
			}
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *SlackEventsHandler) register(channel, user, text, source string) {
	if channel == "" {
		return
	}
	ep := notify.Endpoint{ConversationID: channel, Channel: channel, Source: source}

	keys := []string{channel}
	if user != "" {
		keys = append(keys, user)
	}
	keys = append(keys, ticketKeyPattern.FindAllString(text, -1)...)

	for _, key := range keys {
		if err := h.directory.Register(key, ep); err != nil {
			logging.Warn("failed to register conversation", "key", key, "error", err)
		}
	}
	logging.Info("registered slack conversation", "channel", channel, "keys", len(keys))
}
