package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/danielolaszy/supportbot/internal/actions"
	"github.com/danielolaszy/supportbot/internal/dateparse"
	"github.com/danielolaszy/supportbot/internal/jira"
	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/internal/notify"
	"github.com/danielolaszy/supportbot/pkg/models"
)

// conversationRequest registers a conversation. When Request is present a
// ticket is opened first and the conversation is registered under its key.
type conversationRequest struct {
	Key       string       `json:"key"`
	ChannelID string       `json:"channel_id"`
	Request   *cardRequest `json:"request,omitempty"`
}

// cardRequest is the value submitted by an interactive card.
type cardRequest struct {
	Action  string            `json:"action"`
	Email   string            `json:"email"`
	Details map[string]string `json:"details"`
}

type conversationResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	URL    string `json:"url,omitempty"`
}

// ConversationsHandler stores conversation references.
type ConversationsHandler struct {
	directory *notify.Directory
	tickets   TicketCreator
	dates     *dateparse.Parser
}

// NewConversationsHandler creates the registration endpoint. tickets may be nil.
func NewConversationsHandler(directory *notify.Directory, tickets TicketCreator, dates *dateparse.Parser) *ConversationsHandler {
	return &ConversationsHandler{directory: directory, tickets: tickets, dates: dates}
}

func (h *ConversationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req conversationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	channel := strings.TrimSpace(req.ChannelID)
	if channel == "" {
		writeError(w, http.StatusBadRequest, "channel_id is required")
		return
	}

	resp := conversationResponse{Status: "registered", Key: strings.TrimSpace(req.Key)}

	if req.Request != nil {
		if h.tickets == nil {
			writeError(w, http.StatusServiceUnavailable, "ticket creation is not configured")
			return
		}

		action, err := actions.NormalizeRequest(models.ActionRequest{
			Action:  models.ParseActionType(req.Request.Action),
			Email:   req.Request.Email,
			Source:  models.SourceCardValue,
			Details: req.Request.Details,
		}, h.dates)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		key, url, err := h.tickets.CreateTicket(r.Context(), jira.TicketRequest{
			Action:  action.Action,
			Email:   action.Email,
			Details: action.Details,
		})
		if err != nil {
			logging.Error("failed to create ticket", "request_id", requestID(r.Context()), "error", err)
			writeError(w, http.StatusBadGateway, "failed to create ticket")
			return
		}
		resp.Key, resp.URL = key, url
	}

	ep := notify.Endpoint{ConversationID: channel, Channel: channel, Source: "api"}
	if err := h.directory.Register(resp.Key, ep); err != nil {
		if errors.Is(err, notify.ErrInvalidEndpoint) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Processing failed")
		return
	}

	logging.Info("registered conversation", "key", resp.Key, "channel", channel)
	writeJSON(w, http.StatusCreated, resp)
}
