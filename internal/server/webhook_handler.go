package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/internal/webhook"
)

// WebhookHandler receives JIRA issue-update deliveries.
type WebhookHandler struct {
	processor *webhook.Processor
}

// NewWebhookHandler creates the JIRA webhook endpoint.
func NewWebhookHandler(processor *webhook.Processor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logging.With("request_id", requestID(r.Context()))

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	payload, err := webhook.DecodePayload(body)
	switch {
	case errors.Is(err, webhook.ErrEmptyPayload):
		log.Warn("received empty webhook payload")
		writeError(w, http.StatusBadRequest, "Empty payload")
		return
	case err != nil:
		log.Warn("received malformed webhook payload", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.processor.Process(ctx, payload)
	switch {
	case errors.Is(err, webhook.ErrMissingIssueKey):
		writeError(w, http.StatusBadRequest, "Invalid issue data")
		return
	case err != nil:
		log.Error("error processing jira webhook", "error", err)
		writeError(w, http.StatusInternalServerError, "Processing failed")
		return
	}

	log.Info("webhook handled",
		"outcome", result.Outcome,
		"ticket", result.Issue.Key,
		"duplicate", result.Duplicate)
	writeJSON(w, http.StatusOK, map[string]string{"status": string(result.Outcome)})
}

// HealthHandler reports liveness.
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler creates the health endpoint.
func NewHealthHandler(now func() time.Time) *HealthHandler {
	return &HealthHandler{now: now}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
	})
}
