package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielolaszy/supportbot/internal/actions"
	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/internal/notify"
	"github.com/danielolaszy/supportbot/pkg/models"
)

// Outcome is the terminal state of one delivery.
type Outcome string

const (
	OutcomeIgnored        Outcome = "ignored"
	OutcomeNoStatusChange Outcome = "no_status_change"
	OutcomeProcessed      Outcome = "processed"
)

// CommentSource fetches the latest reviewer comment of a ticket.
type CommentSource interface {
	LatestComment(ctx context.Context, key string) (string, error)
}

// Options configures a Processor. Only BrowseURL is required.
type Options struct {
	BrowseURL string

	// Executor runs approved requests; nil skips execution
	Executor actions.Executor

	// Comments supplies rejection reasons; nil uses DefaultRejectionComment
	Comments CommentSource

	// Directory and Sender deliver notifications; a nil Directory skips delivery
	Directory *notify.Directory
	Sender    notify.Sender

	// Deduper drops repeated transitions; nil keeps every delivery
	Deduper *Deduper
}

// Result describes what a delivery produced.
type Result struct {
	Outcome        Outcome
	Issue          models.IssueInfo
	Change         models.StatusChange
	Classification Classification
	Message        string

	// Execution is set only for approved requests
	Execution *actions.Result

	Delivered int
	Duplicate bool
}

// Processor runs the status-change pipeline for decoded payloads.
type Processor struct {
	opts Options
}

// NewProcessor creates a Processor. A nil Sender logs notifications.
func NewProcessor(opts Options) *Processor {
	if opts.Sender == nil {
		opts.Sender = notify.LogSender{}
	}
	return &Processor{opts: opts}
}

// Process classifies p and, for a status change, formats and delivers the
// notification. ErrMissingIssueKey is the only error caused by the payload.
func (p *Processor) Process(ctx context.Context, payload Payload) (Result, error) {
	event := payload.Event()
	logging.Info("received jira webhook", "event", event)

	if event == "" || (event != IssueUpdatedEvent && !payload.HasChangelog()) {
		logging.Info("ignoring webhook event", "event", event)
		return Result{Outcome: OutcomeIgnored}, nil
	}

	issue, err := ExtractIssueInfo(payload, p.opts.BrowseURL)
	if err != nil {
		logging.Warn("could not extract issue information from webhook")
		return Result{}, err
	}

	change, ok := ExtractStatusChange(payload)
	if !ok {
		logging.Info("no status change detected", "ticket", issue.Key)
		return Result{Outcome: OutcomeNoStatusChange, Issue: issue}, nil
	}

	result := Result{
		Outcome:        OutcomeProcessed,
		Issue:          issue,
		Change:         change,
		Classification: Classify(change.ToStatus),
	}

	log := logging.With("ticket", issue.Key, "from", change.FromStatus, "to", change.ToStatus)

	if p.opts.Deduper != nil && p.opts.Deduper.Seen(issue.Key, change) {
		log.Info("duplicate status change, skipping")
		result.Duplicate = true
		return result, nil
	}

	log.Info("processing status change",
		"customer", issue.CustomerEmail,
		"action", issue.ActionType,
		"classification", result.Classification)

	switch result.Classification {
	case ClassApproved:
		report := fmt.Sprintf("✅ Task execution initiated for %s", issue.ActionType)
		if p.opts.Executor != nil {
			exec := p.opts.Executor.Execute(ctx, issue)
			result.Execution = &exec
			report = exec.Report
			log.Info("task execution finished", "succeeded", exec.Succeeded)
		}
		result.Message = ApprovalMessage(issue, report)
	case ClassRejected:
		result.Message = RejectionMessage(issue, p.rejectionComments(ctx, issue.Key))
	default:
		result.Message = StatusUpdateMessage(issue, change.ToStatus)
	}

	result.Delivered = p.deliver(ctx, issue.Key, result.Message)
	return result, nil
}

func (p *Processor) rejectionComments(ctx context.Context, key string) string {
	if p.opts.Comments == nil {
		return DefaultRejectionComment
	}
	comment, err := p.opts.Comments.LatestComment(ctx, key)
	if err != nil {
		logging.Warn("failed to fetch rejection comments", "ticket", key, "error", err)
		return DefaultRejectionComment
	}
	return comment
}

func (p *Processor) deliver(ctx context.Context, key, text string) int {
	if p.opts.Directory == nil {
		return 0
	}

	delivered, err := p.opts.Directory.Deliver(ctx, p.opts.Sender, key, text)
	switch {
	case errors.Is(err, notify.ErrNoEndpoints):
		logging.Warn("no conversations registered for notification", "ticket", key)
	case errors.Is(err, notify.ErrDeliveryFailed):
		logging.Warn("status change notification not delivered", "ticket", key, "error", err)
	case err != nil:
		logging.Error("notification delivery failed", "ticket", key, "error", err)
	default:
		logging.Info("status change notification sent", "ticket", key, "delivered", delivered)
	}
	return delivered
}
