// Package jira wraps the JIRA REST API for customer-support tickets.
package jira

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielolaszy/supportbot/internal/config"
	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/pkg/models"
)

// InitialStatus is applied to new tickets when the workflow allows it.
const InitialStatus = "Pending"

var (
	// ErrNotConfigured is returned when JIRA credentials are missing.
	ErrNotConfigured = errors.New("jira client not configured")
	// ErrNoTransition is returned when the workflow has no transition to the requested status.
	ErrNoTransition = errors.New("no transition found for status")
)

// TicketRequest describes a ticket to open for a customer action.
type TicketRequest struct {
	Action  models.ActionType
	Email   string
	Details map[string]string
}

// ticketTemplate maps an action onto ticket fields.
type ticketTemplate struct {
	title    string
	priority string
	label    string
}

var templates = map[models.ActionType]ticketTemplate{
	models.ActionApproveSignup:       {title: "Customer Signup Approval", priority: "P1", label: "customer-onboarding"},
	models.ActionExtendTrial:         {title: "Trial Extension Request", priority: "P2", label: "trial-extension"},
	models.ActionEnableBetaFeatures:  {title: "Beta Features Enablement", priority: "P3", label: "feature-enablement"},
	models.ActionUpgradeSubscription: {title: "Subscription Upgrade", priority: "P1", label: "subscription-upgrade"},
}

var fallbackTemplate = ticketTemplate{title: "Customer Support Request", priority: "P2", label: "customer-support"}

func templateFor(action models.ActionType) ticketTemplate {
	if t, ok := templates[action]; ok {
		return t
	}
	return fallbackTemplate
}

// Label returns the ticket label used for action.
func Label(action models.ActionType) string {
	return templateFor(action).label
}

// BrowseURL returns the human-facing link of a ticket.
func BrowseURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/browse/" + key
}

// Client handles interactions with the JIRA API
type Client struct {
	client      *jira.Client
	projectKey  string
	browseURL   string
	productName string
	now         func() time.Time
}

// NewClient creates a new JIRA client from cfg.
func NewClient(cfg config.JiraConfig, productName string) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error creating JIRA client: %w", err)
	}

	browse := cfg.BrowseURL
	if browse == "" {
		browse = cfg.URL
	}
	projectKey := cfg.ProjectKey
	if projectKey == "" {
		projectKey = "CST"
	}
	if productName == "" {
		productName = "MontyCloud"
	}

	logging.Debug("jira client created",
		"url", cfg.URL,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token),
		"project", projectKey)

	return &Client{
		client:      client,
		projectKey:  projectKey,
		browseURL:   browse,
		productName: productName,
		now:         time.Now,
	}, nil
}

// CreateTicket opens a ticket for req and returns its key and browse URL.
// The new ticket is moved to InitialStatus when possible; failing that is only logged.
func (c *Client) CreateTicket(ctx context.Context, req TicketRequest) (string, string, error) {
	tmpl := templateFor(req.Action)

	issue := &jira.Issue{
		Fields: &jira.IssueFields{
			Project:     jira.Project{Key: c.projectKey},
			Summary:     fmt.Sprintf("%s - %s", tmpl.title, req.Email),
			Description: c.buildDescription(req),
			Type:        jira.IssueType{Name: "Task"},
			Priority:    &jira.Priority{Name: tmpl.priority},
			Labels:      []string{tmpl.label, "customer-support", "automated"},
		},
	}

	logging.Debug("creating jira ticket", "project", c.projectKey, "action", req.Action, "email", req.Email)

	created, resp, err := c.client.Issue.CreateWithContext(ctx, issue)
	if err != nil {
		return "", "", fmt.Errorf("failed to create JIRA ticket: %w%s", err, statusSuffix(resp))
	}

	url := BrowseURL(c.browseURL, created.Key)
	logging.Info("created jira ticket", "ticket", created.Key, "action", req.Action)

	if err := c.UpdateTicketStatus(ctx, created.Key, InitialStatus, "Ticket created and set to pending status"); err != nil {
		logging.Warn("could not set initial status", "ticket", created.Key, "status", InitialStatus, "error", err)
	}

	return created.Key, url, nil
}

// UpdateTicketStatus adds comment (when non-empty) and transitions key to status.
// The transition is matched on its target status name, ignoring case.
func (c *Client) UpdateTicketStatus(ctx context.Context, key, status, comment string) error {
	if comment != "" {
		if _, resp, err := c.client.Issue.AddCommentWithContext(ctx, key, &jira.Comment{Body: comment}); err != nil {
			logging.Warn("failed to add comment", "ticket", key, "error", err, "status_code", statusCode(resp))
		}
	}

	transitions, resp, err := c.client.Issue.GetTransitionsWithContext(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get transitions for %s: %w%s", key, err, statusSuffix(resp))
	}

	var transitionID string
	for _, t := range transitions {
		if strings.EqualFold(t.To.Name, status) {
			transitionID = t.ID
			break
		}
	}
	if transitionID == "" {
		return fmt.Errorf("%w: %s (ticket %s)", ErrNoTransition, status, key)
	}

	resp, err = c.client.Issue.DoTransitionWithContext(ctx, key, transitionID)
	if err != nil {
		return fmt.Errorf("failed to transition %s to %s: %w%s", key, status, err, statusSuffix(resp))
	}

	logging.Info("updated ticket status", "ticket", key, "status", status)
	return nil
}

// TicketStatus returns the name of the ticket's current status.
func (c *Client) TicketStatus(ctx context.Context, key string) (string, error) {
	issue, resp, err := c.client.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{Fields: "status"})
	if err != nil {
		return "", fmt.Errorf("failed to get ticket %s: %w%s", key, err, statusSuffix(resp))
	}
	if issue.Fields == nil || issue.Fields.Status == nil {
		return "", fmt.Errorf("ticket %s has no status", key)
	}
	return issue.Fields.Status.Name, nil
}

// LatestComment returns the body of the most recent comment on key.
func (c *Client) LatestComment(ctx context.Context, key string) (string, error) {
	issue, resp, err := c.client.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{Fields: "comment"})
	if err != nil {
		return "", fmt.Errorf("failed to get comments for %s: %w%s", key, err, statusSuffix(resp))
	}
	if issue.Fields == nil || issue.Fields.Comments == nil || len(issue.Fields.Comments.Comments) == 0 {
		return "No comments found on this ticket.", nil
	}

	comments := issue.Fields.Comments.Comments
	return strings.TrimSpace(comments[len(comments)-1].Body), nil
}

// buildDescription renders the ticket body. Detail lines use "Key: Value" so
// the webhook side can read them back.
func (c *Client) buildDescription(req TicketRequest) string {
	titler := cases.Title(language.English)

	lines := []string{
		fmt.Sprintf("Automated ticket created by %s Customer Support Bot", c.productName),
		"",
		"Action: " + titler.String(strings.ReplaceAll(string(req.Action), "_", " ")),
		"Customer Email: " + req.Email,
		"Timestamp: " + c.now().Format("2006-01-02 15:04:05"),
		"",
		"Details:",
	}

	keys := make([]string, 0, len(req.Details))
	for k, v := range req.Details {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("- %s: %s", titler.String(strings.ReplaceAll(k, "_", " ")), req.Details[k]))
	}

	lines = append(lines,
		"",
		"Status: Pending processing",
		"",
		"This ticket was automatically created and requires manual review and processing.")

	return strings.Join(lines, "\n")
}

func statusCode(resp *jira.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

func statusSuffix(resp *jira.Response) string {
	if code := statusCode(resp); code != 0 {
		return fmt.Sprintf(" (status: %d)", code)
	}
	return ""
}
