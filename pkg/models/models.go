// Package models defines data structures shared across the application.
package models

import (
	"strings"
)

// ActionType identifies one of the customer-support operations the bot fronts for.
type ActionType string

const (
	ActionApproveSignup       ActionType = "approve_signup"
	ActionExtendTrial         ActionType = "extend_trial"
	ActionEnableBetaFeatures  ActionType = "enable_beta_features"
	ActionUpgradeSubscription ActionType = "upgrade_subscription"
	ActionUnknown             ActionType = "unknown"
)

// KnownActions lists every supported action in a stable order.
var KnownActions = []ActionType{
	ActionApproveSignup,
	ActionExtendTrial,
	ActionEnableBetaFeatures,
	ActionUpgradeSubscription,
}

// ParseActionType maps a free-form identifier onto an ActionType.
// Dashes are accepted in place of underscores. Anything unrecognised is ActionUnknown.
func ParseActionType(s string) ActionType {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, a := range KnownActions {
		if string(a) == normalized {
			return a
		}
	}
	return ActionUnknown
}

// Title returns the human-readable request name used in notifications.
func (a ActionType) Title() string {
	switch a {
	case ActionApproveSignup:
		return "Customer Signup Approval"
	case ActionExtendTrial:
		return "Trial Extension"
	case ActionEnableBetaFeatures:
		return "Beta Features Enablement"
	case ActionUpgradeSubscription:
		return "Subscription Upgrade"
	default:
		return "Customer Request"
	}
}

// IssueInfo is the normalized view of the ticket carried by one webhook delivery.
type IssueInfo struct {
	// Key is the ticket identifier (e.g. "CST-123"). Never empty for an accepted payload.
	Key string

	// Summary is the ticket's summary line
	Summary string

	// Description is the plain-text description, flattened from rich text when needed
	Description string

	// AssigneeEmail is empty when the ticket is unassigned
	AssigneeEmail string

	// CustomerEmail is inferred from the summary or description, empty if unknown
	CustomerEmail string

	// ActionType is inferred from labels first, then summary keywords
	ActionType ActionType

	// Labels attached to the ticket
	Labels []string

	// URL is the browse link for the ticket
	URL string
}

// StatusChange is a status transition recorded in a webhook change log.
type StatusChange struct {
	FromStatus string
	ToStatus   string
	ChangedBy  string
	Timestamp  string
}

// TaskParameters holds the loosely extracted "Key: Value" parameters of a ticket.
// Every field is optional; absence is reported by the zero value.
type TaskParameters struct {
	CompanyName      string
	EndDate          string
	Features         []string
	SubscriptionType string
	CurrentPlan      string
}

// HasFeatures reports whether any features were extracted.
func (p TaskParameters) HasFeatures() bool {
	return len(p.Features) > 0
}

// ParameterSource tags where the parameters of an ActionRequest came from.
type ParameterSource string

const (
	// SourceCardValue marks parameters submitted through an interactive card.
	SourceCardValue ParameterSource = "card_value"
	// SourceFreeText marks parameters parsed from free text.
	SourceFreeText ParameterSource = "free_text"
)

// ActionRequest is the single normalized envelope for a user-initiated action.
// It is resolved once at the boundary so handlers never re-probe the raw input.
type ActionRequest struct {
	Action  ActionType
	Email   string
	Source  ParameterSource
	Details map[string]string
}
