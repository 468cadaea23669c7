package actions

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielolaszy/supportbot/internal/dateparse"
	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/pkg/models"
)

// DefaultProductName is used in reports when no product name is configured.
const DefaultProductName = "MontyCloud"

// Executor carries out an approved request for a ticket.
type Executor interface {
	Execute(ctx context.Context, issue models.IssueInfo) Result
}

// Result is the outcome of one execution.
type Result struct {
	Action models.ActionType

	// Succeeded is false for unknown actions
	Succeeded bool

	// Report is the human-readable completion report
	Report string
}

// MockExecutor simulates the backend actions that follow an approval.
type MockExecutor struct {
	productName string
	dates       *dateparse.Parser
}

// NewMockExecutor creates a mock executor. An empty productName selects DefaultProductName.
func NewMockExecutor(productName string, dates *dateparse.Parser) *MockExecutor {
	if productName == "" {
		productName = DefaultProductName
	}
	if dates == nil {
		dates = dateparse.New()
	}
	return &MockExecutor{productName: productName, dates: dates}
}

// Execute dispatches on the issue's action type. Parameters are read from the
// issue description with ExtractTaskParameters.
func (e *MockExecutor) Execute(ctx context.Context, issue models.IssueInfo) Result {
	params := ExtractTaskParameters(issue.Description)
	email := orPlaceholder(issue.CustomerEmail)

	logging.Info("executing approved task",
		"ticket", issue.Key,
		"action", issue.ActionType,
		"customer", email)

	var report string
	switch issue.ActionType {
	case models.ActionApproveSignup:
		report = e.approveSignup(email, params, issue.Key)
	case models.ActionExtendTrial:
		report = e.extendTrial(email, params, issue.Key)
	case models.ActionEnableBetaFeatures:
		report = e.enableBetaFeatures(email, params, issue.Key)
	case models.ActionUpgradeSubscription:
		report = e.upgradeSubscription(email, params, issue.Key)
	default:
		logging.Warn("unknown action type", "ticket", issue.Key, "action", issue.ActionType)
		return Result{
			Action: issue.ActionType,
			Report: fmt.Sprintf("❌ Unknown action type: %s", issue.ActionType),
		}
	}

	logging.Info("approved task completed", "ticket", issue.Key, "action", issue.ActionType)
	return Result{Action: issue.ActionType, Succeeded: true, Report: report}
}

func (e *MockExecutor) approveSignup(email string, params models.TaskParameters, ticketKey string) string {
	company := valueOr(params.CompanyName, "Not specified")
	subscription := valueOr(params.SubscriptionType, "trial")

	return fmt.Sprintf(`✅ **CUSTOMER SIGNUP APPROVED & ACTIVATED**

📧 **Customer**: %s
🏢 **Company**: %s
📋 **Subscription**: %s
🎫 **Ticket**: %s

**Actions Completed:**
• Customer account activated
• Initial subscription setup: %s
• Welcome email sent to customer
• Account provisioning completed

🎉 **Customer is now ready to use %s services!**`,
		email, company, title(subscription), ticketKey, subscription, e.productName)
}

func (e *MockExecutor) extendTrial(email string, params models.TaskParameters, ticketKey string) string {
	endDate := valueOr(params.EndDate, "Not specified")
	if params.EndDate != "" {
		if d, err := e.dates.Parse(params.EndDate); err == nil {
			endDate = d.String()
		} else {
			logging.Debug("keeping unparsed end date", "ticket", ticketKey, "end_date", params.EndDate, "error", err)
		}
	}

	return fmt.Sprintf(`✅ **TRIAL PERIOD EXTENDED**

📧 **Customer**: %s
📅 **New End Date**: %s
🎫 **Ticket**: %s

**Actions Completed:**
• Trial period extended successfully
• Customer notified via email
• Account settings updated
• New expiration date set

🎉 **Customer can continue using %s services!**`,
		email, endDate, ticketKey, e.productName)
}

func (e *MockExecutor) enableBetaFeatures(email string, params models.TaskParameters, ticketKey string) string {
	featureList := "• Features not specified"
	if params.HasFeatures() {
		lines := make([]string, 0, len(params.Features))
		for _, f := range params.Features {
			lines = append(lines, "• "+f)
		}
		featureList = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`✅ **BETA FEATURES ENABLED**

📧 **Customer**: %s
🚀 **Features Enabled**:
%s
🎫 **Ticket**: %s

**Actions Completed:**
• Beta features activated for customer account
• Feature flags updated in system
• Customer notified of new capabilities
• Documentation links shared

🎉 **Customer can now access the requested beta features!**`,
		email, featureList, ticketKey)
}

func (e *MockExecutor) upgradeSubscription(email string, params models.TaskParameters, ticketKey string) string {
	current := valueOr(params.CurrentPlan, "trial")
	target := valueOr(params.SubscriptionType, "enterprise")

	return fmt.Sprintf(`✅ **SUBSCRIPTION UPGRADED**

📧 **Customer**: %s
📊 **Upgrade**: %s → %s
🎫 **Ticket**: %s

**Actions Completed:**
• Subscription plan upgraded successfully
• Billing updated to new plan
• Additional features unlocked
• Customer notified of upgrade
• New service limits applied

🎉 **Customer now has access to %s features!**`,
		email, title(current), title(target), ticketKey, target)
}

// orPlaceholder renders an unknown value as "N/A".
func orPlaceholder(s string) string {
	return valueOr(s, "N/A")
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}
