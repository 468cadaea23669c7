package webhook

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielolaszy/supportbot/pkg/models"
)

// Classification is the message branch chosen for a status change.
type Classification string

const (
	ClassApproved     Classification = "approved"
	ClassRejected     Classification = "rejected"
	ClassStatusUpdate Classification = "status_update"
)

// DefaultRejectionComment replaces ticket comments that cannot be fetched.
const DefaultRejectionComment = "Please check the JIRA ticket for detailed comments and reasoning."

var (
	approvedStatuses = map[string]bool{"approved": true, "done": true, "completed": true}
	rejectedStatuses = map[string]bool{"rejected": true, "denied": true, "cancelled": true}
)

// Classify maps a target status onto a message branch, ignoring case.
func Classify(toStatus string) Classification {
	status := strings.ToLower(strings.TrimSpace(toStatus))
	switch {
	case approvedStatuses[status]:
		return ClassApproved
	case rejectedStatuses[status]:
		return ClassRejected
	default:
		return ClassStatusUpdate
	}
}

// ApprovalMessage announces an approved request followed by the execution report.
func ApprovalMessage(issue models.IssueInfo, report string) string {
	return fmt.Sprintf(`🎉 **GREAT! REQUEST APPROVED**

✅ **Ticket**: %s
📧 **Customer**: %s
📋 **Request**: %s
🔗 **JIRA Link**: %s

%s`, issue.Key, customer(issue), issue.ActionType.Title(), issue.URL, report)
}

// RejectionMessage announces a rejected request with the reviewer's comments.
func RejectionMessage(issue models.IssueInfo, comments string) string {
	if strings.TrimSpace(comments) == "" {
		comments = DefaultRejectionComment
	}
	title := issue.ActionType.Title()

	return fmt.Sprintf(`❌ **REQUEST REJECTED**

🎫 **Ticket**: %s
📧 **Customer**: %s
📋 **Request**: %s
🔗 **JIRA Link**: %s

The request for %s has been **REJECTED**.

**Comments from JIRA**:
%s

Status: Request denied`, issue.Key, customer(issue), title, issue.URL, strings.ToLower(title), comments)
}

// StatusUpdateMessage reports any other status change.
func StatusUpdateMessage(issue models.IssueInfo, status string) string {
	status = cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(status)))

	return fmt.Sprintf(`📊 **STATUS UPDATE**

🎫 **Ticket**: %s
📧 **Customer**: %s
📋 **Request**: %s
🔄 **New Status**: %s
🔗 **JIRA Link**: %s

The ticket status has been updated to: **%s**`, issue.Key, customer(issue), issue.ActionType.Title(), status, issue.URL, status)
}

func customer(issue models.IssueInfo) string {
	if issue.CustomerEmail == "" {
		return "N/A"
	}
	return issue.CustomerEmail
}
