package webhook

import (
	"strings"

	"github.com/danielolaszy/supportbot/internal/jira"
	"github.com/danielolaszy/supportbot/pkg/models"
)

// actionLabels maps ticket labels onto actions. Labels win over summary keywords.
var actionLabels = map[string]models.ActionType{
	"customer-onboarding":  models.ActionApproveSignup,
	"trial-extension":      models.ActionExtendTrial,
	"feature-enablement":   models.ActionEnableBetaFeatures,
	"subscription-upgrade": models.ActionUpgradeSubscription,
}

// summaryKeywords is checked in order against the lower-cased summary.
var summaryKeywords = []struct {
	phrase string
	action models.ActionType
}{
	{"trial extension", models.ActionExtendTrial},
	{"signup approval", models.ActionApproveSignup},
	{"beta features", models.ActionEnableBetaFeatures},
	{"subscription upgrade", models.ActionUpgradeSubscription},
}

var emailKeys = map[string]bool{
	"customer email": true,
	"email":          true,
	"customer_email": true,
}

// ExtractIssueInfo reads the issue section of p. browseBase is the JIRA site
// used to build the ticket link.
func ExtractIssueInfo(p Payload, browseBase string) (models.IssueInfo, error) {
	issue := object(p, "issue")
	key := strings.TrimSpace(str(issue, "key"))
	if key == "" {
		return models.IssueInfo{}, ErrMissingIssueKey
	}

	fields := object(issue, "fields")
	summary := str(fields, "summary")
	description := FlattenDescription(fields["description"])
	labels := stringList(fields, "labels")

	return models.IssueInfo{
		Key:           key,
		Summary:       summary,
		Description:   description,
		AssigneeEmail: str(object(fields, "assignee"), "emailAddress"),
		CustomerEmail: InferCustomerEmail(summary, description),
		ActionType:    InferActionType(labels, summary),
		Labels:        labels,
		URL:           jira.BrowseURL(browseBase, key),
	}, nil
}

// ExtractStatusChange returns the first changelog item for the status field.
func ExtractStatusChange(p Payload) (models.StatusChange, bool) {
	changelog := object(p, "changelog")
	for _, raw := range list(changelog, "items") {
		item, ok := raw.(map[string]any)
		if !ok || str(item, "field") != "status" {
			continue
		}
		return models.StatusChange{
			FromStatus: str(item, "fromString"),
			ToStatus:   str(item, "toString"),
			ChangedBy:  str(object(p, "user"), "emailAddress"),
			Timestamp:  str(changelog, "created"),
		}, true
	}
	return models.StatusChange{}, false
}

// FlattenDescription returns plain text for a description that is either a
// string or a rich-text document. Text nodes of top-level paragraphs are
// joined with newlines; everything else is dropped.
func FlattenDescription(v any) string {
	switch d := v.(type) {
	case string:
		return d
	case map[string]any:
		var parts []string
		for _, raw := range list(d, "content") {
			block, ok := raw.(map[string]any)
			if !ok || str(block, "type") != "paragraph" {
				continue
			}
			for _, rawNode := range list(block, "content") {
				node, ok := rawNode.(map[string]any)
				if ok && str(node, "type") == "text" {
					parts = append(parts, str(node, "text"))
				}
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

// InferCustomerEmail finds the customer's address, trying in order the
// "<title> - <email>" summary form, a "Customer Email: ..." description line,
// and any address-like word on a description line without a colon.
func InferCustomerEmail(summary, description string) string {
	if parts := strings.Split(summary, " - "); len(parts) > 1 {
		if candidate := strings.TrimSpace(parts[1]); strings.Contains(candidate, "@") {
			return candidate
		}
	}

	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)

		if key, value, found := strings.Cut(line, ":"); found {
			key = strings.ToLower(strings.TrimSpace(key))
			value = strings.TrimSpace(value)
			if emailKeys[key] && strings.Contains(value, "@") {
				return value
			}
			continue
		}

		for _, word := range strings.Fields(line) {
			if looksLikeEmail(word) {
				return word
			}
		}
	}

	return ""
}

func looksLikeEmail(word string) bool {
	_, domain, found := strings.Cut(word, "@")
	return found && strings.Contains(domain, ".")
}

// InferActionType classifies a ticket from its labels, then its summary.
func InferActionType(labels []string, summary string) models.ActionType {
	for _, label := range labels {
		if action, ok := actionLabels[label]; ok {
			return action
		}
	}

	lower := strings.ToLower(summary)
	for _, kw := range summaryKeywords {
		if strings.Contains(lower, kw.phrase) {
			return kw.action
		}
	}

	return models.ActionUnknown
}
