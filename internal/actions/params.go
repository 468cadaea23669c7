// Package actions executes approved customer-support requests.
//
// The bundled executor is a mock backend: every handler is a deterministic
// report builder with no external side effects. Real backends satisfy the
// same Executor interface.
package actions

import (
	"strings"

	"github.com/danielolaszy/supportbot/pkg/models"
)

var parameterAliases = map[string]string{
	"company_name": "company_name",
	"company":      "company_name",
	"organization": "company_name",

	"end_date":       "end_date",
	"trial_end_date": "end_date",
	"new_end_date":   "end_date",

	"features":           "features",
	"beta_features":      "features",
	"requested_features": "features",

	"subscription_type": "subscription_type",
	"new_plan":          "subscription_type",
	"target_plan":       "subscription_type",

	"current_plan":         "current_plan",
	"current_subscription": "current_plan",
}

// ExtractTaskParameters scans description lines of the form "Key: Value" and
// returns whatever recognised parameters it finds. It is a best-effort reader:
// unrecognised lines are dropped and missing parameters stay at their zero value.
// Keys are matched case-insensitively with spaces treated as underscores, and a
// leading list marker ("- ") is ignored.
func ExtractTaskParameters(description string) models.TaskParameters {
	var params models.TaskParameters

	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "- "))

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
		value = strings.TrimSpace(value)

		switch parameterAliases[key] {
		case "company_name":
			params.CompanyName = value
		case "end_date":
			params.EndDate = value
		case "features":
			params.Features = splitFeatures(value)
		case "subscription_type":
			params.SubscriptionType = value
		case "current_plan":
			params.CurrentPlan = value
		}
	}

	return params
}

func splitFeatures(value string) []string {
	var features []string
	for _, f := range strings.Split(value, ",") {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	return features
}
