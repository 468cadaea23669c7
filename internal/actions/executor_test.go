package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danielolaszy/supportbot/internal/dateparse"
	"github.com/danielolaszy/supportbot/pkg/models"
)

func newTestExecutor() *MockExecutor {
	clock := func() time.Time { return time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC) }
	return NewMockExecutor("", dateparse.NewWithClock(clock))
}

func TestMockExecutorReports(t *testing.T) {
	exec := newTestExecutor()

	tests := []struct {
		name     string
		issue    models.IssueInfo
		contains []string
	}{
		{
			name: "Approve signup with defaults",
			issue: models.IssueInfo{
				Key:           "CST-1",
				CustomerEmail: "new@globex.com",
				ActionType:    models.ActionApproveSignup,
			},
			contains: []string{
				"CUSTOMER SIGNUP APPROVED & ACTIVATED",
				"**Customer**: new@globex.com",
				"**Company**: Not specified",
				"**Subscription**: Trial",
				"Initial subscription setup: trial",
				"**Ticket**: CST-1",
				"ready to use MontyCloud services",
			},
		},
		{
			name: "Extend trial normalizes the end date",
			issue: models.IssueInfo{
				Key:           "CST-57",
				CustomerEmail: "trial@acmecorp.com",
				ActionType:    models.ActionExtendTrial,
				Description:   "End Date: 20th July 2025",
			},
			contains: []string{"TRIAL PERIOD EXTENDED", "**New End Date**: 2025-07-20", "CST-57"},
		},
		{
			name: "Extend trial keeps an unparseable end date",
			issue: models.IssueInfo{
				Key:         "CST-58",
				ActionType:  models.ActionExtendTrial,
				Description: "End Date: end of the quarter",
			},
			contains: []string{"**New End Date**: end of the quarter", "**Customer**: N/A"},
		},
		{
			name: "Extend trial without end date",
			issue: models.IssueInfo{
				Key:        "CST-59",
				ActionType: models.ActionExtendTrial,
			},
			contains: []string{"**New End Date**: Not specified"},
		},
		{
			name: "Enable beta features lists each feature",
			issue: models.IssueInfo{
				Key:         "CST-2",
				ActionType:  models.ActionEnableBetaFeatures,
				Description: "Features: cost explorer, anomaly alerts",
			},
			contains: []string{"BETA FEATURES ENABLED", "• cost explorer\n• anomaly alerts"},
		},
		{
			name: "Enable beta features without features",
			issue: models.IssueInfo{
				Key:        "CST-3",
				ActionType: models.ActionEnableBetaFeatures,
			},
			contains: []string{"• Features not specified"},
		},
		{
			name: "Upgrade subscription with defaults",
			issue: models.IssueInfo{
				Key:        "CST-4",
				ActionType: models.ActionUpgradeSubscription,
			},
			contains: []string{"SUBSCRIPTION UPGRADED", "**Upgrade**: Trial → Enterprise", "access to enterprise features"},
		},
		{
			name: "Upgrade subscription with plans",
			issue: models.IssueInfo{
				Key:         "CST-5",
				ActionType:  models.ActionUpgradeSubscription,
				Description: "Current Plan: starter\nNew Plan: professional",
			},
			contains: []string{"**Upgrade**: Starter → Professional"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := exec.Execute(context.Background(), tt.issue)

			assert.True(t, result.Succeeded)
			assert.Equal(t, tt.issue.ActionType, result.Action)
			for _, want := range tt.contains {
				assert.Contains(t, result.Report, want)
			}
		})
	}
}

func TestMockExecutorUnknownAction(t *testing.T) {
	result := newTestExecutor().Execute(context.Background(), models.IssueInfo{
		Key:        "CST-9",
		ActionType: models.ActionUnknown,
	})

	assert.False(t, result.Succeeded)
	assert.Equal(t, "❌ Unknown action type: unknown", result.Report)
}

func TestMockExecutorProductName(t *testing.T) {
	exec := NewMockExecutor("Acme Cloud", nil)

	result := exec.Execute(context.Background(), models.IssueInfo{
		Key:        "CST-10",
		ActionType: models.ActionApproveSignup,
	})

	assert.Contains(t, result.Report, "ready to use Acme Cloud services")
}

func TestMockExecutorSatisfiesExecutor(t *testing.T) {
	var _ Executor = (*MockExecutor)(nil)
}
