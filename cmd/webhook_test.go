package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookReplaySample(t *testing.T) {
	out, err := runCmd(t, map[string]string{"PRODUCT_NAME": "Acme Cloud"},
		"webhook", "replay", "../internal/webhook/testdata/cst-57.json")
	require.NoError(t, err)

	assert.Contains(t, out, "Outcome: processed\n")
	assert.Contains(t, out, "Ticket: CST-57\n")
	assert.Contains(t, out, "Classification: approved\n")
	assert.Contains(t, out, "GREAT! REQUEST APPROVED")
	assert.Contains(t, out, "Acme Cloud")
}

func TestWebhookReplay(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected string
		wantErr  string
	}{
		{
			name:     "Ignored event",
			payload:  `{"webhookEvent":"jira:issue_created","issue":{"key":"CST-1"}}`,
			expected: "Outcome: ignored\n",
		},
		{
			name:     "No status change",
			payload:  `{"webhookEvent":"jira:issue_updated","issue":{"key":"CST-1"},"changelog":{"items":[]}}`,
			expected: "Outcome: no_status_change\n",
		},
		{
			name:    "Malformed payload",
			payload: `{"webhookEvent"`,
			wantErr: "malformed",
		},
		{
			name:    "Missing issue key",
			payload: `{"webhookEvent":"jira:issue_updated","issue":{}}`,
			wantErr: "invalid issue data",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "payload.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.payload), 0o600))

			out, err := runCmd(t, nil, "webhook", "replay", path)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestWebhookReplayMissingFile(t *testing.T) {
	_, err := runCmd(t, nil, "webhook", "replay", filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read payload")
}
