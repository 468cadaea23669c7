package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"SERVER_ADDR", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	"JIRA_URL", "JIRA_USERNAME", "JIRA_TOKEN", "JIRA_PROJECT_KEY", "JIRA_BROWSE_URL",
	"SLACK_BOT_TOKEN", "SLACK_SIGNING_SECRET", "SLACK_CHANNELS",
	"WEBHOOK_DEDUP_WINDOW", "PRODUCT_NAME",
}

// runCmd executes the command tree with args and a clean environment.
func runCmd(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()

	for _, key := range configEnv {
		t.Setenv(key, "")
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

type fakeJira struct {
	mu       sync.Mutex
	created  map[string]any
	comments []string
	moved    []string
}

func newFakeJira(t *testing.T) (*fakeJira, *httptest.Server) {
	t.Helper()
	f := &fakeJira{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/api/2/issue", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.created = body
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"10101","key":"CST-101"}`)
	})
	mux.HandleFunc("GET /rest/api/2/issue/{key}/transitions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"transitions":[
			{"id":"11","name":"Set Pending","to":{"name":"Pending"}},
			{"id":"31","name":"Approve","to":{"name":"Approved"}}]}`)
	})
	mux.HandleFunc("POST /rest/api/2/issue/{key}/transitions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Transition struct {
				ID string `json:"id"`
			} `json:"transition"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.moved = append(f.moved, r.PathValue("key")+":"+body.Transition.ID)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /rest/api/2/issue/{key}/comment", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Body string `json:"body"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.comments = append(f.comments, body.Body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"1"}`)
	})
	mux.HandleFunc("GET /rest/api/2/issue/{key}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"key":"CST-57","fields":{
			"status":{"name":"Rejected"},
			"comment":{"comments":[{"body":"first"},{"body":"  Trial already extended twice.  "}]}}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func jiraEnv(url string) map[string]string {
	return map[string]string{
		"JIRA_URL":        url,
		"JIRA_USERNAME":   "bot@montycloud.com",
		"JIRA_TOKEN":      "secret-token",
		"JIRA_BROWSE_URL": "https://montycloud.atlassian.net",
	}
}

func TestTicketCreate(t *testing.T) {
	fake, srv := newFakeJira(t)

	out, err := runCmd(t, jiraEnv(srv.URL),
		"ticket", "create",
		"--action", "extend-trial",
		"--email", "trial@acmecorp.com",
		"--detail", "reason=evaluation")
	require.NoError(t, err)

	assert.Equal(t, "CST-101 https://montycloud.atlassian.net/browse/CST-101\n", out)

	fields, ok := fake.created["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Trial Extension Request - trial@acmecorp.com", fields["summary"])
	assert.Contains(t, fields["description"], "- Reason: evaluation")
	assert.Equal(t, []string{"CST-101:11"}, fake.moved)
	assert.Equal(t, []string{"Ticket created and set to pending status"}, fake.comments)
}

func TestTicketCreateValidation(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "Unknown action",
			args:    []string{"--action", "delete_account", "--email", "a@b.io"},
			wantErr: "unknown action",
		},
		{
			name:    "Invalid email",
			args:    []string{"--action", "extend_trial", "--email", "not-an-email"},
			wantErr: "a valid customer email is required",
		},
		{
			name:    "Past end date",
			args:    []string{"--action", "extend_trial", "--email", "a@b.io", "--detail", "end_date=yesterday"},
			wantErr: "date must be in the future",
		},
		{
			name:    "Missing action flag",
			args:    []string{"--email", "a@b.io"},
			wantErr: `required flag(s) "action" not set`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake, srv := newFakeJira(t)

			_, err := runCmd(t, jiraEnv(srv.URL), append([]string{"ticket", "create"}, tc.args...)...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Nil(t, fake.created)
		})
	}
}

func TestTicketCreateWithoutJira(t *testing.T) {
	_, err := runCmd(t, nil, "ticket", "create", "--action", "approve_signup", "--email", "a@b.io")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize jira client")
}

func TestTicketStatus(t *testing.T) {
	fake, srv := newFakeJira(t)

	out, err := runCmd(t, jiraEnv(srv.URL), "ticket", "status", "CST-57", "approved", "--comment", "Extended")
	require.NoError(t, err)

	assert.Equal(t, "CST-57 -> approved\n", out)
	assert.Equal(t, []string{"CST-57:31"}, fake.moved)
	assert.Equal(t, []string{"Extended"}, fake.comments)
}

func TestTicketStatusUnknownTransition(t *testing.T) {
	_, srv := newFakeJira(t)

	_, err := runCmd(t, jiraEnv(srv.URL), "ticket", "status", "CST-57", "Closed")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Closed")
}

func TestTicketGet(t *testing.T) {
	_, srv := newFakeJira(t)

	out, err := runCmd(t, jiraEnv(srv.URL), "ticket", "get", "CST-57")
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"Ticket: CST-57",
		"URL: https://montycloud.atlassian.net/browse/CST-57",
		"Status: Rejected",
		"Latest comment: Trial already extended twice.",
		"",
	}, "\n"), out)
}
