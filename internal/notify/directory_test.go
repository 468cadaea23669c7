package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures deliveries and fails for configured conversations.
type recordingSender struct {
	mu     sync.Mutex
	sent   []string
	failOn map[string]bool
}

func (s *recordingSender) Send(_ context.Context, ep Endpoint, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[ep.ConversationID] {
		return errors.New("transport down")
	}
	s.sent = append(s.sent, ep.Channel+":"+text)
	return nil
}

func TestDirectoryRegisterAndLookup(t *testing.T) {
	d := NewDirectory()

	require.NoError(t, d.Register("CST-57", Endpoint{ConversationID: "C1"}))

	ep, ok := d.Lookup("CST-57")
	require.True(t, ok)
	assert.Equal(t, "C1", ep.ConversationID)
	assert.Equal(t, "C1", ep.Channel, "channel defaults to the conversation ID")

	_, ok = d.Lookup("CST-58")
	assert.False(t, ok)

	require.NoError(t, d.Register("CST-57", Endpoint{ConversationID: "C2", Channel: "C2"}))
	ep, _ = d.Lookup("CST-57")
	assert.Equal(t, "C2", ep.ConversationID, "re-registering replaces the endpoint")
	assert.Equal(t, 1, d.Len())
}

func TestDirectoryRegisterRejectsEmpty(t *testing.T) {
	d := NewDirectory()

	assert.ErrorIs(t, d.Register("", Endpoint{ConversationID: "C1"}), ErrInvalidEndpoint)
	assert.ErrorIs(t, d.Register("key", Endpoint{}), ErrInvalidEndpoint)
	assert.Equal(t, 0, d.Len())
}

func TestDirectoryBroadcast(t *testing.T) {
	testCases := []struct {
		name          string
		register      map[string]string
		order         []string
		failOn        map[string]bool
		wantDelivered int
		wantSent      []string
		wantErr       error
	}{
		{
			name:    "Nothing registered",
			wantErr: ErrNoEndpoints,
		},
		{
			name:          "Deduplicated by conversation",
			register:      map[string]string{"CST-1": "C1", "user-1": "C1", "CST-2": "C2"},
			order:         []string{"CST-1", "user-1", "CST-2"},
			wantDelivered: 2,
			wantSent:      []string{"C1:hello", "C2:hello"},
		},
		{
			name:          "Failures do not abort delivery",
			register:      map[string]string{"a": "C1", "b": "C2", "c": "C3"},
			order:         []string{"a", "b", "c"},
			failOn:        map[string]bool{"C2": true},
			wantDelivered: 2,
			wantSent:      []string{"C1:hello", "C3:hello"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDirectory()
			for _, key := range tc.order {
				require.NoError(t, d.Register(key, Endpoint{ConversationID: tc.register[key]}))
			}
			sender := &recordingSender{failOn: tc.failOn}

			delivered, err := d.Broadcast(context.Background(), sender, "hello")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Zero(t, delivered)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantDelivered, delivered)
			assert.Equal(t, tc.wantSent, sender.sent)
		})
	}
}

func TestDirectoryBroadcastCancelled(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Register("a", Endpoint{ConversationID: "C1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	delivered, err := d.Broadcast(ctx, &recordingSender{}, "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, delivered)
}

func TestDirectoryDeliver(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Register("CST-57", Endpoint{ConversationID: "C57"}))
	require.NoError(t, d.Register("ops", Endpoint{ConversationID: "COPS"}))

	sender := &recordingSender{}
	delivered, err := d.Deliver(context.Background(), sender, "CST-57", "approved")
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, []string{"C57:approved"}, sender.sent)

	sender = &recordingSender{}
	delivered, err = d.Deliver(context.Background(), sender, "CST-99", "update")
	require.NoError(t, err)
	assert.Equal(t, 2, delivered, "unknown key broadcasts")

	sender = &recordingSender{failOn: map[string]bool{"C57": true}}
	delivered, err = d.Deliver(context.Background(), sender, "CST-57", "approved")
	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "CST-57")
	assert.Contains(t, err.Error(), "transport down")
	assert.Zero(t, delivered)
	assert.Empty(t, sender.sent, "a failed keyed send does not fall back to broadcast")
}

func TestSlackSender(t *testing.T) {
	var gotChannel, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/chat.postMessage" {
			http.NotFound(w, r)
			return
		}
		gotChannel = r.FormValue("channel")
		gotText = r.FormValue("text")
		if gotChannel == "CMISSING" {
			fmt.Fprint(w, `{"ok":false,"error":"channel_not_found"}`)
			return
		}
		fmt.Fprintf(w, `{"ok":true,"channel":%q,"ts":"1718898000.000100"}`, gotChannel)
	}))
	defer server.Close()

	sender := NewSlackSender("xoxb-test", slack.OptionAPIURL(server.URL+"/"))

	err := sender.Send(context.Background(), Endpoint{ConversationID: "C1", Channel: "C1"}, "🎉 approved")
	require.NoError(t, err)
	assert.Equal(t, "C1", gotChannel)
	assert.Equal(t, "🎉 approved", gotText)

	err = sender.Send(context.Background(), Endpoint{ConversationID: "CMISSING", Channel: "CMISSING"}, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), Endpoint{ConversationID: "C1"}, "text"))
}
