// Package notify routes notification text to registered chat conversations.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/danielolaszy/supportbot/internal/logging"
)

var (
	// ErrNoEndpoints is returned when a delivery has nowhere to go.
	ErrNoEndpoints = errors.New("no notification endpoints registered")
	// ErrInvalidEndpoint is returned by Register for an empty key or conversation.
	ErrInvalidEndpoint = errors.New("invalid notification endpoint")
	// ErrDeliveryFailed is returned by Deliver when the keyed endpoint rejects the message.
	ErrDeliveryFailed = errors.New("notification delivery failed")
)

// Endpoint is a conversation reference: enough to post into a conversation
// without new input from it.
type Endpoint struct {
	// ConversationID identifies the conversation. Broadcasts send once per ID.
	ConversationID string

	// Channel is the transport-level destination (a Slack channel ID)
	Channel string

	// Source records how the endpoint was registered
	Source string
}

// Sender delivers one message to one endpoint.
type Sender interface {
	Send(ctx context.Context, ep Endpoint, text string) error
}

// Directory is an in-memory table of conversation references keyed by ticket
// key, user, or channel. It is safe for concurrent use.
type Directory struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
	keys      []string
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{endpoints: make(map[string]Endpoint)}
}

// Register stores ep under key, replacing any previous endpoint for that key.
// An endpoint without a Channel is sent to its ConversationID.
func (d *Directory) Register(key string, ep Endpoint) error {
	key = strings.TrimSpace(key)
	if key == "" || strings.TrimSpace(ep.ConversationID) == "" {
		return fmt.Errorf("%w: key and conversation ID are required", ErrInvalidEndpoint)
	}
	if ep.Channel == "" {
		ep.Channel = ep.ConversationID
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.endpoints[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.endpoints[key] = ep

	logging.Debug("registered notification endpoint", "key", key, "conversation", ep.ConversationID, "source", ep.Source)
	return nil
}

// Lookup returns the endpoint registered under key.
func (d *Directory) Lookup(key string) (Endpoint, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ep, ok := d.endpoints[key]
	return ep, ok
}

// Endpoints returns the distinct endpoints in registration order.
func (d *Directory) Endpoints() []Endpoint {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]bool, len(d.keys))
	out := make([]Endpoint, 0, len(d.keys))
	for _, key := range d.keys {
		ep := d.endpoints[key]
		if seen[ep.ConversationID] {
			continue
		}
		seen[ep.ConversationID] = true
		out = append(out, ep)
	}
	return out
}

// Len returns the number of registered keys.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.keys)
}

// Broadcast sends text to every distinct endpoint and returns how many
// deliveries succeeded. Failed deliveries are logged and skipped.
func (d *Directory) Broadcast(ctx context.Context, sender Sender, text string) (int, error) {
	endpoints := d.Endpoints()
	if len(endpoints) == 0 {
		return 0, ErrNoEndpoints
	}

	delivered := 0
	for _, ep := range endpoints {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if err := sender.Send(ctx, ep, text); err != nil {
			logging.Warn("failed to deliver notification",
				"conversation", ep.ConversationID,
				"channel", ep.Channel,
				"error", err)
			continue
		}
		delivered++
	}

	logging.Info("broadcast notification", "endpoints", len(endpoints), "delivered", delivered)
	return delivered, nil
}

// Deliver sends text to the endpoint registered under key, or broadcasts when
// there is none. A failed keyed send is reported as ErrDeliveryFailed.
func (d *Directory) Deliver(ctx context.Context, sender Sender, key, text string) (int, error) {
	ep, ok := d.Lookup(key)
	if !ok {
		return d.Broadcast(ctx, sender, text)
	}

	if err := sender.Send(ctx, ep, text); err != nil {
		return 0, fmt.Errorf("%w to %s (conversation %s): %v", ErrDeliveryFailed, key, ep.ConversationID, err)
	}
	return 1, nil
}
