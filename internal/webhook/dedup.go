package webhook

import (
	"strings"
	"sync"
	"time"

	"github.com/danielolaszy/supportbot/pkg/models"
)

// Deduper remembers status transitions for a fixed window so that redelivered
// webhooks are not acted on twice.
type Deduper struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	seen   map[string]time.Time
}

// NewDeduper returns a Deduper for window. A nil now uses time.Now.
func NewDeduper(window time.Duration, now func() time.Time) *Deduper {
	if now == nil {
		now = time.Now
	}
	return &Deduper{
		window: window,
		now:    now,
		seen:   make(map[string]time.Time),
	}
}

// Seen records the transition and reports whether it was already recorded
// within the window.
func (d *Deduper) Seen(key string, change models.StatusChange) bool {
	id := strings.Join([]string{key, change.FromStatus, change.ToStatus, change.Timestamp}, "|")
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for k, at := range d.seen {
		if now.Sub(at) >= d.window {
			delete(d.seen, k)
		}
	}

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = now
	return false
}
