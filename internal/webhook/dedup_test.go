package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danielolaszy/supportbot/pkg/models"
)

func TestDeduper(t *testing.T) {
	now := time.Date(2025, time.June, 20, 15, 0, 0, 0, time.UTC)
	d := NewDeduper(time.Minute, func() time.Time { return now })

	change := models.StatusChange{FromStatus: "Pending", ToStatus: "Approved", Timestamp: "2025-06-20T15:00:00.000Z"}

	assert.False(t, d.Seen("CST-57", change), "first delivery")
	assert.True(t, d.Seen("CST-57", change), "redelivery inside the window")
	assert.False(t, d.Seen("CST-58", change), "other ticket")

	other := change
	other.ToStatus = "Rejected"
	assert.False(t, d.Seen("CST-57", other), "other transition")

	now = now.Add(time.Minute)
	assert.False(t, d.Seen("CST-57", change), "window elapsed")
	assert.True(t, d.Seen("CST-57", change))
}
