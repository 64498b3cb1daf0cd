package entity

import (
	"time"

	"github.com/suimeet/eventgraph/core/types"
)

type NotificationCategory string

const (
	NotificationEventCreated   NotificationCategory = "event_created"
	NotificationEventUpdated   NotificationCategory = "event_updated"
	NotificationEventCancelled NotificationCategory = "event_cancelled"
	NotificationRegistration   NotificationCategory = "registration"
	NotificationCheckIn        NotificationCategory = "check_in"
	NotificationTicketMinted   NotificationCategory = "ticket_minted"
)

// Notification is one entry of a user's feed. Created during ingestion,
// mutated only by marking read/unread.
type Notification struct {
	// ID is the synthetic identity derived from the originating log entry's
	// transaction digest and sequence, optionally suffixed when one entry
	// fans out to multiple recipient roles.
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    NotificationCategory `json:"category"`
	Timestamp   time.Time            `json:"timestamp"`
	Read        bool                 `json:"read"`
	EventID     *types.ObjectID      `json:"eventId,omitempty"`
}

// Feed is the persisted per-user notification state: the capped notification
// list plus the ingestion watermark, stored as integer milliseconds.
type Feed struct {
	Notifications   []Notification `json:"notifications"`
	LastCheckedAtMs int64          `json:"lastCheckedAtMs"`
}

// LastCheckedAt returns the ingestion watermark as an instant.
func (f *Feed) LastCheckedAt() time.Time {
	return time.UnixMilli(f.LastCheckedAtMs)
}

// Unread counts the notifications not yet marked read.
func (f *Feed) Unread() int {
	var n int
	for _, notification := range f.Notifications {
		if !notification.Read {
			n++
		}
	}
	return n
}
