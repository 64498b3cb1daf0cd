package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/derive"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

func TestPollLifecycleRoles(t *testing.T) {
	t.Parallel()

	organizer := testAddress(0x01)
	registered := testAddress(0x02)
	stranger := testAddress(0x03)
	eventID := testObjectID(0xe1)
	attendeeTable := testObjectID(0xf1)

	recordID, err := derive.AttendeeRecordID(attendeeTable, registered)
	require.NoError(t, err)

	tests := []struct {
		name       string
		kind       string
		user       types.Address
		eventKnown bool
		want       int
		category   entity.NotificationCategory
	}{
		{"update reaches organizer", KindEventUpdated, organizer, true, 1, entity.NotificationEventUpdated},
		{"update reaches registered attendee", KindEventUpdated, registered, true, 1, entity.NotificationEventUpdated},
		{"update skips stranger", KindEventUpdated, stranger, true, 0, ""},
		{"update for missing event is dropped", KindEventUpdated, organizer, false, 0, ""},
		{"cancellation reaches organizer", KindEventCancelled, organizer, true, 1, entity.NotificationEventCancelled},
		{"cancellation reaches registered attendee", KindEventCancelled, registered, true, 1, entity.NotificationEventCancelled},
		{"cancellation skips stranger", KindEventCancelled, stranger, true, 0, ""},
		{"cancellation for missing event is dropped", KindEventCancelled, registered, false, 0, ""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			graph := newStubGraph()
			if tc.eventKnown {
				graph.objects[eventID] = eventObject(eventID, "Meetup", []types.Address{organizer}, attendeeTable)
				// registration membership is a point lookup on the derived
				// attendee record id
				graph.objects[recordID] = &types.RawObject{ID: recordID, Kind: "0x2::dynamic_field::Field"}
			}
			graph.log = []types.LogEntry{{
				TxDigest:    "tx1",
				EventSeq:    0,
				Kind:        tc.kind,
				Sender:      organizer,
				TimestampMs: time.Now().UnixMilli(),
				Payload: map[string]any{
					"event_id": eventID.String(),
					"title":    "Meetup",
				},
			}}

			feedDg := newMemFeedDg()
			session := New(tc.user, graph, feedDg, Config{})
			ctx := context.Background()
			require.NoError(t, session.Poll(ctx), "a missing event drops the entry, never the poll")

			feed, err := feedDg.GetFeed(ctx, tc.user)
			require.NoError(t, err)
			require.Len(t, feed.Notifications, tc.want)
			assert.Positive(t, feed.LastCheckedAtMs)
			if tc.want > 0 {
				assert.Equal(t, "tx1:0", feed.Notifications[0].ID)
				assert.Equal(t, tc.category, feed.Notifications[0].Category)
				assert.Contains(t, feed.Notifications[0].Description, "Meetup")
			}
		})
	}
}

func TestPollRecipientOnlyKinds(t *testing.T) {
	t.Parallel()

	recipient := testAddress(0x01)
	bystander := testAddress(0x02)
	eventID := testObjectID(0xe1)

	tests := []struct {
		name       string
		kind       string
		payloadKey string
		user       types.Address
		want       int
		category   entity.NotificationCategory
	}{
		{"check-in reaches the attendee", KindAttendeeCheckedIn, "attendee", recipient, 1, entity.NotificationCheckIn},
		{"check-in skips everyone else", KindAttendeeCheckedIn, "attendee", bystander, 0, ""},
		{"mint reaches the recipient", KindTicketMinted, "recipient", recipient, 1, entity.NotificationTicketMinted},
		{"mint skips everyone else", KindTicketMinted, "recipient", bystander, 0, ""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			graph := newStubGraph()
			graph.log = []types.LogEntry{{
				TxDigest:    "tx1",
				EventSeq:    0,
				Kind:        tc.kind,
				Sender:      recipient,
				TimestampMs: time.Now().UnixMilli(),
				Payload: map[string]any{
					"event_id":    eventID.String(),
					"title":       "Meetup",
					tc.payloadKey: recipient.String(),
				},
			}}

			feedDg := newMemFeedDg()
			session := New(tc.user, graph, feedDg, Config{})
			ctx := context.Background()
			require.NoError(t, session.Poll(ctx))

			feed, err := feedDg.GetFeed(ctx, tc.user)
			require.NoError(t, err)
			require.Len(t, feed.Notifications, tc.want)
			if tc.want > 0 {
				assert.Equal(t, tc.category, feed.Notifications[0].Category)
				assert.Contains(t, feed.Notifications[0].Description, "Meetup")
				require.NotNil(t, feed.Notifications[0].EventID)
				assert.Equal(t, eventID, *feed.Notifications[0].EventID)
			}
		})
	}
}
