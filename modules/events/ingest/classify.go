package ingest

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/objectgraph"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/codec"
	"github.com/suimeet/eventgraph/modules/events/derive"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

// Log entry kinds emitted by the events package on chain.
const (
	KindEventCreated       = "EventCreated"
	KindEventUpdated       = "EventUpdated"
	KindEventCancelled     = "EventCancelled"
	KindAttendeeRegistered = "AttendeeRegistered"
	KindAttendeeCheckedIn  = "AttendeeCheckedIn"
	KindTicketMinted       = "TicketMinted"
)

// classify applies the per-kind, per-recipient-role relevance predicate for
// the session user and renders zero or more notifications for one log entry.
// Role checks that need extra lookups tolerate missing events by dropping the
// notification rather than failing the poll.
func (i *Ingestor) classify(ctx context.Context, entry types.LogEntry, events *eventCache) ([]entity.Notification, error) {
	eventID, err := payloadObjectID(entry.Payload, "event_id")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	title := cast.ToString(entry.Payload["title"])

	base := entity.Notification{
		ID:        entry.SyntheticID(),
		Timestamp: entry.Timestamp(),
		EventID:   &eventID,
	}

	switch entry.Kind {
	case KindEventCreated:
		// relevant only to the creator
		if entry.Sender != i.user {
			return nil, nil
		}
		base.Category = entity.NotificationEventCreated
		base.Title = "Event created"
		base.Description = fmt.Sprintf("Your event %q is live", title)
		return []entity.Notification{base}, nil

	case KindEventUpdated:
		event, err := events.get(ctx, eventID)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		relevant, err := i.isOrganizerOrRegistered(ctx, event)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if !relevant {
			return nil, nil
		}
		base.Category = entity.NotificationEventUpdated
		base.Title = "Event updated"
		base.Description = fmt.Sprintf("%q has new details", titleOrFallback(title, event))
		return []entity.Notification{base}, nil

	case KindEventCancelled:
		event, err := events.get(ctx, eventID)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		relevant, err := i.isOrganizerOrRegistered(ctx, event)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if !relevant {
			return nil, nil
		}
		base.Category = entity.NotificationEventCancelled
		base.Title = "Event cancelled"
		base.Description = fmt.Sprintf("%q was cancelled", titleOrFallback(title, event))
		return []entity.Notification{base}, nil

	case KindAttendeeRegistered:
		attendee, err := payloadAddress(entry.Payload, "attendee")
		if err != nil {
			return nil, errors.WithStack(err)
		}
		var notifications []entity.Notification
		if attendee == i.user {
			n := base
			n.Category = entity.NotificationRegistration
			n.Title = "Registration confirmed"
			n.Description = fmt.Sprintf("You are registered for %q", title)
			notifications = append(notifications, n)
		}
		// organizers get a differently-worded notification for the same log
		// entry, under a suffixed synthetic id
		event, err := events.get(ctx, eventID)
		if err != nil {
			return notifications, nil //nolint:nilerr // missing event only silences the organizer side
		}
		if event.IsOrganizer(i.user) && attendee != i.user {
			n := base
			n.ID = entry.SyntheticID() + ":org"
			n.Category = entity.NotificationRegistration
			n.Title = "New registration"
			n.Description = fmt.Sprintf("%s registered for %q", attendee.Short(), titleOrFallback(title, event))
			notifications = append(notifications, n)
		}
		return notifications, nil

	case KindAttendeeCheckedIn:
		attendee, err := payloadAddress(entry.Payload, "attendee")
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if attendee != i.user {
			return nil, nil
		}
		base.Category = entity.NotificationCheckIn
		base.Title = "Checked in"
		base.Description = fmt.Sprintf("You checked in to %q", title)
		return []entity.Notification{base}, nil

	case KindTicketMinted:
		recipient, err := payloadAddress(entry.Payload, "recipient")
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if recipient != i.user {
			return nil, nil
		}
		base.Category = entity.NotificationTicketMinted
		base.Title = "Ticket minted"
		base.Description = fmt.Sprintf("Your ticket NFT for %q was minted", title)
		return []entity.Notification{base}, nil

	default:
		// unknown kinds are not an error, just not notifiable
		return nil, nil
	}
}

// isOrganizerOrRegistered checks the user's role against the event at query
// time. Registration membership is checked with a single derived point lookup
// against the event's attendee table.
func (i *Ingestor) isOrganizerOrRegistered(ctx context.Context, event *entity.Event) (bool, error) {
	if event.IsOrganizer(i.user) {
		return true, nil
	}
	recordID, err := derive.AttendeeRecordID(event.AttendeeTable, i.user)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if _, err := i.graph.PointGet(ctx, recordID); err != nil {
		if errors.Is(err, errs.NotFound) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}
	return true, nil
}

func titleOrFallback(title string, event *entity.Event) string {
	if title != "" {
		return title
	}
	return event.Title
}

func payloadObjectID(payload map[string]any, key string) (types.ObjectID, error) {
	id, err := types.ParseObjectID(cast.ToString(payload[key]))
	if err != nil {
		return types.ObjectID{}, errors.Wrapf(errs.DecodeError, "log payload has no %q object id", key)
	}
	return id, nil
}

func payloadAddress(payload map[string]any, key string) (types.Address, error) {
	addr, err := types.ParseAddress(cast.ToString(payload[key]))
	if err != nil {
		return types.Address{}, errors.Wrapf(errs.DecodeError, "log payload has no %q address", key)
	}
	return addr, nil
}

// eventCache memoizes event fetches within one poll pass so role checks for
// many log entries of the same event cost one lookup.
type eventCache struct {
	graph  objectgraph.Client
	events map[types.ObjectID]*entity.Event
}

func newEventCache(graph objectgraph.Client) *eventCache {
	return &eventCache{graph: graph, events: make(map[types.ObjectID]*entity.Event)}
}

func (c *eventCache) get(ctx context.Context, id types.ObjectID) (*entity.Event, error) {
	if event, ok := c.events[id]; ok {
		return event, nil
	}
	raw, err := c.graph.PointGet(ctx, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	event, err := codec.DecodeEvent(ctx, raw)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	c.events[id] = event
	return event, nil
}
