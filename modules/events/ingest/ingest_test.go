package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/objectgraph"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

type stubGraph struct {
	objects map[types.ObjectID]*types.RawObject
	log     []types.LogEntry
}

var _ objectgraph.Client = (*stubGraph)(nil)

func newStubGraph() *stubGraph {
	return &stubGraph{objects: make(map[types.ObjectID]*types.RawObject)}
}

func (s *stubGraph) PointGet(_ context.Context, id types.ObjectID) (*types.RawObject, error) {
	raw, ok := s.objects[id]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "object %s not found", id)
	}
	return raw, nil
}

func (s *stubGraph) BatchGet(_ context.Context, ids []types.ObjectID) ([]*types.RawObject, error) {
	raws := make([]*types.RawObject, len(ids))
	for i, id := range ids {
		raws[i] = s.objects[id]
	}
	return raws, nil
}

func (s *stubGraph) EnumerateChildren(_ context.Context, _ types.ObjectID) ([]types.ChildRef, error) {
	return nil, nil
}

func (s *stubGraph) QueryLog(_ context.Context, _ objectgraph.LogFilter, _ objectgraph.Order, limit int) ([]types.LogEntry, error) {
	if limit > 0 && len(s.log) > limit {
		return s.log[:limit], nil
	}
	return s.log, nil
}

// memFeedDg is an in-memory FeedDataGateway.
type memFeedDg struct {
	mu    sync.Mutex
	feeds map[types.Address]*entity.Feed
	saves int
}

func newMemFeedDg() *memFeedDg {
	return &memFeedDg{feeds: make(map[types.Address]*entity.Feed)}
}

func (m *memFeedDg) GetFeed(_ context.Context, user types.Address) (*entity.Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	feed, ok := m.feeds[user]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "no feed for %s", user)
	}
	clone := *feed
	clone.Notifications = append([]entity.Notification(nil), feed.Notifications...)
	return &clone, nil
}

func (m *memFeedDg) SaveFeed(_ context.Context, user types.Address, feed *entity.Feed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *feed
	clone.Notifications = append([]entity.Notification(nil), feed.Notifications...)
	m.feeds[user] = &clone
	m.saves++
	return nil
}

func (m *memFeedDg) DeleteFeed(_ context.Context, user types.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.feeds, user)
	return nil
}

func testAddress(n byte) types.Address {
	addr, err := types.ParseAddress(fmt.Sprintf("0x%064x", n))
	if err != nil {
		panic(err)
	}
	return addr
}

func testObjectID(n byte) types.ObjectID {
	id, err := types.ParseObjectID(fmt.Sprintf("0x%064x", n))
	if err != nil {
		panic(err)
	}
	return id
}

func createdEntry(digest string, sender types.Address, at time.Time, eventID types.ObjectID, title string) types.LogEntry {
	return types.LogEntry{
		TxDigest:    digest,
		EventSeq:    0,
		Kind:        KindEventCreated,
		Sender:      sender,
		TimestampMs: at.UnixMilli(),
		Payload: map[string]any{
			"event_id": eventID.String(),
			"title":    title,
		},
	}
}

func eventObject(id types.ObjectID, title string, organizers []types.Address, attendeeTable types.ObjectID) *types.RawObject {
	organizerList := make([]any, 0, len(organizers))
	for _, organizer := range organizers {
		organizerList = append(organizerList, organizer.String())
	}
	return &types.RawObject{
		ID:   id,
		Kind: "0x2a::events::Event",
		Fields: map[string]any{
			"id":               map[string]any{"id": id.String()},
			"title":            title,
			"start_time":       "1717200000000",
			"end_time":         "1717207200000",
			"max_attendees":    "100",
			"attendees_count":  "0",
			"checked_in_count": "0",
			"organizers":       organizerList,
			"attendees": map[string]any{
				"fields": map[string]any{
					"id":   map[string]any{"id": attendeeTable.String()},
					"size": "0",
				},
			},
		},
	}
}

func TestPollCreatorRelevance(t *testing.T) {
	t.Parallel()

	user := testAddress(0x01)
	other := testAddress(0x02)
	graph := newStubGraph()
	now := time.Now()
	graph.log = []types.LogEntry{
		createdEntry("tx1", user, now.Add(-time.Minute), testObjectID(0xe1), "Mine"),
		createdEntry("tx2", other, now.Add(-2*time.Minute), testObjectID(0xe2), "Not mine"),
	}

	feedDg := newMemFeedDg()
	session := New(user, graph, feedDg, Config{})
	require.NoError(t, session.Poll(context.Background()))

	feed, err := feedDg.GetFeed(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1, "creation entries are relevant to the creator only")
	notification := feed.Notifications[0]
	assert.Equal(t, "tx1:0", notification.ID)
	assert.Equal(t, entity.NotificationEventCreated, notification.Category)
	assert.Contains(t, notification.Description, "Mine")
	require.NotNil(t, notification.EventID)
	assert.Equal(t, testObjectID(0xe1), *notification.EventID)
}

func TestPollIdempotent(t *testing.T) {
	t.Parallel()

	user := testAddress(0x01)
	graph := newStubGraph()
	now := time.Now()
	graph.log = []types.LogEntry{
		createdEntry("tx1", user, now.Add(-time.Minute), testObjectID(0xe1), "A"),
		createdEntry("tx2", user, now.Add(-2*time.Minute), testObjectID(0xe2), "B"),
	}

	feedDg := newMemFeedDg()
	session := New(user, graph, feedDg, Config{})
	ctx := context.Background()
	require.NoError(t, session.Poll(ctx))

	first, err := feedDg.GetFeed(ctx, user)
	require.NoError(t, err)
	require.Len(t, first.Notifications, 2)

	require.NoError(t, session.Poll(ctx))
	second, err := feedDg.GetFeed(ctx, user)
	require.NoError(t, err)

	// a second pass over the same log must change nothing but the watermark
	assert.Equal(t, first.Notifications, second.Notifications)
	assert.GreaterOrEqual(t, second.LastCheckedAtMs, first.LastCheckedAtMs)
}

func TestPollDedupAndCap(t *testing.T) {
	t.Parallel()

	user := testAddress(0x01)
	graph := newStubGraph()
	now := time.Now()
	for i := 0; i < 20; i++ {
		graph.log = append(graph.log,
			createdEntry(fmt.Sprintf("old%02d", i), user, now.Add(-time.Duration(i+1)*time.Minute), testObjectID(0xe1), "Old"))
	}

	feedDg := newMemFeedDg()
	session := New(user, graph, feedDg, Config{Capacity: 25})
	ctx := context.Background()
	require.NoError(t, session.Poll(ctx))

	feed, err := feedDg.GetFeed(ctx, user)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 20)

	// the next poll sees the old entries again plus newer ones
	for i := 0; i < 15; i++ {
		graph.log = append(graph.log,
			createdEntry(fmt.Sprintf("new%02d", i), user, now.Add(time.Duration(i+1)*time.Minute), testObjectID(0xe1), "New"))
	}
	require.NoError(t, session.Poll(ctx))

	feed, err = feedDg.GetFeed(ctx, user)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 25, "feed is capped, oldest entries dropped")

	ids := make(map[string]struct{}, len(feed.Notifications))
	for _, notification := range feed.Notifications {
		ids[notification.ID] = struct{}{}
	}
	assert.Len(t, ids, 25, "re-seen entries must not duplicate")

	// newest first
	for i := 1; i < len(feed.Notifications); i++ {
		assert.False(t, feed.Notifications[i].Timestamp.After(feed.Notifications[i-1].Timestamp))
	}
	assert.Equal(t, "new14:0", feed.Notifications[0].ID)
}

func TestPollWatermarkAdvancesWhenEmpty(t *testing.T) {
	t.Parallel()

	user := testAddress(0x01)
	feedDg := newMemFeedDg()
	session := New(user, newStubGraph(), feedDg, Config{})
	require.NoError(t, session.Poll(context.Background()))

	feed, err := feedDg.GetFeed(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, feed.Notifications)
	assert.Positive(t, feed.LastCheckedAtMs, "watermark advances even with nothing new")
}

func TestPollLookbackCutsStaleEntries(t *testing.T) {
	t.Parallel()

	user := testAddress(0x01)
	graph := newStubGraph()
	now := time.Now()
	graph.log = []types.LogEntry{
		createdEntry("fresh", user, now.Add(-time.Hour), testObjectID(0xe1), "Fresh"),
		createdEntry("stale", user, now.Add(-48*time.Hour), testObjectID(0xe2), "Stale"),
	}

	feedDg := newMemFeedDg()
	session := New(user, graph, feedDg, Config{Lookback: 24 * time.Hour})
	require.NoError(t, session.Poll(context.Background()))

	feed, err := feedDg.GetFeed(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, "fresh:0", feed.Notifications[0].ID)
}

func TestClassifyRegistrationFanOut(t *testing.T) {
	t.Parallel()

	organizer := testAddress(0x01)
	attendee := testAddress(0x02)
	eventID := testObjectID(0xe1)
	graph := newStubGraph()
	graph.objects[eventID] = eventObject(eventID, "Meetup", []types.Address{organizer}, testObjectID(0xf1))

	now := time.Now()
	entry := types.LogEntry{
		TxDigest:    "tx1",
		EventSeq:    3,
		Kind:        KindAttendeeRegistered,
		Sender:      attendee,
		TimestampMs: now.UnixMilli(),
		Payload: map[string]any{
			"event_id": eventID.String(),
			"title":    "Meetup",
			"attendee": attendee.String(),
		},
	}
	graph.log = []types.LogEntry{entry}

	// organizer side: same log entry, suffixed id
	feedDg := newMemFeedDg()
	session := New(organizer, graph, feedDg, Config{})
	ctx := context.Background()
	require.NoError(t, session.Poll(ctx))
	feed, err := feedDg.GetFeed(ctx, organizer)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, "tx1:3:org", feed.Notifications[0].ID)
	assert.Contains(t, feed.Notifications[0].Description, attendee.Short())

	// attendee side: unsuffixed id
	session = New(attendee, graph, feedDg, Config{})
	require.NoError(t, session.Poll(ctx))
	feed, err = feedDg.GetFeed(ctx, attendee)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, "tx1:3", feed.Notifications[0].ID)
	assert.Equal(t, entity.NotificationRegistration, feed.Notifications[0].Category)
}

func TestManagerSessions(t *testing.T) {
	user := testAddress(0x01)
	manager := NewManager(context.Background(), newStubGraph(), newMemFeedDg(), Config{PollInterval: time.Hour})

	first := manager.Acquire(user)
	second := manager.Acquire(user)
	assert.Same(t, first, second, "one session per address")

	manager.Release(user)
	third := manager.Acquire(user)
	assert.NotSame(t, first, third, "released sessions are not reused")

	manager.Shutdown()

	// after shutdown callers still get a pollable session, but no loop
	fourth := manager.Acquire(user)
	assert.NotNil(t, fourth)
	manager.Shutdown()
}
