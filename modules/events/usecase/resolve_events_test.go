package usecase

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
)

func TestResolveEventsBatchesAccountFetches(t *testing.T) {
	t.Parallel()

	graph := newStubGraph()
	alice := testAddress(0xa1)
	bob := testAddress(0xa2)
	carol := testAddress(0xa3) // no account object
	graph.addAccount(alice, "Alice")
	graph.addAccount(bob, "Bob")

	raws := []*types.RawObject{
		rawEventObject(testObjectID(0xe1), "One", []types.Address{alice, bob}, testObjectID(0xf1)),
		rawEventObject(testObjectID(0xe2), "Two", []types.Address{bob}, testObjectID(0xf2)),
		rawEventObject(testObjectID(0xe3), "Three", []types.Address{alice, carol}, testObjectID(0xf3)),
	}

	u := New(graph, nil, testRegistry)
	events, err := u.ResolveEvents(context.Background(), raws)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// the organizer join must cost one round trip for the whole input, no
	// matter how many events or organizers are involved
	assert.Equal(t, 1, graph.batchGets)

	assert.Equal(t, "Alice", events[0].Organizers[0].Name)
	assert.Equal(t, "Bob", events[0].Organizers[1].Name)
	assert.Equal(t, "Bob", events[1].Organizers[0].Name)
	assert.False(t, events[0].Organizers[0].Placeholder)

	placeholder := events[2].Organizers[1]
	assert.True(t, placeholder.Placeholder)
	assert.Equal(t, carol.Short(), placeholder.Name)
	assert.Contains(t, placeholder.Avatar, "dicebear.com")
	assert.Contains(t, placeholder.Avatar, carol.String(), "placeholder avatar must be keyed on the address")
}

func TestResolveEventsSkipsUndecodable(t *testing.T) {
	t.Parallel()

	graph := newStubGraph()
	good := rawEventObject(testObjectID(0xe1), "Good", nil, testObjectID(0xf1))
	bad := rawEventObject(testObjectID(0xe2), "Bad", nil, testObjectID(0xf2))
	delete(bad.Fields, "max_attendees")

	u := New(graph, nil, testRegistry)
	events, err := u.ResolveEvents(context.Background(), []*types.RawObject{good, bad})
	require.NoError(t, err, "one broken event must not fail the rest")
	require.Len(t, events, 1)
	assert.Equal(t, "Good", events[0].Title)
}

func TestResolveEvent(t *testing.T) {
	t.Parallel()

	graph := newStubGraph()
	alice := testAddress(0xa1)
	graph.addAccount(alice, "Alice")
	eventID := testObjectID(0xe1)
	graph.objects[eventID] = rawEventObject(eventID, "Solo", []types.Address{alice}, testObjectID(0xf1))

	u := New(graph, nil, testRegistry)
	event, err := u.ResolveEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, "Solo", event.Title)
	require.Len(t, event.Organizers, 1)
	assert.Equal(t, "Alice", event.Organizers[0].Name)
}

func TestFetchRawEventsDropsMissing(t *testing.T) {
	t.Parallel()

	graph := newStubGraph()
	present := testObjectID(0xe1)
	graph.objects[present] = rawEventObject(present, "Here", nil, testObjectID(0xf1))

	u := New(graph, nil, testRegistry)
	raws, err := u.FetchRawEvents(context.Background(), []types.ObjectID{present, testObjectID(0xe2)})
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, present, raws[0].ID)
}

func TestGetAccountByAddress(t *testing.T) {
	t.Parallel()

	graph := newStubGraph()
	alice := testAddress(0xa1)
	graph.addAccount(alice, "Alice")
	u := New(graph, nil, testRegistry)

	account, err := u.GetAccountByAddress(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", account.Name)
	assert.Equal(t, alice, account.Owner)

	_, err = u.GetAccountByAddress(context.Background(), testAddress(0xff))
	assert.True(t, errors.Is(err, errs.NotFound))
}
