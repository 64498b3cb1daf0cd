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

func rawAttendeeObject(id types.ObjectID, attendee types.Address, values []any) *types.RawObject {
	return &types.RawObject{
		ID:   id,
		Kind: "0x2a::events::AttendeeInfo",
		Fields: map[string]any{
			"id":                  map[string]any{"id": id.String()},
			"attendee":            attendee.String(),
			"registration_values": values,
			"registered_at":       "1717200100000",
		},
	}
}

// scanFixture is an event with a two-field registration schema, two ticket
// tiers and a populated attendee table.
func scanFixture() (*stubGraph, types.ObjectID) {
	graph := newStubGraph()
	eventID := testObjectID(0xe1)
	table := testObjectID(0xf1)

	raw := rawEventObject(eventID, "Fixture", nil, table)
	raw.Fields["registration_fields"] = []any{
		map[string]any{"fields": map[string]any{"name": "Name", "field_type": "text", "required": true}},
		map[string]any{"fields": map[string]any{"name": "Email", "field_type": "email", "required": true}},
	}
	raw.Fields["ticket_tiers"] = []any{
		map[string]any{"fields": map[string]any{"name": "General", "price": "0", "max_quantity": "90", "sold": "2"}},
		map[string]any{"fields": map[string]any{"name": "VIP", "price": "5000000", "max_quantity": "10", "sold": "0"}},
	}
	graph.objects[eventID] = raw
	return graph, eventID
}

func TestScanAttendees(t *testing.T) {
	t.Parallel()

	graph, eventID := scanFixture()
	table := testObjectID(0xf1)

	alice := testAddress(0xa1)
	bob := testAddress(0xa2)
	graph.addAccount(alice, "Alice")

	checkedIn := rawAttendeeObject(testObjectID(0x01), alice, []any{"Alice", "alice@example.com"})
	checkedIn.Fields["checked_in"] = true
	checkedIn.Fields["checked_in_at"] = "1717200200000"
	checkedIn.Fields["ticket_tier_index"] = "1"
	graph.objects[testObjectID(0x01)] = checkedIn
	graph.objects[testObjectID(0x02)] = rawAttendeeObject(testObjectID(0x02), bob, []any{"Bob", "bob@example.com"})

	// one value for a two-field schema
	broken := rawAttendeeObject(testObjectID(0x04), testAddress(0xa4), []any{"Dave"})
	graph.objects[testObjectID(0x04)] = broken

	// tier index out of range
	outOfRange := rawAttendeeObject(testObjectID(0x05), testAddress(0xa5), []any{"Eve", "eve@example.com"})
	outOfRange.Fields["ticket_tier_index"] = "9"
	graph.objects[testObjectID(0x05)] = outOfRange

	graph.children[table] = []types.ChildRef{
		{Key: alice.String(), ObjectID: testObjectID(0x01)},
		{Key: bob.String(), ObjectID: testObjectID(0x02)},
		{Key: testAddress(0xa3).String(), ObjectID: testObjectID(0x03)}, // value object missing
		{Key: testAddress(0xa4).String(), ObjectID: testObjectID(0x04)},
		{Key: testAddress(0xa5).String(), ObjectID: testObjectID(0x05)},
	}

	u := New(graph, nil, testRegistry)
	records, summary, err := u.ScanAttendees(context.Background(), eventID)
	require.NoError(t, err)

	// missing, undecodable and out-of-range entries are skipped, not fatal
	require.Len(t, records, 2)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.CheckedIn)
	assert.Equal(t, 0, summary.NFTMinted)

	first := records[0]
	assert.Equal(t, alice, first.Address)
	assert.True(t, first.CheckedIn)
	require.NotNil(t, first.CheckedInAt)
	assert.Equal(t, uint64(1), first.TicketTierIndex)
	assert.Equal(t, map[string]string{"Name": "Alice", "Email": "alice@example.com"}, first.RegistrationValues)
	require.NotNil(t, first.Account)
	assert.Equal(t, "Alice", first.Account.Name)

	second := records[1]
	assert.Equal(t, bob, second.Address)
	assert.False(t, second.CheckedIn)
	assert.Nil(t, second.Account, "attendee without a profile joins as nil")
}

func TestScanAttendeesTierlessEvent(t *testing.T) {
	t.Parallel()

	graph := newStubGraph()
	eventID := testObjectID(0xe2)
	table := testObjectID(0xf2)
	raw := rawEventObject(eventID, "Tierless", nil, table)
	raw.Fields["registration_fields"] = []any{
		map[string]any{"fields": map[string]any{"name": "Name", "field_type": "text", "required": true}},
	}
	graph.objects[eventID] = raw

	alice := testAddress(0xa1)
	mallory := testAddress(0xa6)
	graph.objects[testObjectID(0x01)] = rawAttendeeObject(testObjectID(0x01), alice, []any{"Alice"})
	phantom := rawAttendeeObject(testObjectID(0x06), mallory, []any{"Mallory"})
	phantom.Fields["ticket_tier_index"] = "2"
	graph.objects[testObjectID(0x06)] = phantom

	graph.children[table] = []types.ChildRef{
		{Key: alice.String(), ObjectID: testObjectID(0x01)},
		{Key: mallory.String(), ObjectID: testObjectID(0x06)},
	}

	u := New(graph, nil, testRegistry)
	records, summary, err := u.ScanAttendees(context.Background(), eventID)
	require.NoError(t, err)

	// a nonzero tier index on an event without tiers is out of range too
	require.Len(t, records, 1)
	assert.Equal(t, alice, records[0].Address)
	assert.Equal(t, uint64(0), records[0].TicketTierIndex)
	assert.Equal(t, 1, summary.Total)
}

func TestScanAttendeesDuplicateKey(t *testing.T) {
	t.Parallel()

	graph, eventID := scanFixture()
	table := testObjectID(0xf1)
	alice := testAddress(0xa1)

	graph.children[table] = []types.ChildRef{
		{Key: alice.String(), ObjectID: testObjectID(0x01)},
		{Key: alice.String(), ObjectID: testObjectID(0x02)},
	}

	u := New(graph, nil, testRegistry)
	_, _, err := u.ScanAttendees(context.Background(), eventID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.Conflict), "duplicate table keys mean store corruption")
}

func TestScanAttendeesEmptyTable(t *testing.T) {
	t.Parallel()

	graph, eventID := scanFixture()

	u := New(graph, nil, testRegistry)
	records, summary, err := u.ScanAttendees(context.Background(), eventID)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, summary.Total)
}
