package derive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
)

func mustAddress(t *testing.T, s string) types.Address {
	t.Helper()
	addr, err := types.ParseAddress(s)
	require.NoError(t, err)
	return addr
}

func mustObjectID(t *testing.T, s string) types.ObjectID {
	t.Helper()
	id, err := types.ParseObjectID(s)
	require.NoError(t, err)
	return id
}

func TestAccountIDDeterministic(t *testing.T) {
	registry := mustObjectID(t, "0x0000000000000000000000000000000000000000000000000000000000000042")

	for i := 0; i < 16; i++ {
		owner := mustAddress(t, fmt.Sprintf("0x%064x", i+1))
		first, err := AccountID(registry, owner)
		require.NoError(t, err)
		second, err := AccountID(registry, owner)
		require.NoError(t, err)
		assert.Equal(t, first, second, "same owner must always derive the same identity")
	}
}

func TestAccountIDDistinctOwners(t *testing.T) {
	registry := mustObjectID(t, "0x42")

	seen := make(map[types.ObjectID]types.Address)
	for i := 0; i < 64; i++ {
		owner := mustAddress(t, fmt.Sprintf("0x%064x", i+1))
		id, err := AccountID(registry, owner)
		require.NoError(t, err)
		prev, ok := seen[id]
		require.Falsef(t, ok, "identity collision between %s and %s", prev, owner)
		seen[id] = owner
	}
}

func TestAccountIDDistinctRegistries(t *testing.T) {
	owner := mustAddress(t, "0xabc")
	a, err := AccountID(mustObjectID(t, "0x1"), owner)
	require.NoError(t, err)
	b, err := AccountID(mustObjectID(t, "0x2"), owner)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAccountIDInvalidInput(t *testing.T) {
	registry := mustObjectID(t, "0x42")

	_, err := AccountID(registry, types.Address{})
	assert.ErrorIs(t, err, errs.InvalidIdentity)

	_, err = AccountID(types.ObjectID{}, mustAddress(t, "0x1"))
	assert.ErrorIs(t, err, errs.InvalidIdentity)
}

func TestChildIDKeySeparation(t *testing.T) {
	parent := mustObjectID(t, "0x7")

	// key boundaries must be unambiguous: ("ab","c") != ("a","bc")
	assert.NotEqual(t, ChildID(parent, []byte("abc")), ChildID(ChildID(parent, []byte("ab")), []byte("c")))
	assert.NotEqual(t, ChildID(parent, []byte("ab")), ChildID(parent, []byte("a")))
}

func TestAttendeeRecordIDMatchesChildDerivation(t *testing.T) {
	table := mustObjectID(t, "0x99")
	attendee := mustAddress(t, "0xdef")

	id, err := AttendeeRecordID(table, attendee)
	require.NoError(t, err)
	assert.Equal(t, ChildID(table, attendee[:]), id)

	_, err = AttendeeRecordID(table, types.Address{})
	assert.ErrorIs(t, err, errs.InvalidIdentity)
}
