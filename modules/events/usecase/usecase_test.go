package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/objectgraph"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/derive"
)

// stubGraph is an in-memory objectgraph.Client that counts round trips.
type stubGraph struct {
	objects  map[types.ObjectID]*types.RawObject
	children map[types.ObjectID][]types.ChildRef
	log      []types.LogEntry

	pointGets int
	batchGets int
}

var _ objectgraph.Client = (*stubGraph)(nil)

func newStubGraph() *stubGraph {
	return &stubGraph{
		objects:  make(map[types.ObjectID]*types.RawObject),
		children: make(map[types.ObjectID][]types.ChildRef),
	}
}

func (s *stubGraph) PointGet(_ context.Context, id types.ObjectID) (*types.RawObject, error) {
	s.pointGets++
	raw, ok := s.objects[id]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "object %s not found", id)
	}
	return raw, nil
}

func (s *stubGraph) BatchGet(_ context.Context, ids []types.ObjectID) ([]*types.RawObject, error) {
	s.batchGets++
	raws := make([]*types.RawObject, len(ids))
	for i, id := range ids {
		raws[i] = s.objects[id]
	}
	return raws, nil
}

func (s *stubGraph) EnumerateChildren(_ context.Context, table types.ObjectID) ([]types.ChildRef, error) {
	return s.children[table], nil
}

func (s *stubGraph) QueryLog(_ context.Context, _ objectgraph.LogFilter, _ objectgraph.Order, limit int) ([]types.LogEntry, error) {
	if limit > 0 && len(s.log) > limit {
		return s.log[:limit], nil
	}
	return s.log, nil
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

var testRegistry = testObjectID(0xaa)

// addAccount stores an account object under its derived id.
func (s *stubGraph) addAccount(owner types.Address, name string) {
	id, err := derive.AccountID(testRegistry, owner)
	if err != nil {
		panic(err)
	}
	s.objects[id] = &types.RawObject{
		ID:   id,
		Kind: "0x2a::accounts::Account",
		Fields: map[string]any{
			"id":         map[string]any{"id": id.String()},
			"owner":      owner.String(),
			"name":       name,
			"avatar_url": "https://example.com/" + name + ".png",
		},
	}
}

// rawEventObject builds a minimal decodable event object.
func rawEventObject(id types.ObjectID, title string, organizers []types.Address, attendeeTable types.ObjectID) *types.RawObject {
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
