package objectgraph

import (
	"context"

	"github.com/suimeet/eventgraph/core/types"
)

// Order is the chronological ordering of a log query.
type Order string

const (
	OrderNewestFirst Order = "newest_first"
	OrderOldestFirst Order = "oldest_first"
)

// LogFilter selects log entries by their originating package and module.
type LogFilter struct {
	Package types.ObjectID
	Module  string
}

// Client is the four-capability contract against the object store. These are
// the only operations the store offers: there are no joins, no dereferencing
// and no query language beyond them.
type Client interface {
	// PointGet fetches one object's current raw content.
	// Returns errs.NotFound if the object does not exist.
	PointGet(ctx context.Context, id types.ObjectID) (*types.RawObject, error)

	// BatchGet fetches many objects in one round trip. The result is
	// order-preserving and has the same length as ids; missing objects are
	// returned as nil slots, not errors.
	BatchGet(ctx context.Context, ids []types.ObjectID) ([]*types.RawObject, error)

	// EnumerateChildren lists an associative table's entries (key and value
	// object id) without fetching the values.
	EnumerateChildren(ctx context.Context, table types.ObjectID) ([]types.ChildRef, error)

	// QueryLog reads the append-only chronological log, bounded by limit.
	QueryLog(ctx context.Context, filter LogFilter, order Order, limit int) ([]types.LogEntry, error)
}
