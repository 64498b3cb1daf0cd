package types

// RawObject is the loosely-typed content of one object in the graph store,
// exactly as returned by the node. Fields is the raw field record of the
// object's struct: values are strings, numbers, bools, nested
// map[string]any records or []any collections.
type RawObject struct {
	ID      ObjectID
	Kind    string // fully qualified struct tag, e.g. "0x2a..::events::Event"
	Version uint64
	Fields  map[string]any
}

// ChildRef is one entry of an associative table: the entry's key and the
// object id of the value object, without the value itself.
type ChildRef struct {
	Key      string
	ObjectID ObjectID
}
