package types

import (
	"fmt"
	"time"
)

// LogEntry is one record of the chain's append-only event log.
type LogEntry struct {
	TxDigest    string
	EventSeq    uint64
	Kind        string // struct tag suffix of the emitted event, e.g. "EventCreated"
	Sender      Address
	TimestampMs int64
	Payload     map[string]any
}

// SyntheticID returns the stable identity of the log entry, unique within the
// log: transaction digest plus the entry's sequence within that transaction.
func (e LogEntry) SyntheticID() string {
	return fmt.Sprintf("%s:%d", e.TxDigest, e.EventSeq)
}

// Timestamp returns the entry's instant.
func (e LogEntry) Timestamp() time.Time {
	return time.UnixMilli(e.TimestampMs)
}
