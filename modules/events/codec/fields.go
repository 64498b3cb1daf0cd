// Package codec decodes the store's loosely-typed raw field records into the
// typed domain entities. Decode shape is fixed per object kind, except for
// attendee records whose value arrays are decoded against the owning event's
// registration-field schema.
package codec

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
)

// fieldText decodes a byte-vector or string field as UTF-8 text. Absent and
// empty values yield "", never an error.
func fieldText(fields map[string]any, name string) string {
	value, ok := fields[name]
	if !ok || value == nil {
		return ""
	}
	return anyToText(value)
}

func anyToText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []any:
		// vector<u8> renders as an array of numbers
		buf := make([]byte, 0, len(v))
		for _, item := range v {
			b, err := cast.ToUint8E(item)
			if err != nil {
				return ""
			}
			buf = append(buf, b)
		}
		return string(buf)
	default:
		return ""
	}
}

// fieldUint64 decodes an unsigned integer field. The store renders u64 as
// JSON strings, so both numeric and string input are accepted.
func fieldUint64(fields map[string]any, name string) (uint64, error) {
	value, ok := fields[name]
	if !ok || value == nil {
		return 0, errors.Wrapf(errs.DecodeError, "missing field %q", name)
	}
	n, err := cast.ToUint64E(value)
	if err != nil {
		return 0, errors.Wrapf(errs.DecodeError, "field %q is not an unsigned integer: %v", name, value)
	}
	return n, nil
}

// fieldBool decodes a boolean field, defaulting to false when absent.
func fieldBool(fields map[string]any, name string) bool {
	return cast.ToBool(fields[name])
}

// fieldTime decodes an integer-milliseconds timestamp field. Non-numeric
// input fails soft: the caller substitutes "now" and logs, a single bad
// timestamp must not lose the whole entity.
func fieldTime(fields map[string]any, name string) (time.Time, error) {
	value, ok := fields[name]
	if !ok || value == nil {
		return time.Time{}, errors.Wrapf(errs.DecodeError, "missing field %q", name)
	}
	ms, err := cast.ToInt64E(value)
	if err != nil {
		return time.Time{}, errors.Wrapf(errs.DecodeError, "field %q is not integer milliseconds: %v", name, value)
	}
	return time.UnixMilli(ms), nil
}

// fieldAddress decodes an address field.
func fieldAddress(fields map[string]any, name string) (types.Address, error) {
	value, ok := fields[name]
	if !ok {
		return types.Address{}, errors.Wrapf(errs.DecodeError, "missing field %q", name)
	}
	addr, err := types.ParseAddress(cast.ToString(value))
	if err != nil {
		return types.Address{}, errors.Wrapf(errs.DecodeError, "field %q is not an address: %v", name, value)
	}
	return addr, nil
}

// fieldList decodes a collection field, preserving source order. Absent
// collections decode to an empty list.
func fieldList(fields map[string]any, name string) []any {
	value, ok := fields[name]
	if !ok || value == nil {
		return nil
	}
	list, _ := value.([]any)
	return list
}

// unwrapRecord unwraps one element of a nested-struct collection. The node
// renders nested structs either as the bare field record or wrapped in a
// {type, fields} envelope.
func unwrapRecord(value any) (map[string]any, bool) {
	record, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	if inner, ok := record["fields"].(map[string]any); ok {
		return inner, true
	}
	return record, true
}

// fieldHandle decodes an associative-table handle field to the table's
// object id. Handles render as {fields: {id: {id: "0x.."}, size: N}}.
func fieldHandle(fields map[string]any, name string) (types.ObjectID, error) {
	record, ok := unwrapRecord(fields[name])
	if !ok {
		return types.ObjectID{}, errors.Wrapf(errs.DecodeError, "missing table handle %q", name)
	}
	idValue := record["id"]
	if idRecord, ok := idValue.(map[string]any); ok {
		idValue = idRecord["id"]
	}
	id, err := types.ParseObjectID(cast.ToString(idValue))
	if err != nil {
		return types.ObjectID{}, errors.Wrapf(errs.DecodeError, "table handle %q has no object id", name)
	}
	return id, nil
}

// objectUID decodes the object's own "id" field.
func objectUID(fields map[string]any) (types.ObjectID, error) {
	idValue := fields["id"]
	if idRecord, ok := idValue.(map[string]any); ok {
		idValue = idRecord["id"]
	}
	id, err := types.ParseObjectID(cast.ToString(idValue))
	if err != nil {
		return types.ObjectID{}, errors.Wrap(errs.DecodeError, "missing object id field")
	}
	return id, nil
}
