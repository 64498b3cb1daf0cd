package codec

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

// DecodeAttendee decodes a raw attendee-table entry against the owning
// event's registration-field schema. The stored answers are a positional
// array; schema order is the only key, so the zip below is exactly
// schema[i].Name -> values[i].
func DecodeAttendee(ctx context.Context, eventID types.ObjectID, raw *types.RawObject, schema []entity.RegistrationField) (*entity.AttendeeRecord, error) {
	if raw == nil {
		return nil, errors.Wrap(errs.DecodeError, "raw attendee object is nil")
	}
	fields := raw.Fields

	addr, err := fieldAddress(fields, "attendee")
	if err != nil {
		return nil, errors.Wrapf(err, "attendee entry %s", raw.ID)
	}

	values := fieldList(fields, "registration_values")
	if len(values) != len(schema) {
		return nil, errors.Wrapf(errs.DecodeError,
			"attendee %s: %d registration values for a %d-field schema", addr, len(values), len(schema))
	}
	registrationValues := make(map[string]string, len(schema))
	for i, field := range schema {
		registrationValues[field.Name] = anyToText(values[i])
	}

	registeredAt := decodeTimeTolerant(ctx, fields, "registered_at", raw.ID)

	record := &entity.AttendeeRecord{
		EventID:            eventID,
		Address:            addr,
		RegistrationValues: registrationValues,
		CheckedIn:          fieldBool(fields, "checked_in"),
		RegisteredAt:       registeredAt,
		NFTMinted:          fieldBool(fields, "nft_minted"),
	}

	if record.CheckedIn {
		if checkedInAt, err := fieldTime(fields, "checked_in_at"); err == nil {
			record.CheckedInAt = &checkedInAt
		}
	}

	if tierIndex, err := fieldUint64(fields, "ticket_tier_index"); err == nil {
		record.TicketTierIndex = tierIndex
	}

	return record, nil
}
