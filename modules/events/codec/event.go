package codec

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/entity"
	"github.com/suimeet/eventgraph/pkg/logger"
	"github.com/suimeet/eventgraph/pkg/logger/slogx"
)

// DecodeEvent decodes a raw event object into a typed Event. The organizer
// list is decoded as addresses only; joining Account details is the
// resolver's job.
func DecodeEvent(ctx context.Context, raw *types.RawObject) (*entity.Event, error) {
	if raw == nil {
		return nil, errors.Wrap(errs.DecodeError, "raw event object is nil")
	}
	fields := raw.Fields

	id, err := objectUID(fields)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	startTime := decodeTimeTolerant(ctx, fields, "start_time", id)
	endTime := decodeTimeTolerant(ctx, fields, "end_time", id)

	maxAttendees, err := fieldUint64(fields, "max_attendees")
	if err != nil {
		return nil, errors.Wrapf(err, "event %s", id)
	}
	attendeesCount, err := fieldUint64(fields, "attendees_count")
	if err != nil {
		return nil, errors.Wrapf(err, "event %s", id)
	}
	if attendeesCount > maxAttendees {
		return nil, errors.Wrapf(errs.DecodeError, "event %s: attendees_count %d exceeds max_attendees %d", id, attendeesCount, maxAttendees)
	}
	checkedInCount, err := fieldUint64(fields, "checked_in_count")
	if err != nil {
		return nil, errors.Wrapf(err, "event %s", id)
	}

	organizers, err := decodeOrganizerAddresses(fields)
	if err != nil {
		return nil, errors.Wrapf(err, "event %s", id)
	}

	registrationFields, err := decodeRegistrationFields(fields)
	if err != nil {
		return nil, errors.Wrapf(err, "event %s", id)
	}

	ticketTiers, err := decodeTicketTiers(fields)
	if err != nil {
		return nil, errors.Wrapf(err, "event %s", id)
	}

	attendeeTable, err := fieldHandle(fields, "attendees")
	if err != nil {
		return nil, errors.Wrapf(err, "event %s", id)
	}

	var tags []string
	for _, tag := range fieldList(fields, "tags") {
		tags = append(tags, anyToText(tag))
	}

	status, _ := fieldUint64(fields, "status")

	return &entity.Event{
		ID:                 id,
		Title:              fieldText(fields, "title"),
		Description:        fieldText(fields, "description"),
		Location:           fieldText(fields, "location"),
		StartTime:          startTime,
		EndTime:            endTime,
		MaxAttendees:       maxAttendees,
		AttendeesCount:     attendeesCount,
		CheckedInCount:     checkedInCount,
		OrganizerAddresses: organizers,
		RegistrationFields: registrationFields,
		TicketTiers:        ticketTiers,
		NFTConfig:          decodeNFTConfig(fields),
		Tags:               tags,
		Status:             entity.EventStatus(status),
		AttendeeTable:      attendeeTable,
	}, nil
}

// decodeTimeTolerant substitutes "now" for malformed timestamps instead of
// failing the entity.
func decodeTimeTolerant(ctx context.Context, fields map[string]any, name string, id types.ObjectID) time.Time {
	t, err := fieldTime(fields, name)
	if err != nil {
		logger.WarnContext(ctx, "malformed timestamp field, substituting current time",
			slogx.Stringer("object", id),
			slogx.String("field", name),
			slogx.Error(err),
		)
		return time.Now()
	}
	return t
}

func decodeOrganizerAddresses(fields map[string]any) ([]types.Address, error) {
	list, ok := fields["organizers"].([]any)
	if !ok {
		return nil, errors.Wrap(errs.DecodeError, "missing field \"organizers\"")
	}
	organizers := make([]types.Address, 0, len(list))
	for _, item := range list {
		addr, err := types.ParseAddress(cast.ToString(item))
		if err != nil {
			return nil, errors.Wrapf(errs.DecodeError, "malformed organizer address %v", item)
		}
		organizers = append(organizers, addr)
	}
	return organizers, nil
}

// decodeRegistrationFields preserves source order: the field list's position
// is the positional key for every attendee's stored value array.
func decodeRegistrationFields(fields map[string]any) ([]entity.RegistrationField, error) {
	list := fieldList(fields, "registration_fields")
	out := make([]entity.RegistrationField, 0, len(list))
	for i, item := range list {
		record, ok := unwrapRecord(item)
		if !ok {
			return nil, errors.Wrapf(errs.DecodeError, "registration field %d is not a record", i)
		}
		name := fieldText(record, "name")
		if name == "" {
			return nil, errors.Wrapf(errs.DecodeError, "registration field %d has no name", i)
		}
		out = append(out, entity.RegistrationField{
			Name:     name,
			Type:     fieldText(record, "field_type"),
			Required: fieldBool(record, "required"),
		})
	}
	return out, nil
}

func decodeTicketTiers(fields map[string]any) ([]entity.TicketTier, error) {
	list := fieldList(fields, "ticket_tiers")
	out := make([]entity.TicketTier, 0, len(list))
	for i, item := range list {
		record, ok := unwrapRecord(item)
		if !ok {
			return nil, errors.Wrapf(errs.DecodeError, "ticket tier %d is not a record", i)
		}
		price, err := decimal.NewFromString(cast.ToString(record["price"]))
		if err != nil {
			return nil, errors.Wrapf(errs.DecodeError, "ticket tier %d has malformed price %v", i, record["price"])
		}
		maxQuantity, _ := fieldUint64(record, "max_quantity")
		sold, _ := fieldUint64(record, "sold")
		out = append(out, entity.TicketTier{
			Name:        fieldText(record, "name"),
			Price:       price,
			MaxQuantity: maxQuantity,
			Sold:        sold,
		})
	}
	return out, nil
}

// decodeNFTConfig decodes the optional NFT configuration. Absence decodes to
// the explicit disabled sentinel, not nil.
func decodeNFTConfig(fields map[string]any) entity.NFTConfig {
	record, ok := unwrapRecord(fields["nft_config"])
	if !ok {
		return entity.NFTConfigDisabled
	}
	return entity.NFTConfig{
		Enabled:     true,
		Name:        fieldText(record, "name"),
		Description: fieldText(record, "description"),
		ImageURL:    fieldText(record, "image_url"),
	}
}
