package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/codec"
	"github.com/suimeet/eventgraph/modules/events/entity"
	"github.com/suimeet/eventgraph/pkg/logger"
	"github.com/suimeet/eventgraph/pkg/logger/slogx"
)

// ScanAttendees reconstructs an event's full attendee roster. Each table
// entry is decoded against the event's own registration-field schema, then
// joined with the attendee's Account through the shared batched path.
// Entries whose value object is missing or undecodable are skipped with a
// warning; a partial roster beats no roster.
func (u *Usecase) ScanAttendees(ctx context.Context, eventID types.ObjectID) ([]*entity.AttendeeRecord, entity.AttendeeSummary, error) {
	var summary entity.AttendeeSummary

	rawEvent, err := u.graph.PointGet(ctx, eventID)
	if err != nil {
		return nil, summary, errors.Wrapf(err, "failed to fetch event %s", eventID)
	}
	event, err := codec.DecodeEvent(ctx, rawEvent)
	if err != nil {
		return nil, summary, errors.WithStack(err)
	}

	children, err := u.graph.EnumerateChildren(ctx, event.AttendeeTable)
	if err != nil {
		return nil, summary, errors.Wrapf(err, "failed to enumerate attendee table of event %s", eventID)
	}

	// the table's keys are attendee addresses and must be unique; a duplicate
	// means store corruption, not something to silently overwrite
	keys := lo.CountValuesBy(children, func(c types.ChildRef) string { return c.Key })
	for key, count := range keys {
		if count > 1 {
			return nil, summary, errors.Wrapf(errs.Conflict, "attendee table of event %s has %d entries for key %q", eventID, count, key)
		}
	}

	ids := lo.Map(children, func(c types.ChildRef, _ int) types.ObjectID { return c.ObjectID })
	raws, err := u.graph.BatchGet(ctx, ids)
	if err != nil {
		return nil, summary, errors.Wrap(err, "failed to batch-fetch attendee entries")
	}

	records := make([]*entity.AttendeeRecord, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			logger.WarnContext(ctx, "attendee entry object missing, skipping",
				slogx.Stringer("event", eventID), slogx.String("key", children[i].Key))
			continue
		}
		record, err := codec.DecodeAttendee(ctx, eventID, raw, event.RegistrationFields)
		if err != nil {
			logger.WarnContext(ctx, "skipping undecodable attendee entry",
				slogx.Stringer("event", eventID), slogx.String("key", children[i].Key), slogx.Error(err))
			continue
		}
		if record.TicketTierIndex > 0 && record.TicketTierIndex >= uint64(len(event.TicketTiers)) {
			logger.WarnContext(ctx, "attendee references ticket tier out of range, skipping",
				slogx.Stringer("event", eventID), slogx.Stringer("attendee", record.Address),
				slogx.Uint64("tier_index", record.TicketTierIndex))
			continue
		}
		records = append(records, record)
	}

	// join profiles with the same batched derive-then-fetch path as the
	// organizer join
	addresses := lo.Map(records, func(r *entity.AttendeeRecord, _ int) types.Address { return r.Address })
	accounts, err := u.accountsByAddress(ctx, lo.Uniq(addresses))
	if err != nil {
		return nil, summary, errors.Wrap(err, "failed to fetch attendee accounts")
	}
	for _, record := range records {
		record.Account = accounts[record.Address]
	}

	summary.Total = len(records)
	for _, record := range records {
		if record.CheckedIn {
			summary.CheckedIn++
		}
		if record.NFTMinted {
			summary.NFTMinted++
		}
	}
	return records, summary, nil
}
