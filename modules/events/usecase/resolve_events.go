package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/codec"
	"github.com/suimeet/eventgraph/modules/events/derive"
	"github.com/suimeet/eventgraph/modules/events/entity"
	"github.com/suimeet/eventgraph/pkg/logger"
	"github.com/suimeet/eventgraph/pkg/logger/slogx"
)

// ResolveEvents decodes raw event objects and joins organizer Account details
// onto each. Account fetching is batched across the whole input: the union of
// organizer addresses is fetched in one round trip regardless of how many
// events are being resolved.
func (u *Usecase) ResolveEvents(ctx context.Context, raws []*types.RawObject) ([]*entity.Event, error) {
	events := make([]*entity.Event, 0, len(raws))
	for _, raw := range raws {
		event, err := codec.DecodeEvent(ctx, raw)
		if err != nil {
			// one bad event must not block the others
			logger.WarnContext(ctx, "skipping undecodable event object", slogx.Error(err))
			continue
		}
		events = append(events, event)
	}

	addresses := lo.Uniq(lo.FlatMap(events, func(event *entity.Event, _ int) []types.Address {
		return event.OrganizerAddresses
	}))

	accounts, err := u.accountsByAddress(ctx, addresses)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch organizer accounts")
	}

	for _, event := range events {
		event.Organizers = lo.Map(event.OrganizerAddresses, func(addr types.Address, _ int) entity.Organizer {
			if account, ok := accounts[addr]; ok {
				return entity.OrganizerFromAccount(account)
			}
			return entity.PlaceholderOrganizer(addr)
		})
	}
	return events, nil
}

// FetchRawEvents batch-fetches raw event objects. Missing objects are
// dropped from the result, not surfaced as errors.
func (u *Usecase) FetchRawEvents(ctx context.Context, ids []types.ObjectID) ([]*types.RawObject, error) {
	raws, err := u.graph.BatchGet(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to batch-fetch events")
	}
	return lo.Filter(raws, func(raw *types.RawObject, _ int) bool { return raw != nil }), nil
}

// ResolveEvent fetches and resolves a single event.
func (u *Usecase) ResolveEvent(ctx context.Context, id types.ObjectID) (*entity.Event, error) {
	raw, err := u.graph.PointGet(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch event %s", id)
	}
	event, err := codec.DecodeEvent(ctx, raw)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	accounts, err := u.accountsByAddress(ctx, lo.Uniq(event.OrganizerAddresses))
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch organizer accounts")
	}
	event.Organizers = lo.Map(event.OrganizerAddresses, func(addr types.Address, _ int) entity.Organizer {
		if account, ok := accounts[addr]; ok {
			return entity.OrganizerFromAccount(account)
		}
		return entity.PlaceholderOrganizer(addr)
	})
	return event, nil
}

// accountsByAddress derives the account object id for every address and
// fetches all of them in a single batched round trip. Addresses whose account
// is absent or undecodable are simply missing from the result map; the caller
// substitutes placeholders.
func (u *Usecase) accountsByAddress(ctx context.Context, addresses []types.Address) (map[types.Address]*entity.Account, error) {
	accounts := make(map[types.Address]*entity.Account, len(addresses))
	if len(addresses) == 0 {
		return accounts, nil
	}

	ids := make([]types.ObjectID, 0, len(addresses))
	valid := make([]types.Address, 0, len(addresses))
	for _, addr := range addresses {
		id, err := derive.AccountID(u.accountRegistry, addr)
		if err != nil {
			logger.WarnContext(ctx, "skipping underivable account address",
				slogx.Stringer("address", addr), slogx.Error(err))
			continue
		}
		ids = append(ids, id)
		valid = append(valid, addr)
	}

	raws, err := u.graph.BatchGet(ctx, ids)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for i, raw := range raws {
		if raw == nil {
			continue
		}
		account, err := codec.DecodeAccount(raw)
		if err != nil {
			logger.WarnContext(ctx, "skipping undecodable account object",
				slogx.Stringer("address", valid[i]), slogx.Error(err))
			continue
		}
		accounts[valid[i]] = account
	}
	return accounts, nil
}

// GetAccountByAddress resolves one owner address to its Account through the
// same derive-then-fetch path. Returns errs.NotFound when no account exists.
func (u *Usecase) GetAccountByAddress(ctx context.Context, addr types.Address) (*entity.Account, error) {
	id, err := derive.AccountID(u.accountRegistry, addr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	raw, err := u.graph.PointGet(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch account for %s", addr)
	}
	account, err := codec.DecodeAccount(raw)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return account, nil
}
