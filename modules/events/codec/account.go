package codec

import (
	"github.com/cockroachdb/errors"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

// DecodeAccount decodes a raw account object into a typed Account.
func DecodeAccount(raw *types.RawObject) (*entity.Account, error) {
	if raw == nil {
		return nil, errors.Wrap(errs.DecodeError, "raw account object is nil")
	}
	fields := raw.Fields

	id, err := objectUID(fields)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	owner, err := fieldAddress(fields, "owner")
	if err != nil {
		return nil, errors.Wrapf(err, "account %s", id)
	}

	eventsOrganized, _ := fieldUint64(fields, "events_organized")
	eventsAttended, _ := fieldUint64(fields, "events_attended")
	eventsHosted, _ := fieldUint64(fields, "events_hosted")
	eventsRegistered, _ := fieldUint64(fields, "events_registered")

	return &entity.Account{
		ID:               id,
		Owner:            owner,
		Name:             fieldText(fields, "name"),
		Email:            fieldText(fields, "email"),
		Bio:              fieldText(fields, "bio"),
		Twitter:          fieldText(fields, "twitter"),
		Telegram:         fieldText(fields, "telegram"),
		Website:          fieldText(fields, "website"),
		Avatar:           fieldText(fields, "avatar_url"),
		EventsOrganized:  eventsOrganized,
		EventsAttended:   eventsAttended,
		EventsHosted:     eventsHosted,
		EventsRegistered: eventsRegistered,
	}, nil
}
