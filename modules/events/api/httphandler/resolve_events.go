package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

const maxResolveBatchSize = 100

type resolveEventsRequest struct {
	Ids []string `json:"ids"`
}

func (r resolveEventsRequest) Validate() error {
	var errList []error
	if len(r.Ids) == 0 {
		errList = append(errList, errors.New("'ids' is required"))
	}
	if len(r.Ids) > maxResolveBatchSize {
		errList = append(errList, errors.Errorf("'ids' cannot exceed %d items", maxResolveBatchSize))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type resolveEventsResult struct {
	List []*entity.Event `json:"list"`
}

type resolveEventsResponse = HttpResponse[resolveEventsResult]

// ResolveEvents fetches a batch of events and joins organizer details onto
// each, in a constant number of store round trips.
func (h *HttpHandler) ResolveEvents(ctx *fiber.Ctx) (err error) {
	var req resolveEventsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	ids := make([]types.ObjectID, 0, len(req.Ids))
	for _, raw := range req.Ids {
		id, err := resolveObjectID(raw)
		if err != nil {
			return errors.WithStack(err)
		}
		ids = append(ids, id)
	}

	raws, err := h.usecase.FetchRawEvents(ctx.UserContext(), ids)
	if err != nil {
		return errors.Wrap(err, "error during FetchRawEvents")
	}
	events, err := h.usecase.ResolveEvents(ctx.UserContext(), raws)
	if err != nil {
		return errors.Wrap(err, "error during ResolveEvents")
	}

	return errors.WithStack(ctx.Status(http.StatusOK).JSON(resolveEventsResponse{
		Result: lo.ToPtr(resolveEventsResult{List: events}),
	}))
}
