package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

type getEventRequest struct {
	Id string `params:"id"`
}

func (r getEventRequest) Validate() error {
	if r.Id == "" {
		return errs.WithPublicMessage(errors.New("'id' is required"), "validation error")
	}
	return nil
}

type getEventResponse = HttpResponse[entity.Event]

func (h *HttpHandler) GetEvent(ctx *fiber.Ctx) (err error) {
	var req getEventRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	id, err := resolveObjectID(req.Id)
	if err != nil {
		return errors.WithStack(err)
	}

	event, err := h.usecase.ResolveEvent(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(fiber.ErrNotFound, "event not found")
		}
		return errors.Wrap(err, "error during ResolveEvent")
	}

	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getEventResponse{
		Result: lo.ToPtr(*event),
	}))
}
