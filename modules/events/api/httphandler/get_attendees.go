package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

type getAttendeesRequest struct {
	Id string `params:"id"`
}

func (r getAttendeesRequest) Validate() error {
	if r.Id == "" {
		return errs.WithPublicMessage(errors.New("'id' is required"), "validation error")
	}
	return nil
}

type getAttendeesResult struct {
	List    []*entity.AttendeeRecord `json:"list"`
	Summary entity.AttendeeSummary   `json:"summary"`
}

type getAttendeesResponse = HttpResponse[getAttendeesResult]

func (h *HttpHandler) GetAttendees(ctx *fiber.Ctx) (err error) {
	var req getAttendeesRequest
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

	records, summary, err := h.usecase.ScanAttendees(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(fiber.ErrNotFound, "event not found")
		}
		return errors.Wrap(err, "error during ScanAttendees")
	}

	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getAttendeesResponse{
		Result: lo.ToPtr(getAttendeesResult{
			List:    records,
			Summary: summary,
		}),
	}))
}
