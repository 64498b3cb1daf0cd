package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

type getFeedRequest struct {
	Wallet string `params:"wallet"`
}

func (r getFeedRequest) Validate() error {
	if r.Wallet == "" {
		return errs.WithPublicMessage(errors.New("'wallet' is required"), "validation error")
	}
	return nil
}

type getFeedResult struct {
	Notifications []entity.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

type getFeedResponse = HttpResponse[getFeedResult]

// GetFeed returns the user's notification feed and keeps their ingestion
// session alive: the first request after login starts the polling loop.
func (h *HttpHandler) GetFeed(ctx *fiber.Ctx) (err error) {
	var req getFeedRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	addr, err := resolveAddress(req.Wallet)
	if err != nil {
		return errors.WithStack(err)
	}

	h.sessions.Acquire(addr)

	feed, err := h.usecase.GetFeed(ctx.UserContext(), addr)
	if err != nil {
		return errors.Wrap(err, "error during GetFeed")
	}

	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getFeedResponse{
		Result: lo.ToPtr(getFeedResult{
			Notifications: feed.Notifications,
			Unread:        feed.Unread(),
		}),
	}))
}
