package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

type getAccountRequest struct {
	Wallet string `params:"wallet"`
}

func (r getAccountRequest) Validate() error {
	if r.Wallet == "" {
		return errs.WithPublicMessage(errors.New("'wallet' is required"), "validation error")
	}
	return nil
}

type getAccountResponse = HttpResponse[entity.Account]

func (h *HttpHandler) GetAccount(ctx *fiber.Ctx) (err error) {
	var req getAccountRequest
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

	account, err := h.usecase.GetAccountByAddress(ctx.UserContext(), addr)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(fiber.ErrNotFound, "account not found")
		}
		return errors.Wrap(err, "error during GetAccountByAddress")
	}

	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getAccountResponse{
		Result: lo.ToPtr(*account),
	}))
}
