package httphandler

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

type feedMutationRequest struct {
	Wallet         string `params:"wallet"`
	NotificationId string `params:"notificationId"`
}

func (r feedMutationRequest) Validate(needsNotificationId bool) error {
	var errList []error
	if r.Wallet == "" {
		errList = append(errList, errors.New("'wallet' is required"))
	}
	if needsNotificationId && r.NotificationId == "" {
		errList = append(errList, errors.New("'notificationId' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) feedMutation(ctx *fiber.Ctx, needsNotificationId bool, fn func(context.Context, types.Address, string) (*entity.Feed, error)) error {
	var req feedMutationRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(needsNotificationId); err != nil {
		return errors.WithStack(err)
	}

	addr, err := resolveAddress(req.Wallet)
	if err != nil {
		return errors.WithStack(err)
	}

	feed, err := fn(ctx.UserContext(), addr, req.NotificationId)
	if err != nil {
		return errors.Wrap(err, "error during feed mutation")
	}

	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getFeedResponse{
		Result: lo.ToPtr(getFeedResult{
			Notifications: feed.Notifications,
			Unread:        feed.Unread(),
		}),
	}))
}

func (h *HttpHandler) MarkNotificationRead(ctx *fiber.Ctx) error {
	return h.feedMutation(ctx, true, func(c context.Context, addr types.Address, id string) (*entity.Feed, error) {
		return h.usecase.MarkNotificationRead(c, addr, id)
	})
}

func (h *HttpHandler) MarkAllNotificationsRead(ctx *fiber.Ctx) error {
	return h.feedMutation(ctx, false, func(c context.Context, addr types.Address, _ string) (*entity.Feed, error) {
		return h.usecase.MarkAllNotificationsRead(c, addr)
	})
}

func (h *HttpHandler) DeleteNotification(ctx *fiber.Ctx) error {
	return h.feedMutation(ctx, true, func(c context.Context, addr types.Address, id string) (*entity.Feed, error) {
		return h.usecase.DeleteNotification(c, addr, id)
	})
}

func (h *HttpHandler) ClearNotifications(ctx *fiber.Ctx) error {
	return h.feedMutation(ctx, false, func(c context.Context, addr types.Address, _ string) (*entity.Feed, error) {
		return h.usecase.ClearNotifications(c, addr)
	})
}
