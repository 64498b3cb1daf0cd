package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1")

	r.Get("/events/:id", h.GetEvent)
	r.Post("/events/resolve", h.ResolveEvents)
	r.Get("/events/:id/attendees", h.GetAttendees)

	r.Get("/accounts/:wallet", h.GetAccount)

	r.Get("/feed/:wallet", h.GetFeed)
	r.Post("/feed/:wallet/notifications/:notificationId/read", h.MarkNotificationRead)
	r.Post("/feed/:wallet/read-all", h.MarkAllNotificationsRead)
	r.Delete("/feed/:wallet/notifications/:notificationId", h.DeleteNotification)
	r.Delete("/feed/:wallet/notifications", h.ClearNotifications)

	return nil
}
