package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

// GetFeed returns the user's persisted notification feed. A user with no
// persisted state yet gets an empty feed, not an error.
func (u *Usecase) GetFeed(ctx context.Context, user types.Address) (*entity.Feed, error) {
	feed, err := u.feedDg.GetFeed(ctx, user)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return &entity.Feed{Notifications: []entity.Notification{}}, nil
		}
		return nil, errors.Wrap(err, "failed to load feed")
	}
	return feed, nil
}

// transformFeed loads the user's feed, applies fn and persists the result in
// a single write. All feed mutations are pure transforms over the persisted
// list.
func (u *Usecase) transformFeed(ctx context.Context, user types.Address, fn func(*entity.Feed)) (*entity.Feed, error) {
	feed, err := u.GetFeed(ctx, user)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fn(feed)
	if err := u.feedDg.SaveFeed(ctx, user, feed); err != nil {
		return nil, errors.Wrap(err, "failed to persist feed")
	}
	return feed, nil
}

// MarkNotificationRead marks one notification as read.
func (u *Usecase) MarkNotificationRead(ctx context.Context, user types.Address, notificationID string) (*entity.Feed, error) {
	return u.transformFeed(ctx, user, func(feed *entity.Feed) {
		for i := range feed.Notifications {
			if feed.Notifications[i].ID == notificationID {
				feed.Notifications[i].Read = true
			}
		}
	})
}

// MarkAllNotificationsRead marks the whole feed as read.
func (u *Usecase) MarkAllNotificationsRead(ctx context.Context, user types.Address) (*entity.Feed, error) {
	return u.transformFeed(ctx, user, func(feed *entity.Feed) {
		for i := range feed.Notifications {
			feed.Notifications[i].Read = true
		}
	})
}

// DeleteNotification removes one notification from the feed.
func (u *Usecase) DeleteNotification(ctx context.Context, user types.Address, notificationID string) (*entity.Feed, error) {
	return u.transformFeed(ctx, user, func(feed *entity.Feed) {
		feed.Notifications = lo.Reject(feed.Notifications, func(n entity.Notification, _ int) bool {
			return n.ID == notificationID
		})
	})
}

// ClearNotifications empties the feed, keeping the watermark so cleared
// entries are not re-ingested.
func (u *Usecase) ClearNotifications(ctx context.Context, user types.Address) (*entity.Feed, error) {
	return u.transformFeed(ctx, user, func(feed *entity.Feed) {
		feed.Notifications = []entity.Notification{}
	})
}
