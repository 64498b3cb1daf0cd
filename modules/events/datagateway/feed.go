package datagateway

import (
	"context"

	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

// FeedDataGateway persists per-user notification feeds. State is keyed by the
// user's address; implementations must never leak one user's feed into
// another's.
type FeedDataGateway interface {
	// GetFeed returns the persisted feed for the user. Returns errs.NotFound
	// when the user has no persisted state yet.
	GetFeed(ctx context.Context, user types.Address) (*entity.Feed, error)

	// SaveFeed replaces the user's persisted feed.
	SaveFeed(ctx context.Context, user types.Address, feed *entity.Feed) error

	// DeleteFeed removes the user's persisted feed.
	DeleteFeed(ctx context.Context, user types.Address) error
}

// StorageInfoDataGateway exposes schema metadata for startup checks.
type StorageInfoDataGateway interface {
	// CurrentDBVersion returns the schema migration version the storage is
	// currently at.
	CurrentDBVersion(ctx context.Context) (int64, error)
}
