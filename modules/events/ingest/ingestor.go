// Package ingest turns the chain's append-only log into per-user
// notification feeds: polling, relevance classification, deduplication and
// bounded persistence.
package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/objectgraph"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/datagateway"
	"github.com/suimeet/eventgraph/modules/events/entity"
	"github.com/suimeet/eventgraph/pkg/logger"
	"github.com/suimeet/eventgraph/pkg/logger/slogx"
)

const (
	// DefaultPollInterval is how often a session polls the log.
	DefaultPollInterval = 30 * time.Second

	// DefaultLookback bounds the backfill window for users with no persisted
	// watermark yet.
	DefaultLookback = 7 * 24 * time.Hour

	// DefaultCapacity caps the persisted feed. The feed is a bounded cache,
	// not an archive: entries beyond the cap are dropped.
	DefaultCapacity = 100

	// DefaultPageSize is the log-query page size per poll.
	DefaultPageSize = 100
)

// Config is the per-session ingestion configuration.
type Config struct {
	Filter       objectgraph.LogFilter
	PollInterval time.Duration
	Lookback     time.Duration
	Capacity     int
	PageSize     int
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Lookback <= 0 {
		c.Lookback = DefaultLookback
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	return c
}

// Ingestor is one user session's ingestion loop. It owns its timer and all
// in-memory state; constructing one per login and shutting it down on logout
// keeps feed state strictly session-scoped.
type Ingestor struct {
	user   types.Address
	graph  objectgraph.Client
	feedDg datagateway.FeedDataGateway
	cfg    Config

	// pollMu serializes polls: a poll already in flight is never restarted.
	pollMu sync.Mutex

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func New(user types.Address, graph objectgraph.Client, feedDg datagateway.FeedDataGateway, cfg Config) *Ingestor {
	return &Ingestor{
		user:   user,
		graph:  graph,
		feedDg: feedDg,
		cfg:    cfg.withDefaults(),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run polls the log until the context is cancelled or Shutdown is called.
// Poll failures are logged and the next tick retries; they never corrupt
// persisted state because writes only happen after a full successful pass.
func (i *Ingestor) Run(ctx context.Context) error {
	defer close(i.done)

	ctx = logger.WithContext(ctx,
		slogx.String("module", "events/ingest"),
		slogx.Stringer("user", i.user),
	)

	ticker := time.NewTicker(i.cfg.PollInterval)
	defer ticker.Stop()

	// first pass immediately, then on the interval
	if err := i.Poll(ctx); err != nil {
		logger.ErrorContext(ctx, "notification poll failed", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-i.quit:
			return nil
		case <-ticker.C:
			if err := i.Poll(ctx); err != nil {
				logger.ErrorContext(ctx, "notification poll failed", err)
			}
		}
	}
}

// Shutdown stops the session. No persistence writes happen after it returns.
func (i *Ingestor) Shutdown() {
	i.quitOnce.Do(func() {
		close(i.quit)
		<-i.done
	})
}

// Poll runs one fetch-classify-merge-persist pass. If a poll is already in
// flight the call is a no-op rather than a concurrent second pass.
func (i *Ingestor) Poll(ctx context.Context) error {
	if !i.pollMu.TryLock() {
		return nil
	}
	defer i.pollMu.Unlock()
	return i.poll(ctx)
}

func (i *Ingestor) poll(ctx context.Context) error {
	now := time.Now()

	feed, err := i.feedDg.GetFeed(ctx, i.user)
	if err != nil {
		if !errors.Is(err, errs.NotFound) {
			return errors.Wrap(err, "failed to load persisted feed")
		}
		feed = &entity.Feed{Notifications: []entity.Notification{}}
	}

	watermark := feed.LastCheckedAt()
	if feed.LastCheckedAtMs == 0 {
		watermark = now.Add(-i.cfg.Lookback)
	}

	// the store cannot filter the log by time; the watermark cut happens here
	entries, err := i.graph.QueryLog(ctx, i.cfg.Filter, objectgraph.OrderNewestFirst, i.cfg.PageSize)
	if err != nil {
		return errors.Wrap(err, "failed to query chronological log")
	}

	seen := make(map[string]struct{}, len(feed.Notifications))
	for _, notification := range feed.Notifications {
		seen[notification.ID] = struct{}{}
	}

	events := newEventCache(i.graph)
	var fresh []entity.Notification
	for _, entry := range entries {
		if !entry.Timestamp().After(watermark) {
			continue
		}
		if _, ok := seen[entry.SyntheticID()]; ok {
			continue
		}
		notifications, err := i.classify(ctx, entry, events)
		if err != nil {
			// classification needs extra lookups; a missing or broken event
			// drops the notification, never the poll
			logger.WarnContext(ctx, "dropping unclassifiable log entry",
				slogx.String("entry", entry.SyntheticID()), slogx.Error(err))
			continue
		}
		for _, notification := range notifications {
			if _, ok := seen[notification.ID]; ok {
				continue
			}
			seen[notification.ID] = struct{}{}
			fresh = append(fresh, notification)
		}
	}

	merged := append(feed.Notifications, fresh...)
	merged = lo.UniqBy(merged, func(n entity.Notification) string { return n.ID })
	sortNotificationsDesc(merged)
	if len(merged) > i.cfg.Capacity {
		merged = merged[:i.cfg.Capacity]
	}

	feed.Notifications = merged
	// the watermark advances even when nothing new was found, so the same
	// window is never rescanned forever
	feed.LastCheckedAtMs = now.UnixMilli()

	if err := i.feedDg.SaveFeed(ctx, i.user, feed); err != nil {
		return errors.Wrap(err, "failed to persist feed")
	}
	if len(fresh) > 0 {
		logger.InfoContext(ctx, "ingested notifications",
			slogx.Int("new", len(fresh)), slogx.Int("total", len(feed.Notifications)))
	}
	return nil
}

func sortNotificationsDesc(notifications []entity.Notification) {
	// stable order for equal timestamps keeps consecutive polls idempotent
	sort.Slice(notifications, func(a, b int) bool {
		if notifications[a].Timestamp.Equal(notifications[b].Timestamp) {
			return notifications[a].ID < notifications[b].ID
		}
		return notifications[a].Timestamp.After(notifications[b].Timestamp)
	})
}
