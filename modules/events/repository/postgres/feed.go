package postgres

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/internal/postgres"
	"github.com/suimeet/eventgraph/modules/events/datagateway"
	"github.com/suimeet/eventgraph/modules/events/entity"
)

// Repository persists user feeds as one JSONB document per address.
type Repository struct {
	db postgres.DB
}

var (
	_ datagateway.FeedDataGateway        = (*Repository)(nil)
	_ datagateway.StorageInfoDataGateway = (*Repository)(nil)
)

func NewRepository(db postgres.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CurrentDBVersion(ctx context.Context) (int64, error) {
	var version int64
	var dirty bool
	err := r.db.QueryRow(ctx,
		`SELECT version, dirty FROM events_schema_migrations LIMIT 1`,
	).Scan(&version, &dirty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errors.Wrap(errs.NotFound, "no migrations applied yet")
		}
		return 0, errors.Wrap(err, "failed to query schema migration version")
	}
	if dirty {
		return 0, errors.Wrapf(errs.Conflict, "schema migration version %d is dirty", version)
	}
	return version, nil
}

func (r *Repository) GetFeed(ctx context.Context, user types.Address) (*entity.Feed, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM events_user_feeds WHERE address = $1`,
		user.String(),
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "no feed for %s", user)
		}
		return nil, errors.Wrap(err, "failed to query feed")
	}

	var feed entity.Feed
	if err := json.Unmarshal(payload, &feed); err != nil {
		return nil, errors.Wrapf(err, "malformed feed payload for %s", user)
	}
	return &feed, nil
}

func (r *Repository) SaveFeed(ctx context.Context, user types.Address, feed *entity.Feed) error {
	payload, err := json.Marshal(feed)
	if err != nil {
		return errors.Wrap(err, "failed to marshal feed")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO events_user_feeds (address, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (address) DO UPDATE SET payload = $2, updated_at = now()`,
		user.String(), payload,
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert feed")
	}
	return nil
}

func (r *Repository) DeleteFeed(ctx context.Context, user types.Address) error {
	_, err := r.db.Exec(ctx, `DELETE FROM events_user_feeds WHERE address = $1`, user.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete feed")
	}
	return nil
}
