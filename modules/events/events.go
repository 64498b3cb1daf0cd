package events

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/suimeet/eventgraph/common/errs"
	"github.com/suimeet/eventgraph/core/objectgraph"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/internal/config"
	"github.com/suimeet/eventgraph/internal/postgres"
	"github.com/suimeet/eventgraph/modules/events/api/httphandler"
	"github.com/suimeet/eventgraph/modules/events/datagateway"
	"github.com/suimeet/eventgraph/modules/events/ingest"
	eventspostgres "github.com/suimeet/eventgraph/modules/events/repository/postgres"
	"github.com/suimeet/eventgraph/modules/events/usecase"
	"github.com/suimeet/eventgraph/pkg/logger"
)

// Module owns the notification sessions and the resources behind them.
type Module struct {
	sessions     *ingest.Manager
	cleanupFuncs []func(context.Context) error
}

func New(injector do.Injector) (*Module, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	graph := do.MustInvoke[objectgraph.Client](injector)

	var feedDg datagateway.FeedDataGateway
	var cleanupFuncs []func(context.Context) error
	switch strings.ToLower(conf.Modules.Events.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, conf.Modules.Events.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for events module")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		repo := eventspostgres.NewRepository(pg)
		if err := verifyDBVersion(ctx, repo); err != nil {
			return nil, errors.WithStack(err)
		}
		feedDg = repo
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for events module is not supported", conf.Modules.Events.Database)
	}

	accountRegistry, err := types.ParseObjectID(conf.Modules.Events.AccountRegistry)
	if err != nil {
		return nil, errors.Wrap(err, "invalid account registry object id")
	}
	packageID, err := types.ParseObjectID(conf.Modules.Events.Package)
	if err != nil {
		return nil, errors.Wrap(err, "invalid events package object id")
	}

	sessions := ingest.NewManager(ctx, graph, feedDg, ingest.Config{
		Filter: objectgraph.LogFilter{
			Package: packageID,
		},
		PollInterval: conf.Modules.Events.PollInterval,
		Lookback:     conf.Modules.Events.Lookback,
		Capacity:     conf.Modules.Events.FeedCapacity,
	})

	apiHandlers := lo.Uniq(conf.Modules.Events.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			eventsUsecase := usecase.New(graph, feedDg, accountRegistry)
			eventsHTTPHandler := httphandler.New(eventsUsecase, sessions)
			if err := eventsHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount Events API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	return &Module{
		sessions:     sessions,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

// verifyDBVersion refuses to start against a schema this code was not
// written for.
func verifyDBVersion(ctx context.Context, dg datagateway.StorageInfoDataGateway) error {
	version, err := dg.CurrentDBVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "can't get current db version")
	}
	if version != DBVersion {
		return errors.Wrapf(errs.Conflict, "db version mismatch: schema is at %d, please migrate to version %d", version, DBVersion)
	}
	return nil
}

// Shutdown stops every ingestion session and releases module resources.
func (m *Module) Shutdown(ctx context.Context) error {
	m.sessions.Shutdown()
	for _, cleanup := range m.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to clean up module resource", err)
		}
	}
	return nil
}
