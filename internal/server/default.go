package server

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akdemia/akdemia/modules"
	"github.com/akdemia/akdemia/pkg/application"
	"github.com/akdemia/akdemia/pkg/configuration"
	"github.com/akdemia/akdemia/pkg/constants"
	"github.com/akdemia/akdemia/pkg/eventbus"
	"github.com/akdemia/akdemia/pkg/metrics"
	"github.com/akdemia/akdemia/pkg/middleware"
	"github.com/akdemia/akdemia/pkg/server"
)

// Default assembles the full application: database pool, event bus, every
// built-in module and the shared middleware chain.
func Default(ctx context.Context, conf *configuration.Configuration) (*server.HTTPServer, application.Application, error) {
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create database pool")
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(conf.Logger()),
		Logger:   conf.Logger(),
	})
	if err := modules.Load(app); err != nil {
		return nil, nil, errors.Wrap(err, "load modules")
	}
	conf.Logger().WithField("permissions", len(app.Permissions())).Debug("modules loaded")

	app.RegisterMiddleware(
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, pool),
		middleware.WithLogger(conf.Logger()),
	)
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	return server.NewHTTPServer(app), app, nil
}
