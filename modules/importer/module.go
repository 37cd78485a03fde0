package importer

import (
	"github.com/redis/go-redis/v9"

	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
	"github.com/akdemia/akdemia/modules/importer/infrastructure/persistence"
	"github.com/akdemia/akdemia/modules/importer/permissions"
	"github.com/akdemia/akdemia/modules/importer/presentation/controllers"
	"github.com/akdemia/akdemia/modules/importer/services"
	"github.com/akdemia/akdemia/pkg/application"
	"github.com/akdemia/akdemia/pkg/configuration"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "importer"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	sessions, err := sessionRepository(conf)
	if err != nil {
		return err
	}

	resolver := services.NewRelationResolver(app.ImportTargets(), conf.Import.FuzzyThreshold)
	committer := services.NewBatchCommitter(
		services.NewFieldCoercer(resolver),
		services.NewDuplicateDetector(),
	)
	app.RegisterServices(services.NewImportService(
		app.ImportTargets(),
		sessions,
		committer,
		app.EventPublisher(),
		conf.Import,
	))
	app.RegisterControllers(controllers.NewImportController(app))
	app.RegisterPermissions(permissions.All...)
	return nil
}

// sessionRepository picks the session store. Redis keeps sessions across
// restarts and stateless workers; without it the module still runs single
// process.
func sessionRepository(conf *configuration.Configuration) (importsession.Repository, error) {
	if conf.RedisURL == "" {
		return persistence.NewMemorySessionRepository(), nil
	}
	opts, err := redis.ParseURL(conf.RedisURL)
	if err != nil {
		opts = &redis.Options{Addr: conf.RedisURL}
	}
	return persistence.NewRedisSessionRepository(redis.NewClient(opts)), nil
}
