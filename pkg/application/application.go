package application

import (
	"fmt"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/akdemia/akdemia/pkg/eventbus"
	"github.com/akdemia/akdemia/pkg/schema"
)

// Controller is a routable unit registered by a module.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module is a self-contained feature bundle that wires its services and
// controllers into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	Pool() *pgxpool.Pool
	EventPublisher() eventbus.EventBus
	Logger() *logrus.Logger
	ImportTargets() *schema.Registry

	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}

	RegisterControllers(controllers ...Controller)
	Controllers() []Controller

	RegisterPermissions(permissions ...string)
	Permissions() []string

	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	Middleware() []mux.MiddlewareFunc
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:        opts.Pool,
		eventBus:    opts.EventBus,
		logger:      opts.Logger,
		targets:     schema.NewRegistry(),
		services:    map[reflect.Type]interface{}{},
		controllers: map[string]Controller{},
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	targets     *schema.Registry
	services    map[reflect.Type]interface{}
	controllers map[string]Controller
	keys        []string
	middleware  []mux.MiddlewareFunc
	permissions []string
}

func (a *application) Pool() *pgxpool.Pool {
	return a.pool
}

func (a *application) EventPublisher() eventbus.EventBus {
	return a.eventBus
}

func (a *application) Logger() *logrus.Logger {
	return a.logger
}

// ImportTargets is the shared allow-list of entities the importer may write.
// Modules register their targets here during Register.
func (a *application) ImportTargets() *schema.Registry {
	return a.targets
}

func (a *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		a.services[serviceType] = service
	}
}

// Service returns a registered service by example value, e.g.
// app.Service(services.ImportService{}).(*services.ImportService).
func (a *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, ok := a.services[serviceType]
	if !ok {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (a *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		key := c.Key()
		if _, ok := a.controllers[key]; !ok {
			a.keys = append(a.keys, key)
		}
		a.controllers[key] = c
	}
}

func (a *application) Controllers() []Controller {
	out := make([]Controller, 0, len(a.keys))
	for _, key := range a.keys {
		out = append(out, a.controllers[key])
	}
	return out
}

func (a *application) RegisterPermissions(permissions ...string) {
	a.permissions = append(a.permissions, permissions...)
}

func (a *application) Permissions() []string {
	return a.permissions
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}

func (a *application) Middleware() []mux.MiddlewareFunc {
	return a.middleware
}
