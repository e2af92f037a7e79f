// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/internal/config"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// Monolith is the main application container providing access to shared
// infrastructure used by every bounded context module.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	EventBus() *eventbus.Bus
	CoordinationBus() *eventbus.CoordinationBus
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config          *config.Config
	logger          logger.LoggerInterface
	eventBus        *eventbus.Bus
	coordinationBus *eventbus.CoordinationBus
	container       di.Container
}

// New creates a new Monolith instance, wiring the shared EventBus and
// CoordinationBus that every bounded context publishes to and subscribes
// from.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	bus := eventbus.New(log)
	coordBus := eventbus.NewCoordinationBus(bus, log, time.Duration(cfg.Coordination.CleanupIntervalSeconds)*time.Second)

	container := di.NewContainer()

	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("eventBus", bus)
	container.Register("coordinationBus", coordBus)

	return &app{
		config:          cfg,
		logger:          log,
		eventBus:        bus,
		coordinationBus: coordBus,
		container:       container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) EventBus() *eventbus.Bus {
	return a.eventBus
}

func (a *app) CoordinationBus() *eventbus.CoordinationBus {
	return a.coordinationBus
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts down shared infrastructure.
func (a *app) Close() error {
	a.coordinationBus.Shutdown(context.Background())
	return nil
}
