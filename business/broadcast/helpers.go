package broadcast

import (
	"github.com/rohitdayanand/polykalshi-bridge/internal/config"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
)

func resolveConfig(sr di.ServiceRegistry) *config.Config {
	return di.Resolve[*config.Config](sr, "config")
}

func resolveEventBusConcrete(sr di.ServiceRegistry) *eventbus.Bus {
	return di.Resolve[*eventbus.Bus](sr, "eventBus")
}
