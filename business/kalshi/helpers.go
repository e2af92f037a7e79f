package kalshi

import (
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/kalshi/app"
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

func resolveEventBus(sr di.ServiceRegistry) app.EventPublisher {
	return resolveEventBusConcrete(sr)
}

func frameTime() time.Time {
	return time.Now()
}
