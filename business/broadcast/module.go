// Package broadcast wires the broadcast context's application services
// (ChannelManager, Broadcaster) and its client-facing WebSocket server into
// the shared monolith container.
package broadcast

import (
	"context"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/app"
	broadcastapp "github.com/rohitdayanand/polykalshi-bridge/business/broadcast/app"
	broadcastdi "github.com/rohitdayanand/polykalshi-bridge/business/broadcast/di"
	ws "github.com/rohitdayanand/polykalshi-bridge/business/broadcast/infra/ws"
	kalshiapp "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/app"
	polyapp "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/app"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/rohitdayanand/polykalshi-bridge/internal/monolith"
)

// clientSendTimeout bounds every individual client send, per spec.md
// §4.12's default.
const clientSendTimeout = 5 * time.Second

// Module is the broadcast bounded context.
type Module struct{}

// RegisterServices registers the broadcast context's singletons into c.
func (Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, broadcastdi.ChannelManager, func(sr di.ServiceRegistry) *broadcastapp.ChannelManager {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		return broadcastapp.NewChannelManager(log)
	})

	di.RegisterToken(c, broadcastdi.Broadcaster, func(sr di.ServiceRegistry) *broadcastapp.Broadcaster {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		channels := broadcastdi.GetChannelManager(sr)
		return broadcastapp.NewBroadcaster(log, channels, clientSendTimeout)
	})

	di.RegisterToken(c, broadcastdi.Server, func(sr di.ServiceRegistry) *ws.Server {
		cfg := resolveConfig(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		channels := broadcastdi.GetChannelManager(sr)
		return ws.NewServer(ws.Config{
			ListenAddr:       cfg.Broadcast.ListenAddr,
			ClientSendRateHz: cfg.Broadcast.ClientSendRateHz,
			ClientSendBurst:  cfg.Broadcast.ClientSendBurst,
		}, log, channels)
	})

	return nil
}

// Startup subscribes the broadcaster to every upstream ticker/alert event
// and starts the client-facing WebSocket server.
func (Module) Startup(ctx context.Context, m monolith.Monolith) error {
	sr := m.Services()
	bus := resolveEventBusConcrete(sr)
	broadcaster := broadcastdi.GetBroadcaster(sr)

	broadcaster.Subscribe(bus, kalshiapp.EventTickerUpdated, broadcastapp.ProjectKalshiTicker)
	broadcaster.Subscribe(bus, polyapp.EventTickerUpdated, broadcastapp.ProjectPolymarketTicker)
	broadcaster.SubscribeAlerts(bus, app.EventAlert)

	server := broadcastdi.GetServer(sr)
	return server.Start()
}
