// Package polymarket wires venue P's application services (BookStore,
// Decoder, TickerPublisher, WebSocket Client) into the shared monolith
// container.
package polymarket

import (
	"context"
	"fmt"

	"github.com/rohitdayanand/polykalshi-bridge/business/polymarket/app"
	polymarketdi "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/di"
	ws "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/infra/ws"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
	"github.com/rohitdayanand/polykalshi-bridge/internal/ingestqueue"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/rohitdayanand/polykalshi-bridge/internal/monolith"
	"github.com/rohitdayanand/polykalshi-bridge/internal/ratelimit"
)

// Module is the venue P bounded context.
type Module struct{}

// RegisterServices registers venue P's singletons into c, lazily
// constructed on first resolution so registration order across modules
// doesn't matter.
func (Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, polymarketdi.BookStore, func(sr di.ServiceRegistry) *app.BookStore {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		return app.NewBookStore(log)
	})

	di.RegisterToken(c, polymarketdi.IngestQueue, func(sr di.ServiceRegistry) *ingestqueue.Queue[[]byte] {
		cfg := resolveConfig(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		return ingestqueue.New[[]byte]("polymarket", cfg.Ingest.QueueCapacity, log)
	})

	di.RegisterToken(c, polymarketdi.Decoder, func(sr di.ServiceRegistry) *app.Decoder {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		books := polymarketdi.GetBookStore(sr)
		bus := resolveEventBus(sr)
		return app.NewDecoder(log, books, bus)
	})

	di.RegisterToken(c, polymarketdi.TickerPublisher, func(sr di.ServiceRegistry) *app.TickerPublisher {
		cfg := resolveConfig(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		books := polymarketdi.GetBookStore(sr)
		bus := resolveEventBus(sr)
		return app.NewTickerPublisher(log, books, bus, cfg.Arbitrage.PublishInterval())
	})

	di.RegisterToken(c, polymarketdi.Client, func(sr di.ServiceRegistry) *ws.Client {
		cfg := resolveConfig(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		bus := resolveEventBusConcrete(sr)
		queue := polymarketdi.GetIngestQueue(sr)

		client, err := ws.NewClient("polymarket-primary", ws.Config{
			URL:                cfg.VenueP.WebSocketURL,
			SubscribeRateLimit: ratelimit.NewWithBurst(5, 10),
		}, log, bus, queue)
		if err != nil {
			// RegisterToken's factory has no error return; a construction
			// failure here means a fatal configuration error, so surface it
			// loudly rather than silently resolving to nil.
			panic(fmt.Sprintf("polymarket: construct client: %v", err))
		}
		return client
	})

	return nil
}

// Startup connects the venue P client and starts its consumer loop and
// ticker publisher. It sends no per-asset subscriptions; those are sent by
// Client.AddMarket, which PairRegistry does not call when pairs are
// registered.
func (Module) Startup(ctx context.Context, m monolith.Monolith) error {
	sr := m.Services()
	queue := polymarketdi.GetIngestQueue(sr)
	decoder := polymarketdi.GetDecoder(sr)
	publisher := polymarketdi.GetTickerPublisher(sr)
	client := polymarketdi.GetClient(sr)
	log := m.Logger()

	go consumeIngest(ctx, queue, decoder, log)
	go publisher.Start(ctx)

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("polymarket: connect: %w", err)
	}
	return nil
}

func consumeIngest(ctx context.Context, queue *ingestqueue.Queue[[]byte], decoder *app.Decoder, log logger.LoggerInterface) {
	for {
		item, ok := queue.Get(ctx)
		if !ok {
			log.Info(ctx, "polymarket ingest queue drained, consumer exiting")
			return
		}
		decoder.HandleFrame(ctx, item.Frame, frameTime())
	}
}
