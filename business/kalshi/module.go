// Package kalshi wires venue K's application services (BookStore, Decoder,
// TickerPublisher, WebSocket Client) into the shared monolith container.
package kalshi

import (
	"context"
	"fmt"

	"github.com/rohitdayanand/polykalshi-bridge/business/kalshi/app"
	kalshidi "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/di"
	ws "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/infra/ws"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
	"github.com/rohitdayanand/polykalshi-bridge/internal/httpclient"
	"github.com/rohitdayanand/polykalshi-bridge/internal/ingestqueue"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/rohitdayanand/polykalshi-bridge/internal/monolith"
	"github.com/rohitdayanand/polykalshi-bridge/internal/ratelimit"
)

// Module is the venue K bounded context.
type Module struct{}

// RegisterServices registers venue K's singletons into c, lazily
// constructed on first resolution so registration order across modules
// doesn't matter.
func (Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, kalshidi.BookStore, func(sr di.ServiceRegistry) *app.BookStore {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		return app.NewBookStore(log)
	})

	di.RegisterToken(c, kalshidi.IngestQueue, func(sr di.ServiceRegistry) *ingestqueue.Queue[[]byte] {
		cfg := resolveConfig(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		return ingestqueue.New[[]byte]("kalshi", cfg.Ingest.QueueCapacity, log)
	})

	di.RegisterToken(c, kalshidi.Decoder, func(sr di.ServiceRegistry) *app.Decoder {
		cfg := resolveConfig(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		books := kalshidi.GetBookStore(sr)
		bus := resolveEventBus(sr)

		httpClient, err := httpclient.NewInstrumentedClient()
		var bootstrap *app.Bootstrapper
		if err != nil {
			log.Warn(context.Background(), "kalshi: failed to construct bootstrap HTTP client, ticker_v2 bootstrap disabled", "error", err.Error())
		} else {
			bootstrap = app.NewBootstrapper(log, httpClient, cfg.VenueK.TickerBootstrapURL)
		}
		return app.NewDecoder(log, books, bus, bootstrap)
	})

	di.RegisterToken(c, kalshidi.TickerPublisher, func(sr di.ServiceRegistry) *app.TickerPublisher {
		cfg := resolveConfig(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		books := kalshidi.GetBookStore(sr)
		bus := resolveEventBus(sr)
		return app.NewTickerPublisher(log, books, bus, cfg.Arbitrage.PublishInterval())
	})

	di.RegisterToken(c, kalshidi.Client, func(sr di.ServiceRegistry) *ws.Client {
		cfg := resolveConfig(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		bus := resolveEventBusConcrete(sr)
		queue := kalshidi.GetIngestQueue(sr)

		client, err := ws.NewClient("kalshi-primary", ws.Config{
			URL:                cfg.VenueK.WebSocketURL,
			KeyID:              cfg.VenueK.KeyID,
			PrivateKeyPath:     cfg.VenueK.PrivateKeyPath,
			MaxReconnects:      cfg.VenueK.MaxReconnects,
			ReconnectDelay:     cfg.VenueK.ReconnectDelay,
			PingInterval:       cfg.VenueK.PingInterval,
			SubscribeRateLimit: ratelimit.NewWithBurst(5, 10),
		}, log, bus, queue)
		if err != nil {
			// RegisterToken's factory has no error return; a construction
			// failure here means a fatal configuration error (bad key path),
			// so surface it loudly rather than silently resolving to nil.
			panic(fmt.Sprintf("kalshi: construct client: %v", err))
		}
		return client
	})

	return nil
}

// Startup connects the venue K client and starts its consumer loop and
// ticker publisher.
func (Module) Startup(ctx context.Context, m monolith.Monolith) error {
	sr := m.Services()
	queue := kalshidi.GetIngestQueue(sr)
	decoder := kalshidi.GetDecoder(sr)
	publisher := kalshidi.GetTickerPublisher(sr)
	client := kalshidi.GetClient(sr)
	log := m.Logger()

	go consumeIngest(ctx, queue, decoder, log)
	go publisher.Start(ctx)

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("kalshi: connect: %w", err)
	}
	return nil
}

func consumeIngest(ctx context.Context, queue *ingestqueue.Queue[[]byte], decoder *app.Decoder, log logger.LoggerInterface) {
	for {
		item, ok := queue.Get(ctx)
		if !ok {
			log.Info(ctx, "kalshi ingest queue drained, consumer exiting")
			return
		}
		decoder.HandleFrame(ctx, item.Frame, frameTime())
	}
}
