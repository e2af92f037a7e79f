// Package arbitrage wires the arbitrage context's application services
// (Evaluator, PairRegistry, ArbitrageManager, SettingsCoordinator, Reporter)
// into the shared monolith container.
package arbitrage

import (
	"context"

	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/app"
	arbitragedi "github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/di"
	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/domain"
	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/infra"
	kalshidi "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/di"
	polymarketdi "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/di"
	"github.com/rohitdayanand/polykalshi-bridge/internal/config"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/rohitdayanand/polykalshi-bridge/internal/monolith"
)

// Module is the arbitrage bounded context.
type Module struct{}

// RegisterServices registers the arbitrage context's singletons into c,
// lazily constructed on first resolution. It depends on venue K's and
// venue P's BookStore tokens being registered by their own modules, but
// resolution order across RegisterServices calls does not matter since
// every token is a lazy factory.
func (Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbitragedi.Evaluator, func(sr di.ServiceRegistry) *app.Evaluator {
		cfg := resolveConfig(sr)
		return app.NewEvaluator(app.EvaluatorConfig{
			MinSpreadThreshold:   cfg.Arbitrage.MinSpreadThresholdDecimal(),
			MinTradeSize:         cfg.Arbitrage.MinTradeSizeDecimal(),
			MakerFeeTickerPrefix: cfg.VenueK.MakerFeeTickerPrefix,
		})
	})

	di.RegisterToken(c, arbitragedi.PairRegistry, func(sr di.ServiceRegistry) *app.PairRegistry {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		bus := resolveEventBusConcrete(sr)
		evaluator := arbitragedi.GetEvaluator(sr)
		kBooks := kalshidi.GetBookStore(sr)
		pBooks := polymarketdi.GetBookStore(sr)
		return app.NewPairRegistry(log, bus, evaluator, kBooks, pBooks)
	})

	di.RegisterToken(c, arbitragedi.ArbitrageManager, func(sr di.ServiceRegistry) *app.ArbitrageManager {
		cfg := resolveConfig(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		bus := resolveEventBusConcrete(sr)
		coord := resolveCoordinationBus(sr)
		registry := arbitragedi.GetPairRegistry(sr)
		evaluator := arbitragedi.GetEvaluator(sr)
		return app.NewArbitrageManager(log, bus, coord, registry, evaluator, cfg.Coordination.PrepareTimeout(), app.Settings{
			MinSpreadThreshold: cfg.Arbitrage.MinSpreadThreshold,
			MinTradeSize:       cfg.Arbitrage.MinTradeSize,
		})
	})

	di.RegisterToken(c, arbitragedi.SettingsCoordinator, func(sr di.ServiceRegistry) *app.SettingsCoordinator {
		cfg := resolveConfig(sr)
		bus := resolveEventBusConcrete(sr)
		return app.NewSettingsCoordinator(bus, cfg.Coordination.PrepareTimeout())
	})

	di.RegisterToken(c, arbitragedi.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := resolveConfig(sr)
		if cfg.App.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter()
	})

	return nil
}

// Startup starts the reporter and subscribes it to the alert stream. The
// manager and pair registry are already live once resolved (their
// subscriptions are wired in their constructors); forcing their
// resolution here ensures they exist even if nothing else resolves them
// first.
func (Module) Startup(ctx context.Context, m monolith.Monolith) error {
	sr := m.Services()
	_ = arbitragedi.GetArbitrageManager(sr) // force construction: wires dedup/settings/lifecycle subscriptions
	_ = arbitragedi.GetSettingsCoordinator(sr)

	reporter := arbitragedi.GetReporter(sr)
	if err := reporter.Start(ctx); err != nil {
		return err
	}

	bus := resolveEventBusConcrete(sr)
	bus.Subscribe(app.EventAlert, func(ctx context.Context, payload any) error {
		if opp, ok := payload.(domain.Opportunity); ok {
			reporter.Report(opp)
		}
		return nil
	})

	return nil
}

func resolveConfig(sr di.ServiceRegistry) *config.Config {
	return di.Resolve[*config.Config](sr, "config")
}

func resolveEventBusConcrete(sr di.ServiceRegistry) *eventbus.Bus {
	return di.Resolve[*eventbus.Bus](sr, "eventBus")
}

func resolveCoordinationBus(sr di.ServiceRegistry) *eventbus.CoordinationBus {
	return di.Resolve[*eventbus.CoordinationBus](sr, "coordinationBus")
}
