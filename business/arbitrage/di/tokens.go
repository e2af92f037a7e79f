// Package di declares the dependency injection tokens the arbitrage
// context's services are registered and resolved under.
package di

import (
	"github.com/rohitdayanand/polykalshi-bridge/business/arbitrage/app"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
)

const (
	Evaluator           = "arbitrage.evaluator"
	PairRegistry         = "arbitrage.pairRegistry"
	ArbitrageManager     = "arbitrage.manager"
	SettingsCoordinator  = "arbitrage.settingsCoordinator"
	Reporter             = "arbitrage.reporter"
)

// GetEvaluator resolves the ArbitrageEvaluator singleton.
func GetEvaluator(sr di.ServiceRegistry) *app.Evaluator {
	return di.Resolve[*app.Evaluator](sr, Evaluator)
}

// GetPairRegistry resolves the PairRegistry singleton.
func GetPairRegistry(sr di.ServiceRegistry) *app.PairRegistry {
	return di.Resolve[*app.PairRegistry](sr, PairRegistry)
}

// GetArbitrageManager resolves the ArbitrageManager singleton.
func GetArbitrageManager(sr di.ServiceRegistry) *app.ArbitrageManager {
	return di.Resolve[*app.ArbitrageManager](sr, ArbitrageManager)
}

// GetSettingsCoordinator resolves the SettingsCoordinator singleton.
func GetSettingsCoordinator(sr di.ServiceRegistry) *app.SettingsCoordinator {
	return di.Resolve[*app.SettingsCoordinator](sr, SettingsCoordinator)
}

// GetReporter resolves the Reporter singleton.
func GetReporter(sr di.ServiceRegistry) app.Reporter {
	return di.Resolve[app.Reporter](sr, Reporter)
}
