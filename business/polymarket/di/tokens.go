// Package di declares the dependency injection tokens venue P's services
// are registered and resolved under.
package di

import (
	"github.com/rohitdayanand/polykalshi-bridge/business/polymarket/app"
	ws "github.com/rohitdayanand/polykalshi-bridge/business/polymarket/infra/ws"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
	"github.com/rohitdayanand/polykalshi-bridge/internal/ingestqueue"
)

const (
	BookStore       = "polymarket.bookStore"
	Decoder         = "polymarket.decoder"
	TickerPublisher = "polymarket.tickerPublisher"
	Client          = "polymarket.client"
	IngestQueue     = "polymarket.ingestQueue"
)

// GetBookStore resolves the venue P BookStore singleton.
func GetBookStore(sr di.ServiceRegistry) *app.BookStore {
	return di.Resolve[*app.BookStore](sr, BookStore)
}

// GetDecoder resolves the venue P Decoder singleton.
func GetDecoder(sr di.ServiceRegistry) *app.Decoder {
	return di.Resolve[*app.Decoder](sr, Decoder)
}

// GetTickerPublisher resolves the venue P TickerPublisher singleton.
func GetTickerPublisher(sr di.ServiceRegistry) *app.TickerPublisher {
	return di.Resolve[*app.TickerPublisher](sr, TickerPublisher)
}

// GetClient resolves the venue P WebSocket Client singleton.
func GetClient(sr di.ServiceRegistry) *ws.Client {
	return di.Resolve[*ws.Client](sr, Client)
}

// GetIngestQueue resolves the venue P raw-frame IngestQueue singleton.
func GetIngestQueue(sr di.ServiceRegistry) *ingestqueue.Queue[[]byte] {
	return di.Resolve[*ingestqueue.Queue[[]byte]](sr, IngestQueue)
}
