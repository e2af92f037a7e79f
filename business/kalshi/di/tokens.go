// Package di declares the dependency injection tokens venue K's services
// are registered and resolved under.
package di

import (
	"github.com/rohitdayanand/polykalshi-bridge/business/kalshi/app"
	ws "github.com/rohitdayanand/polykalshi-bridge/business/kalshi/infra/ws"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
	"github.com/rohitdayanand/polykalshi-bridge/internal/ingestqueue"
)

const (
	BookStore       = "kalshi.bookStore"
	Decoder         = "kalshi.decoder"
	TickerPublisher = "kalshi.tickerPublisher"
	Client          = "kalshi.client"
	IngestQueue     = "kalshi.ingestQueue"
)

// GetBookStore resolves the venue K BookStore singleton.
func GetBookStore(sr di.ServiceRegistry) *app.BookStore {
	return di.Resolve[*app.BookStore](sr, BookStore)
}

// GetDecoder resolves the venue K Decoder singleton.
func GetDecoder(sr di.ServiceRegistry) *app.Decoder {
	return di.Resolve[*app.Decoder](sr, Decoder)
}

// GetTickerPublisher resolves the venue K TickerPublisher singleton.
func GetTickerPublisher(sr di.ServiceRegistry) *app.TickerPublisher {
	return di.Resolve[*app.TickerPublisher](sr, TickerPublisher)
}

// GetClient resolves the venue K WebSocket Client singleton.
func GetClient(sr di.ServiceRegistry) *ws.Client {
	return di.Resolve[*ws.Client](sr, Client)
}

// GetIngestQueue resolves the venue K raw-frame IngestQueue singleton.
func GetIngestQueue(sr di.ServiceRegistry) *ingestqueue.Queue[[]byte] {
	return di.Resolve[*ingestqueue.Queue[[]byte]](sr, IngestQueue)
}
