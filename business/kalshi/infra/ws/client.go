package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/internal/apperror"
	"github.com/rohitdayanand/polykalshi-bridge/internal/circuitbreaker"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/rohitdayanand/polykalshi-bridge/internal/ratelimit"
	"github.com/rohitdayanand/polykalshi-bridge/internal/wsconn"
)

const upgradePath = "/trade-api/ws/v2"

// Sink receives the verbatim frames a Client reads off the wire. No parsing
// happens in Client; that is the Decoder's job downstream of the
// IngestQueue.
type Sink interface {
	Put(ctx context.Context, frame []byte, metadata map[string]any)
}

// Config configures a venue K Client.
type Config struct {
	URL                string
	KeyID              string
	PrivateKeyPath     string
	MaxReconnects      int
	ReconnectDelay     time.Duration
	PingInterval       time.Duration
	SubscribeRateLimit *ratelimit.Limiter
}

// Client owns one outbound WebSocket session to venue K: it authenticates,
// subscribes, forwards verbatim frames into a Sink, and exposes addTicker/
// removeTicker for dynamic subscription management.
type Client struct {
	log    logger.LoggerInterface
	events *eventbus.Bus
	sink   Sink
	conn   *wsconn.Client
	signer *Signer
	cb     *circuitbreaker.CircuitBreaker[struct{}]
	limit  *ratelimit.Limiter

	clientID string

	idSeq atomic.Int64

	mu      sync.Mutex
	tickers map[string]bool
}

// NewClient constructs a venue K Client. clientID identifies this
// connection in emitted venue.connection_status/venue.client_error events.
func NewClient(clientID string, cfg Config, log logger.LoggerInterface, events *eventbus.Bus, sink Sink) (*Client, error) {
	signer, err := NewSigner(cfg.KeyID, cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("construct venue K signer: %w", err)
	}

	wsCfg := wsconn.DefaultConfig(cfg.URL, clientID)
	if cfg.MaxReconnects > 0 {
		wsCfg.MaxReconnects = cfg.MaxReconnects
	}
	if cfg.ReconnectDelay > 0 {
		wsCfg.InitialBackoff = cfg.ReconnectDelay
	}
	if cfg.PingInterval > 0 {
		wsCfg.PingInterval = cfg.PingInterval
	}
	wsCfg.HeaderFunc = func() (http.Header, error) {
		return signer.Headers(http.MethodGet, upgradePath)
	}

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return nil, fmt.Errorf("construct venue K transport: %w", err)
	}

	c := &Client{
		log:      log,
		events:   events,
		sink:     sink,
		conn:     conn,
		signer:   signer,
		cb:       circuitbreaker.New[struct{}](circuitbreaker.DefaultConfig(clientID + "-connect")),
		limit:    cfg.SubscribeRateLimit,
		clientID: clientID,
		tickers:  make(map[string]bool),
	}

	conn.OnMessage(c.onMessage)
	conn.OnStateChange(c.onStateChange)
	return c, nil
}

// Connect dials the venue, retrying with the circuit breaker guarding
// repeated failed auth/connect attempts so a misconfigured key doesn't spin
// forever hammering the venue.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.conn.ConnectWithRetry(ctx)
	})
	if err != nil {
		c.events.Publish(ctx, "venue.client_error", map[string]any{
			"client_id": c.clientID,
			"error":     err.Error(),
		})
		return apperror.External(apperror.CodeAuthError, "venue_k_client", err)
	}
	c.events.Publish(ctx, "venue.connection_status", map[string]any{
		"client_id": c.clientID,
		"connected": true,
	})
	return nil
}

// Subscribe sends the initial subscription frame for the given market
// tickers over the orderbook_delta and ticker_v2 channels.
func (c *Client) Subscribe(ctx context.Context, marketTickers []string) error {
	c.mu.Lock()
	for _, t := range marketTickers {
		c.tickers[t] = true
	}
	c.mu.Unlock()

	return c.send(ctx, map[string]any{
		"id":  c.nextID(),
		"cmd": "subscribe",
		"params": map[string]any{
			"channels":       []string{"orderbook_delta", "ticker_v2"},
			"market_tickers": marketTickers,
		},
	})
}

// AddTicker dynamically adds a market ticker to the live subscription.
func (c *Client) AddTicker(ctx context.Context, marketTicker string) error {
	if c.limit != nil {
		if err := c.limit.Wait(ctx); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.tickers[marketTicker] = true
	c.mu.Unlock()

	return c.send(ctx, map[string]any{
		"id":  c.nextID(),
		"cmd": "subscribe",
		"params": map[string]any{
			"channels":       []string{"orderbook_delta", "ticker_v2"},
			"market_tickers": []string{marketTicker},
		},
	})
}

// RemoveTicker dynamically removes a market ticker from the live
// subscription.
func (c *Client) RemoveTicker(ctx context.Context, marketTicker string) error {
	if c.limit != nil {
		if err := c.limit.Wait(ctx); err != nil {
			return err
		}
	}
	c.mu.Lock()
	delete(c.tickers, marketTicker)
	c.mu.Unlock()

	return c.send(ctx, map[string]any{
		"id":  c.nextID(),
		"cmd": "unsubscribe",
		"params": map[string]any{
			"market_tickers": []string{marketTicker},
		},
	})
}

// Close tears down the underlying transport.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal venue K command: %w", err)
	}
	if err := c.conn.Send(ctx, data); err != nil {
		return apperror.Internal(apperror.CodeWebSocketSendError, "venue_k_client", err)
	}
	return nil
}

func (c *Client) nextID() int64 {
	return c.idSeq.Add(1)
}

func (c *Client) onMessage(ctx context.Context, msg []byte) {
	c.sink.Put(ctx, msg, map[string]any{"client_id": c.clientID})
}

func (c *Client) onStateChange(state wsconn.State, err error) {
	connected := state == wsconn.StateConnected
	c.events.Publish(context.Background(), "venue.connection_status", map[string]any{
		"client_id": c.clientID,
		"connected": connected,
		"state":     string(state),
	})
	if err != nil {
		c.events.Publish(context.Background(), "venue.client_error", map[string]any{
			"client_id": c.clientID,
			"error":     err.Error(),
		})
	}
}
