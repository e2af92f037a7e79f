// Package ws hosts the venue P WebSocket transport: an unauthenticated
// client that subscribes per asset_id and forwards verbatim frames into a
// Sink.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rohitdayanand/polykalshi-bridge/internal/apperror"
	"github.com/rohitdayanand/polykalshi-bridge/internal/circuitbreaker"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/rohitdayanand/polykalshi-bridge/internal/ratelimit"
	"github.com/rohitdayanand/polykalshi-bridge/internal/wsconn"
)

// Sink receives the verbatim frames a Client reads off the wire. No parsing
// happens in Client; that is the Decoder's job downstream of the
// IngestQueue.
type Sink interface {
	Put(ctx context.Context, frame []byte, metadata map[string]any)
}

// Config configures a venue P Client.
type Config struct {
	URL                string
	SubscribeRateLimit *ratelimit.Limiter
}

// Client owns one outbound WebSocket session to venue P: no auth, per-asset
// subscribe/unsubscribe, forwarding verbatim frames into a Sink.
type Client struct {
	log    logger.LoggerInterface
	events *eventbus.Bus
	sink   Sink
	conn   *wsconn.Client
	cb     *circuitbreaker.CircuitBreaker[struct{}]
	limit  *ratelimit.Limiter

	clientID string

	mu     sync.Mutex
	assets map[string]bool
}

// NewClient constructs a venue P Client. clientID identifies this
// connection in emitted venue.connection_status/venue.client_error events.
func NewClient(clientID string, cfg Config, log logger.LoggerInterface, events *eventbus.Bus, sink Sink) (*Client, error) {
	wsCfg := wsconn.DefaultConfig(cfg.URL, clientID)

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return nil, fmt.Errorf("construct venue P transport: %w", err)
	}

	c := &Client{
		log:      log,
		events:   events,
		sink:     sink,
		conn:     conn,
		cb:       circuitbreaker.New[struct{}](circuitbreaker.DefaultConfig(clientID + "-connect")),
		limit:    cfg.SubscribeRateLimit,
		clientID: clientID,
		assets:   make(map[string]bool),
	}

	conn.OnMessage(c.onMessage)
	conn.OnStateChange(c.onStateChange)
	return c, nil
}

// Connect dials the venue, guarded by a circuit breaker so a persistently
// unreachable endpoint doesn't spin forever.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.conn.ConnectWithRetry(ctx)
	})
	if err != nil {
		c.events.Publish(ctx, "venue.client_error", map[string]any{
			"client_id": c.clientID,
			"error":     err.Error(),
		})
		return apperror.External(apperror.CodeTransportError, "venue_p_client", err)
	}
	c.events.Publish(ctx, "venue.connection_status", map[string]any{
		"client_id": c.clientID,
		"connected": true,
	})
	return nil
}

// AddMarket subscribes to the book channel for one asset_id.
func (c *Client) AddMarket(ctx context.Context, assetID string) error {
	if c.limit != nil {
		if err := c.limit.Wait(ctx); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.assets[assetID] = true
	c.mu.Unlock()

	return c.send(ctx, map[string]any{
		"auth":    "",
		"channel": "book",
		"market":  assetID,
	})
}

// RemoveMarket forgets a previously subscribed asset_id. Venue P has no
// documented unsubscribe frame; this only stops local tracking so a
// reconnect's resubscribe pass skips it.
func (c *Client) RemoveMarket(_ context.Context, assetID string) {
	c.mu.Lock()
	delete(c.assets, assetID)
	c.mu.Unlock()
}

// Close tears down the underlying transport.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal venue P command: %w", err)
	}
	if err := c.conn.Send(ctx, data); err != nil {
		return apperror.Internal(apperror.CodeWebSocketSendError, "venue_p_client", err)
	}
	return nil
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
	if connected {
		c.resubscribeAll(context.Background())
	}
}

// resubscribeAll re-sends the book subscription for every tracked asset
// after a reconnect, since venue P carries no server-side subscription
// state across a fresh WebSocket session.
func (c *Client) resubscribeAll(ctx context.Context) {
	c.mu.Lock()
	assets := make([]string, 0, len(c.assets))
	for a := range c.assets {
		assets = append(assets, a)
	}
	c.mu.Unlock()

	for _, a := range assets {
		if err := c.send(ctx, map[string]any{"auth": "", "channel": "book", "market": a}); err != nil {
			c.log.Warn(ctx, "failed to resubscribe venue P market after reconnect", "market", a, "error", err.Error())
		}
	}
}
