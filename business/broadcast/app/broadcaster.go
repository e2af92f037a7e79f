package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/broadcast/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// alertFrame is the wire envelope for an arbitrage alert: spec.md §6's
// {"type":"arbitrage_alert", ...ArbitrageOpportunity}, built generically
// over whatever payload BroadcastAlert's caller supplies so this package never
// needs to import the arbitrage context's domain types.
type alertFrame struct {
	Type string `json:"type"`
	Opportunity any `json:"-"`
}

// MarshalJSON flattens Type alongside the opportunity's own fields into a
// single JSON object, rather than nesting the opportunity under its own
// key.
func (f alertFrame) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(f.Opportunity)
	if err != nil {
		return nil, err
	}
	var merged map[string]any
	if err := json.Unmarshal(body, &merged); err != nil {
		return nil, err
	}
	merged["type"] = f.Type
	return json.Marshal(merged)
}

// Broadcaster fans out ticker updates and arbitrage alerts to every
// client ChannelManager's recipient computation selects, serializing each
// payload once per broadcast call. Grounded on
// channel_manager.py's broadcast_ticker_update/_send_to_subscribers.
type Broadcaster struct {
	log         logger.LoggerInterface
	channels    *ChannelManager
	sendTimeout time.Duration
}

// NewBroadcaster constructs a Broadcaster over channels, bounding every
// client send to sendTimeout (spec.md §4.12's default 5s).
func NewBroadcaster(log logger.LoggerInterface, channels *ChannelManager, sendTimeout time.Duration) *Broadcaster {
	return &Broadcaster{log: log, channels: channels, sendTimeout: sendTimeout}
}

// Subscribe wires b to the ticker-updated events bus publishes, projecting
// each into a domain.TickerSnapshot via project before broadcasting.
func (b *Broadcaster) Subscribe(bus *eventbus.Bus, eventType string, project func(payload any) (domain.TickerSnapshot, bool)) {
	bus.Subscribe(eventType, func(ctx context.Context, payload any) error {
		snap, ok := project(payload)
		if !ok {
			return nil
		}
		b.Broadcast(ctx, snap)
		return nil
	})
}

// SubscribeAlerts wires b to the arbitrage alert event, broadcasting each
// opportunity as a {"type":"arbitrage_alert",...} frame.
func (b *Broadcaster) SubscribeAlerts(bus *eventbus.Bus, eventType string) {
	bus.Subscribe(eventType, func(ctx context.Context, payload any) error {
		b.BroadcastAlert(ctx, payload)
		return nil
	})
}

// Broadcast fans snap out to every recipient ChannelManager selects.
func (b *Broadcaster) Broadcast(ctx context.Context, snap domain.TickerSnapshot) {
	recipients := b.channels.Recipients(snap)
	if len(recipients) == 0 {
		if b.log != nil {
			b.log.Debug(ctx, "broadcast: no subscribers for ticker", "market_key", snap.MarketKey, "platform", snap.Platform)
		}
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		if b.log != nil {
			b.log.Error(ctx, "broadcast: marshal ticker snapshot failed", "error", err.Error())
		}
		return
	}
	b.send(ctx, recipients, payload)
}

// BroadcastAlert fans opp out through the same recipient computation as
// ticker updates, using a TickerSnapshot with no platform or market key:
// clients with an ALL subscription (and any CUSTOM filter that accepts that
// empty snapshot) receive it; platform- and market-scoped subscribers do not.
func (b *Broadcaster) BroadcastAlert(ctx context.Context, opp any) {
	payload, err := json.Marshal(alertFrame{Type: "arbitrage_alert", Opportunity: opp})
	if err != nil {
		if b.log != nil {
			b.log.Error(ctx, "broadcast: marshal arbitrage alert failed", "error", err.Error())
		}
		return
	}
	recipients := b.channels.Recipients(domain.TickerSnapshot{})
	b.send(ctx, recipients, payload)
}

func (b *Broadcaster) send(ctx context.Context, recipients []string, payload []byte) {
	sent, failed := 0, 0
	var disconnected []string

	for _, clientID := range recipients {
		sender := b.channels.Sender(clientID)
		if sender == nil {
			continue
		}
		sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
		err := sender.Send(sendCtx, payload)
		cancel()
		if err != nil {
			failed++
			disconnected = append(disconnected, clientID)
			if b.log != nil {
				b.log.Warn(ctx, "broadcast: client send failed, disconnecting", "client_id", clientID, "error", err.Error())
			}
			continue
		}
		sent++
	}

	b.channels.RecordSent(sent)
	b.channels.RecordFailed(failed)

	for _, clientID := range disconnected {
		if sender := b.channels.Sender(clientID); sender != nil {
			sender.Close()
		}
		b.channels.RemoveConnection(clientID)
	}
}
