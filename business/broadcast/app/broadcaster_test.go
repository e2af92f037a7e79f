package app

import (
	"context"
	"testing"
	"time"

	"github.com/rohitdayanand/polykalshi-bridge/business/broadcast/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/eventbus"
)

func TestBroadcasterBroadcastSendsToSubscribedClient(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	snd := &fakeSender{}
	cm.AddConnection("c1", snd)
	cm.Subscribe("c1", domain.AllSubscription())

	b := NewBroadcaster(discardLogger(), cm, time.Second)
	b.Broadcast(context.Background(), ticker("M", domain.PlatformKalshi, 0.5, 10))

	if len(snd.sent) != 1 {
		t.Fatalf("expected one message sent, got %d", len(snd.sent))
	}
	stats := cm.Stats()
	if stats.MessagesSent != 1 {
		t.Fatalf("expected MessagesSent=1, got %d", stats.MessagesSent)
	}
}

func TestBroadcasterBroadcastSkipsWhenNoSubscribers(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	snd := &fakeSender{}
	cm.AddConnection("c1", snd)

	b := NewBroadcaster(discardLogger(), cm, time.Second)
	b.Broadcast(context.Background(), ticker("M", domain.PlatformKalshi, 0.5, 10))

	if len(snd.sent) != 0 {
		t.Fatalf("expected no messages sent, got %d", len(snd.sent))
	}
}

func TestBroadcasterBroadcastDisconnectsOnSendFailure(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	snd := &fakeSender{fail: true}
	cm.AddConnection("c1", snd)
	cm.Subscribe("c1", domain.AllSubscription())

	b := NewBroadcaster(discardLogger(), cm, time.Second)
	b.Broadcast(context.Background(), ticker("M", domain.PlatformKalshi, 0.5, 10))

	if !snd.closed {
		t.Fatal("expected failed sender to be closed")
	}
	if cm.Sender("c1") != nil {
		t.Fatal("expected client to be removed from ChannelManager after failed send")
	}
	stats := cm.Stats()
	if stats.FailedSends != 1 {
		t.Fatalf("expected FailedSends=1, got %d", stats.FailedSends)
	}
}

func TestBroadcasterBroadcastAlertReachesAllSubscriber(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	snd := &fakeSender{}
	cm.AddConnection("c1", snd)
	cm.Subscribe("c1", domain.AllSubscription())

	b := NewBroadcaster(discardLogger(), cm, time.Second)
	b.BroadcastAlert(context.Background(), map[string]string{"pair_id": "p1"})

	if len(snd.sent) != 1 {
		t.Fatalf("expected one alert sent, got %d", len(snd.sent))
	}
	if string(snd.sent[0])[0] != '{' {
		t.Fatalf("expected a JSON object frame, got %q", snd.sent[0])
	}
}

func TestBroadcasterBroadcastAlertSkipsPlatformOnlySubscriber(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	snd := &fakeSender{}
	cm.AddConnection("c1", snd)
	cm.Subscribe("c1", domain.PlatformSubscription(domain.PlatformKalshi))

	b := NewBroadcaster(discardLogger(), cm, time.Second)
	b.BroadcastAlert(context.Background(), map[string]string{"pair_id": "p1"})

	if len(snd.sent) != 0 {
		t.Fatalf("expected platform-only subscriber to be skipped, got %d sends", len(snd.sent))
	}
}

func TestBroadcasterSubscribeProjectsAndBroadcasts(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	snd := &fakeSender{}
	cm.AddConnection("c1", snd)
	cm.Subscribe("c1", domain.AllSubscription())

	b := NewBroadcaster(discardLogger(), cm, time.Second)
	bus := eventbus.New(discardLogger())
	b.Subscribe(bus, "test.event", func(payload any) (domain.TickerSnapshot, bool) {
		v, ok := payload.(int)
		if !ok {
			return domain.TickerSnapshot{}, false
		}
		return ticker("M", domain.PlatformKalshi, float64(v), 1), true
	})

	bus.Publish(context.Background(), "test.event", 7)

	if len(snd.sent) != 1 {
		t.Fatalf("expected projected ticker to be broadcast, got %d sends", len(snd.sent))
	}
}

func TestBroadcasterSubscribeIgnoresUnprojectablePayload(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	snd := &fakeSender{}
	cm.AddConnection("c1", snd)
	cm.Subscribe("c1", domain.AllSubscription())

	b := NewBroadcaster(discardLogger(), cm, time.Second)
	bus := eventbus.New(discardLogger())
	b.Subscribe(bus, "test.event", func(payload any) (domain.TickerSnapshot, bool) {
		return domain.TickerSnapshot{}, false
	})

	bus.Publish(context.Background(), "test.event", "unrelated")

	if len(snd.sent) != 0 {
		t.Fatalf("expected no broadcast for a rejected projection, got %d sends", len(snd.sent))
	}
}
