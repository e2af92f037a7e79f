package app

import (
	"context"
	"testing"

	"github.com/rohitdayanand/polykalshi-bridge/business/broadcast/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

func discardLogger() logger.LoggerInterface {
	return logger.New(discardWriter{}, logger.LevelError, "test", nil)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type fakeSender struct {
	sent   [][]byte
	closed bool
	fail   bool
}

func (s *fakeSender) Send(ctx context.Context, payload []byte) error {
	if s.fail {
		return errSendFailed
	}
	s.sent = append(s.sent, payload)
	return nil
}

func (s *fakeSender) Close() error {
	s.closed = true
	return nil
}

var errSendFailed = &sendError{"send failed"}

type sendError struct{ msg string }

func (e *sendError) Error() string { return e.msg }

func bidPtr(v float64) *float64 { return &v }

func ticker(marketKey, platform string, yesBid float64, yesVol float64) domain.TickerSnapshot {
	return domain.TickerSnapshot{
		MarketKey: marketKey,
		Platform:  platform,
		Summary: domain.Summary{
			Yes: domain.SideSummary{Bid: bidPtr(yesBid), Volume: yesVol},
		},
	}
}

func TestChannelManagerAllSubscriptionReceivesEverything(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	cm.AddConnection("c1", &fakeSender{})
	cm.Subscribe("c1", domain.AllSubscription())

	recipients := cm.Recipients(ticker("M", domain.PlatformKalshi, 0.5, 10))
	if len(recipients) != 1 || recipients[0] != "c1" {
		t.Fatalf("expected c1 as sole recipient, got %v", recipients)
	}
}

func TestChannelManagerPlatformSubscriptionFiltersByPlatform(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	cm.AddConnection("c1", &fakeSender{})
	cm.Subscribe("c1", domain.PlatformSubscription(domain.PlatformKalshi))

	recipients := cm.Recipients(ticker("M", domain.PlatformPolymarket, 0.5, 10))
	if len(recipients) != 0 {
		t.Fatalf("expected no recipients for a different platform, got %v", recipients)
	}

	recipients = cm.Recipients(ticker("M", domain.PlatformKalshi, 0.5, 10))
	if len(recipients) != 1 {
		t.Fatalf("expected one recipient for matching platform, got %v", recipients)
	}
}

func TestChannelManagerMarketSubscriptionFiltersByMarket(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	cm.AddConnection("c1", &fakeSender{})
	cm.Subscribe("c1", domain.MarketSubscription("M1"))

	if recipients := cm.Recipients(ticker("M2", domain.PlatformKalshi, 0.5, 10)); len(recipients) != 0 {
		t.Fatalf("expected no recipients for a different market, got %v", recipients)
	}
	if recipients := cm.Recipients(ticker("M1", domain.PlatformKalshi, 0.5, 10)); len(recipients) != 1 {
		t.Fatalf("expected one recipient for matching market, got %v", recipients)
	}
}

func TestChannelManagerCustomVolumeFilter(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	cm.AddConnection("c1", &fakeSender{})
	cm.Subscribe("c1", domain.VolumeFilterSubscription(50, domain.PlatformKalshi))

	if recipients := cm.Recipients(ticker("M", domain.PlatformKalshi, 0.5, 10)); len(recipients) != 0 {
		t.Fatalf("expected no recipients below min_volume, got %v", recipients)
	}
	if recipients := cm.Recipients(ticker("M", domain.PlatformKalshi, 0.5, 60)); len(recipients) != 1 {
		t.Fatalf("expected one recipient at/above min_volume, got %v", recipients)
	}
}

func TestChannelManagerUnsubscribeRemovesOnlyMatchingFilter(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	cm.AddConnection("c1", &fakeSender{})
	cm.Subscribe("c1", domain.MarketSubscription("M1"))
	cm.Subscribe("c1", domain.PlatformSubscription(domain.PlatformKalshi))

	if !cm.Unsubscribe("c1", domain.SubscriptionMarket, "", "M1") {
		t.Fatal("expected unsubscribe to report removal")
	}
	if recipients := cm.Recipients(ticker("M1", domain.PlatformKalshi, 0.5, 10)); len(recipients) != 1 {
		t.Fatalf("expected the platform subscription to still match, got %v", recipients)
	}
	if cm.Unsubscribe("c1", domain.SubscriptionMarket, "", "M1") {
		t.Fatal("expected second unsubscribe of the same filter to report no removal")
	}
}

func TestChannelManagerRemoveConnectionDropsSubscriptions(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	cm.AddConnection("c1", &fakeSender{})
	cm.Subscribe("c1", domain.AllSubscription())
	cm.RemoveConnection("c1")

	if recipients := cm.Recipients(ticker("M", domain.PlatformKalshi, 0.5, 10)); len(recipients) != 0 {
		t.Fatalf("expected no recipients after removal, got %v", recipients)
	}
	if cm.Sender("c1") != nil {
		t.Fatal("expected Sender to return nil after removal")
	}
}

func TestChannelManagerStatsReflectsConnectionsAndSubscriptions(t *testing.T) {
	cm := NewChannelManager(discardLogger())
	cm.AddConnection("c1", &fakeSender{})
	cm.AddConnection("c2", &fakeSender{})
	cm.Subscribe("c1", domain.AllSubscription())
	cm.Subscribe("c2", domain.PlatformSubscription(domain.PlatformKalshi))

	stats := cm.Stats()
	if stats.TotalConnections != 2 {
		t.Fatalf("expected 2 total connections, got %d", stats.TotalConnections)
	}
	if stats.ActiveSubscriptions != 2 {
		t.Fatalf("expected 2 active subscriptions, got %d", stats.ActiveSubscriptions)
	}
	if stats.AllSubscribers != 1 {
		t.Fatalf("expected 1 all-subscriber, got %d", stats.AllSubscribers)
	}
	if stats.PlatformSubscriptions[domain.PlatformKalshi] != 1 {
		t.Fatalf("expected 1 kalshi platform subscriber, got %d", stats.PlatformSubscriptions[domain.PlatformKalshi])
	}
}
