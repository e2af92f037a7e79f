// Package ws implements the broadcast context's client-facing egress
// transport: the /ws/ticker WebSocket endpoint, built on coder/websocket
// following the net/http.ServeMux + *http.Server idiom internal/health
// establishes for this module's other HTTP listeners.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/rohitdayanand/polykalshi-bridge/business/broadcast/app"
	"github.com/rohitdayanand/polykalshi-bridge/business/broadcast/domain"
	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
	"github.com/rohitdayanand/polykalshi-bridge/internal/ratelimit"
)

// clientFrame is a client→server control message (spec.md §6): subscribe or
// unsubscribe by market or platform.
type clientFrame struct {
	Type     string `json:"type"`
	MarketID string `json:"market_id"`
	Platform string `json:"platform"`
}

// serverFrame acknowledges or rejects a client control message.
type serverFrame struct {
	Type     string `json:"type"`
	MarketID string `json:"market_id,omitempty"`
	Platform string `json:"platform,omitempty"`
	Message  string `json:"message,omitempty"`
}

// sender wraps a server-accepted *websocket.Conn as an app.Sender, rate
// limiting outbound sends per connection.
type sender struct {
	conn    *websocket.Conn
	limiter *ratelimit.Limiter
}

func (s *sender) Send(ctx context.Context, payload []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.conn.Write(ctx, websocket.MessageText, payload)
}

func (s *sender) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "server closing")
}

// Config configures the ticker WebSocket server.
type Config struct {
	ListenAddr       string
	ClientSendRateHz float64
	ClientSendBurst  int
}

// Server accepts client WebSocket connections at /ws/ticker and wires each
// one into a ChannelManager.
type Server struct {
	cfg      Config
	log      logger.LoggerInterface
	channels *app.ChannelManager
	httpSrv  *http.Server
}

// NewServer constructs a ticker WebSocket server over channels.
func NewServer(cfg Config, log logger.LoggerInterface, channels *app.ChannelManager) *Server {
	return &Server{cfg: cfg, log: log, channels: channels}
}

// Start begins listening on cfg.ListenAddr. It returns once the listener is
// up; ListenAndServe runs in its own goroutine.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/ticker", s.handleTicker)

	s.httpSrv = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error(context.Background(), "broadcast: ticker server stopped", "error", err.Error())
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "broadcast: websocket accept failed", "error", err.Error())
		return
	}

	clientID := uuid.New().String()
	snd := &sender{
		conn:    conn,
		limiter: ratelimit.NewWithBurst(s.cfg.ClientSendRateHz, s.cfg.ClientSendBurst),
	}
	s.channels.AddConnection(clientID, snd)

	ctx := r.Context()
	defer func() {
		s.channels.RemoveConnection(clientID)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 {
				s.log.Debug(ctx, "broadcast: client read error", "client_id", clientID, "error", err.Error())
			}
			return
		}
		s.handleClientFrame(ctx, clientID, snd, data)
	}
}

func (s *Server) handleClientFrame(ctx context.Context, clientID string, snd *sender, data []byte) {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.reply(ctx, snd, serverFrame{Type: "error", Message: "malformed frame"})
		return
	}

	switch frame.Type {
	case "subscribe_market":
		s.channels.Subscribe(clientID, domain.MarketSubscription(frame.MarketID))
		s.reply(ctx, snd, serverFrame{Type: "subscription_confirmed", MarketID: frame.MarketID})
	case "subscribe_platform":
		s.channels.Subscribe(clientID, domain.PlatformSubscription(frame.Platform))
		s.reply(ctx, snd, serverFrame{Type: "subscription_confirmed", Platform: frame.Platform})
	case "unsubscribe_market":
		s.channels.Unsubscribe(clientID, domain.SubscriptionMarket, "", frame.MarketID)
		s.reply(ctx, snd, serverFrame{Type: "unsubscription_confirmed", MarketID: frame.MarketID})
	case "unsubscribe_platform":
		s.channels.Unsubscribe(clientID, domain.SubscriptionPlatform, frame.Platform, "")
		s.reply(ctx, snd, serverFrame{Type: "unsubscription_confirmed", Platform: frame.Platform})
	default:
		s.reply(ctx, snd, serverFrame{Type: "error", Message: fmt.Sprintf("unknown frame type %q", frame.Type)})
	}
}

func (s *Server) reply(ctx context.Context, snd *sender, f serverFrame) {
	payload, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := snd.Send(ctx, payload); err != nil {
		s.log.Debug(ctx, "broadcast: reply send failed", "error", err.Error())
	}
}
