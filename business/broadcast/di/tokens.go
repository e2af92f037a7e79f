// Package di declares the dependency injection tokens the broadcast
// context's services are registered and resolved under.
package di

import (
	"github.com/rohitdayanand/polykalshi-bridge/business/broadcast/app"
	ws "github.com/rohitdayanand/polykalshi-bridge/business/broadcast/infra/ws"
	"github.com/rohitdayanand/polykalshi-bridge/internal/di"
)

const (
	ChannelManager = "broadcast.channelManager"
	Broadcaster    = "broadcast.broadcaster"
	Server         = "broadcast.server"
)

// GetChannelManager resolves the broadcast ChannelManager singleton.
func GetChannelManager(sr di.ServiceRegistry) *app.ChannelManager {
	return di.Resolve[*app.ChannelManager](sr, ChannelManager)
}

// GetBroadcaster resolves the Broadcaster singleton.
func GetBroadcaster(sr di.ServiceRegistry) *app.Broadcaster {
	return di.Resolve[*app.Broadcaster](sr, Broadcaster)
}

// GetServer resolves the ticker WebSocket server singleton.
func GetServer(sr di.ServiceRegistry) *ws.Server {
	return di.Resolve[*ws.Server](sr, Server)
}
