package handler

import (
	"chatter/internal/app/broadcast"
	"chatter/internal/app/history"
	"chatter/internal/configs"
)

// AppDeps bundles the shared dependencies handed to every handler.
type AppDeps struct {
	Config   *configs.AppConfig
	Registry *broadcast.Registry
	Service  *broadcast.Service
	Events   *broadcast.Router

	// History is nil when the message-history side channel is disabled.
	History *history.Store
}
