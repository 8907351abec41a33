package service

import (
	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
)

// Services bundles the server's service layer for the HTTP handlers.
type Services struct {
	AuthService   AuthService
	SyncService   SyncService
	DeviceService DeviceService
	EventsService EventsService
}

// NewServices wires every service onto the repository set. The events
// service is shared: sync broadcasts into the same hub the events
// endpoints stream from.
func NewServices(repos *store.Repositories, cfg *config.ServerConfig, logger *logger.Logger) *Services {
	events := NewEventsService(cfg.Auth, logger)

	return &Services{
		AuthService:   NewAuthService(repos.UserRepository, cfg.Auth, logger),
		SyncService:   NewSyncService(repos, cfg.DB, events, logger),
		DeviceService: NewDeviceService(repos.DeviceRepository, logger),
		EventsService: events,
	}
}
