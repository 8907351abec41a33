package config

import (
	"fmt"
	"strings"
	"time"
)

// ServerConfig is the server-specific view of the merged configuration.
type ServerConfig struct {
	Auth   Auth
	DB     DB
	Server Server
}

// ClientConfig is the client-specific view of the merged configuration.
type ClientConfig struct {
	Adapter Adapter
	Storage ClientDB
	Engine  Engine
}

// GetServerConfig builds and validates the server view from the merged
// structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		Auth:   cfg.Auth,
		DB:     cfg.Storage.DB,
		Server: cfg.Server,
	}

	return serverCfg, serverCfg.validate()
}

// GetClientConfig builds and validates the client view from the merged
// structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Adapter: cfg.Adapter,
		Storage: cfg.Storage.Client,
		Engine:  cfg.Engine,
	}

	return clientCfg, clientCfg.validate()
}

func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Auth.TokenSignKey == "" || cfg.Auth.TokenIssuer == "" {
		return ErrInvalidAuthConfigs
	}

	if cfg.Auth.TokenDuration == 0 {
		cfg.Auth.TokenDuration = 24 * time.Hour
	}
	if cfg.Auth.TicketDuration == 0 {
		cfg.Auth.TicketDuration = 30 * time.Second
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.Path == "" || strings.Contains(cfg.Storage.Path, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" {
		return ErrInvalidAdapterConfigs
	}
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = 15 * time.Second
	}

	return nil
}
