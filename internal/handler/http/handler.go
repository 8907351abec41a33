// Package http implements the HTTP transport layer of the sync server.
// It provides middleware, route handlers, and request/response utilities
// for the REST API plus the SSE event stream. Authentication, device
// tracking, tracing, and logging concerns are all handled at this layer
// before requests are forwarded to the service layer.
package http

import (
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/service"
)

type Handler struct {
	services *service.Services

	logger *logger.Logger
}

func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}
