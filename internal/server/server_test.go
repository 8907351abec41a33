package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	myHTTP "github.com/bananahana720/pocket-brain-sub000/internal/handler/http"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/service"
)

func TestNewServer(t *testing.T) {
	handler := myHTTP.NewHandler(&service.Services{}, logger.Nop())

	srv, err := NewServer(handler, config.Server{HTTPAddress: "localhost:0"}, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, srv)
}

func TestNewServer_NoAddress(t *testing.T) {
	handler := myHTTP.NewHandler(&service.Services{}, logger.Nop())

	_, err := NewServer(handler, config.Server{}, logger.Nop())
	require.ErrorIs(t, err, errNoServersAreCreated)
}
