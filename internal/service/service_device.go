package service

import (
	"context"
	"fmt"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// deviceService is the concrete implementation of DeviceService.
type deviceService struct {
	deviceRepository store.DeviceRepository
	logger           *logger.Logger
}

// NewDeviceService constructs a DeviceService on top of the given
// repository.
func NewDeviceService(deviceRepository store.DeviceRepository, logger *logger.Logger) DeviceService {
	return &deviceService{
		deviceRepository: deviceRepository,
		logger:           logger,
	}
}

// Touch upserts the calling device's session and refreshes its last-seen
// timestamp. A revoked device surfaces store.ErrDeviceNotFound, which
// the transport turns into a 401.
func (d *deviceService) Touch(ctx context.Context, session models.DeviceSession) error {
	if session.ID == "" || session.UserID == 0 {
		return ErrInvalidDataProvided
	}

	if err := d.deviceRepository.Touch(ctx, session); err != nil {
		return fmt.Errorf("device session touch failed: %w", err)
	}
	return nil
}

// List returns the account's device sessions with the caller marked.
func (d *deviceService) List(ctx context.Context, userID int64, currentDeviceID string) (models.DevicesResponse, error) {
	log := logger.FromContext(ctx)

	devices, err := d.deviceRepository.List(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("device listing failed")
		return models.DevicesResponse{}, fmt.Errorf("device listing failed: %w", err)
	}

	return models.DevicesResponse{
		Devices:         devices,
		CurrentDeviceID: currentDeviceID,
	}, nil
}

// Revoke marks the device session revoked. Subsequent requests from the
// device are rejected at the auth boundary.
func (d *deviceService) Revoke(ctx context.Context, userID int64, deviceID string) error {
	log := logger.FromContext(ctx)

	if deviceID == "" {
		return ErrInvalidDataProvided
	}

	if err := d.deviceRepository.Revoke(ctx, userID, deviceID); err != nil {
		log.Err(err).
			Int64("user_id", userID).
			Str("device_id", deviceID).
			Msg("device revocation failed")
		return fmt.Errorf("device revocation failed: %w", err)
	}

	log.Info().
		Int64("user_id", userID).
		Str("device_id", deviceID).
		Msg("device session revoked")

	return nil
}
