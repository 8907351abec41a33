package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/service"
	"github.com/bananahana720/pocket-brain-sub000/internal/utils"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// devices handles GET /api/devices: every device session of the account,
// with the calling device marked so clients can label "this device".
func (h *Handler) devices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	currentDeviceID, _ := utils.GetDeviceIDFromContext(ctx)

	resp, err := h.services.DeviceService.List(ctx, userID, currentDeviceID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

// revokeDevice handles DELETE /api/devices/{deviceID}. Revoking a session
// cuts that device off on its next authenticated request; revoking the
// calling device itself is allowed.
func (h *Handler) revokeDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	deviceID := chi.URLParam(r, "deviceID")
	if deviceID == "" {
		writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	if err := h.services.DeviceService.Revoke(ctx, userID, deviceID); err != nil {
		writeError(w, r, err)
		return
	}

	log.Info().Str("device_id", deviceID).Msg("device session revoked")

	_, _ = utils.WriteJSON(w, models.RevokeDeviceResponse{
		OK:              true,
		RevokedDeviceID: deviceID,
	}, http.StatusOK)
}
