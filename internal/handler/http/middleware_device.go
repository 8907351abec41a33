package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/internal/utils"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// Device identification headers every sync client sends with authenticated
// requests.
const (
	deviceIDHeader       = "X-Device-ID"
	deviceLabelHeader    = "X-Device-Label"
	devicePlatformHeader = "X-Device-Platform"
)

// trackDevice records the calling device session. It must run after auth.
//
// A request carrying a device ID creates the session on first sight and
// refreshes its last-seen time on every subsequent request; the device ID is
// then stored in the request context under [utils.DeviceIDCtxKey]. A request
// from a revoked session is rejected with 401 so the device stops syncing.
// Requests without a device ID header pass through untouched.
func (h *Handler) trackDevice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get(deviceIDHeader)
		if deviceID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		userID, ok := utils.GetUserIDFromContext(ctx)
		if !ok {
			writeError(w, r, ErrEmptyAuthorizationHeader)
			return
		}

		session := models.DeviceSession{
			ID:       deviceID,
			UserID:   userID,
			Label:    r.Header.Get(deviceLabelHeader),
			Platform: r.Header.Get(devicePlatformHeader),
		}

		if err := h.services.DeviceService.Touch(ctx, session); err != nil {
			if errors.Is(err, store.ErrDeviceNotFound) {
				writeError(w, r, ErrDeviceRevoked)
				return
			}
			// session bookkeeping must not take the sync API down
			logger.FromRequest(r).Warn().Err(err).Str("device_id", deviceID).Msg("device touch failed")
		}

		ctx = context.WithValue(ctx, utils.DeviceIDCtxKey, deviceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
