package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

func TestDevices_List(t *testing.T) {
	h, mocks := newTestHandler(t)
	expectBearer(mocks, 1)

	// the calling device identifies itself via headers; the list marks it
	mocks.devices.EXPECT().
		Touch(gomock.Any(), models.DeviceSession{
			ID:       "device-a",
			UserID:   1,
			Label:    "laptop",
			Platform: "linux",
		}).
		Return(nil)
	mocks.devices.EXPECT().
		List(gomock.Any(), int64(1), "device-a").
		Return(models.DevicesResponse{
			Devices:         []models.DeviceSession{{ID: "device-a", Label: "laptop"}, {ID: "device-b", Label: "phone"}},
			CurrentDeviceID: "device-a",
		}, nil)

	req := withBearer(httptest.NewRequest(http.MethodGet, "/api/devices", nil))
	req.Header.Set("X-Device-ID", "device-a")
	req.Header.Set("X-Device-Label", "laptop")
	req.Header.Set("X-Device-Platform", "linux")
	rr := serve(h, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var devices models.DevicesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &devices))
	assert.Len(t, devices.Devices, 2)
	assert.Equal(t, "device-a", devices.CurrentDeviceID)
}

func TestDevices_Revoke(t *testing.T) {
	h, mocks := newTestHandler(t)
	expectBearer(mocks, 1)

	mocks.devices.EXPECT().
		Revoke(gomock.Any(), int64(1), "device-b").
		Return(nil)

	req := withBearer(httptest.NewRequest(http.MethodDelete, "/api/devices/device-b", nil))
	rr := serve(h, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var revoked models.RevokeDeviceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &revoked))
	assert.True(t, revoked.OK)
	assert.Equal(t, "device-b", revoked.RevokedDeviceID)
}

func TestDevices_RevokeUnknown(t *testing.T) {
	h, mocks := newTestHandler(t)
	expectBearer(mocks, 1)

	mocks.devices.EXPECT().
		Revoke(gomock.Any(), int64(1), "ghost").
		Return(store.ErrDeviceNotFound)

	req := withBearer(httptest.NewRequest(http.MethodDelete, "/api/devices/ghost", nil))
	rr := serve(h, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "device_not_found", decodeAPIError(t, rr).Code)
}
