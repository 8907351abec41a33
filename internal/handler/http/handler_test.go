package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/mock"
	"github.com/bananahana720/pocket-brain-sub000/internal/service"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// serviceMocks bundles one gomock double per service interface.
type serviceMocks struct {
	auth    *mock.MockAuthService
	sync    *mock.MockSyncService
	devices *mock.MockDeviceService
	events  *mock.MockEventsService
}

// newTestHandler builds a Handler wired to fresh service mocks.
func newTestHandler(t *testing.T) (*Handler, serviceMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mocks := serviceMocks{
		auth:    mock.NewMockAuthService(ctrl),
		sync:    mock.NewMockSyncService(ctrl),
		devices: mock.NewMockDeviceService(ctrl),
		events:  mock.NewMockEventsService(ctrl),
	}

	h := NewHandler(&service.Services{
		AuthService:   mocks.auth,
		SyncService:   mocks.sync,
		DeviceService: mocks.devices,
		EventsService: mocks.events,
	}, logger.Nop())

	return h, mocks
}

// expectBearer makes the auth middleware accept "Bearer test-token" as
// userID. Requests in tests attach the header via withBearer.
func expectBearer(mocks serviceMocks, userID int64) {
	mocks.auth.EXPECT().
		ParseToken(gomock.Any(), "test-token").
		Return(models.Token{UserID: userID}, nil).
		AnyTimes()
}

func withBearer(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer test-token")
	return req
}

// serve runs req through the full router and returns the recorder.
func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.Init().ServeHTTP(rr, req)
	return rr
}

// decodeAPIError unmarshals the uniform error body.
func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) models.APIErrorDetail {
	t.Helper()

	var apiErr models.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	return apiErr.Error
}
