package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/utils"
	"github.com/bananahana720/pocket-brain-sub000/models"
	"github.com/go-resty/resty/v2"
)

// DeviceInfo identifies this installation to the server. The ID is
// stable across restarts; the server keys device sessions on it.
type DeviceInfo struct {
	ID       string
	Label    string
	Platform string
}

type httpServerAdapter struct {
	client *resty.Client
	device DeviceInfo

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying client with the
// resolved base URL and request timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be
// parsed as a valid URL.
func NewHTTPServerAdapter(adapterCfg config.Adapter, device DeviceInfo, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpServerAdapter{client: client, device: device, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent authenticated
// requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter]. It returns the bearer token currently
// held by the adapter, or an empty string if none has been set.
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Register implements [ServerAdapter]. It POSTs the user credentials to
// POST /api/auth/register. On success the bearer token is extracted from
// the Authorization response header and stored via SetToken.
func (h *httpServerAdapter) Register(ctx context.Context, user models.User) (models.Token, error) {
	resp, err := h.deviceRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/auth/register")
	if err != nil {
		return models.Token{}, classifyTransportError("register request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Token{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Token{}, fmt.Errorf("register parse bearer token: %w", err)
	}

	h.SetToken(token)
	return models.Token{SignedString: token}, nil
}

// Login implements [ServerAdapter]. It POSTs the user credentials to
// POST /api/auth/login. On success the bearer token is extracted from the
// Authorization response header and stored via SetToken.
func (h *httpServerAdapter) Login(ctx context.Context, user models.User) (models.Token, error) {
	resp, err := h.deviceRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/auth/login")
	if err != nil {
		return models.Token{}, classifyTransportError("login request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Token{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Token{}, fmt.Errorf("login parse bearer token: %w", err)
	}

	h.SetToken(token)
	return models.Token{SignedString: token}, nil
}

// Snapshot implements [ServerAdapter]. It GETs the full note collection
// from GET /api/notes and decodes it together with the cursor the
// snapshot is consistent with. Requires a valid bearer token.
func (h *httpServerAdapter) Snapshot(ctx context.Context, includeDeleted bool) (models.SnapshotResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("include_deleted", strconv.FormatBool(includeDeleted)).
		Get("/api/notes")
	if err != nil {
		return models.SnapshotResponse{}, classifyTransportError("snapshot request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SnapshotResponse{}, err
	}

	var snapshot models.SnapshotResponse
	if err = json.Unmarshal(resp.Body(), &snapshot); err != nil {
		return models.SnapshotResponse{}, fmt.Errorf("decode snapshot response: %w", err)
	}

	return snapshot, nil
}

// Pull implements [ServerAdapter]. It GETs changes after cursor from
// GET /api/sync/pull. A reset-required answer is a successful response,
// not an error; callers inspect PullResponse.ResetRequired. Requires a
// valid bearer token.
func (h *httpServerAdapter) Pull(ctx context.Context, cursor models.Cursor) (models.PullResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("cursor", strconv.FormatInt(int64(cursor), 10)).
		Get("/api/sync/pull")
	if err != nil {
		return models.PullResponse{}, classifyTransportError("pull request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PullResponse{}, err
	}

	var pull models.PullResponse
	if err = json.Unmarshal(resp.Body(), &pull); err != nil {
		return models.PullResponse{}, fmt.Errorf("decode pull response: %w", err)
	}

	return pull, nil
}

// Push implements [ServerAdapter]. It POSTs a batch of pending operations
// to POST /api/sync/push. Version conflicts are reported inside the
// response body per operation, never as an HTTP error. Requires a valid
// bearer token.
func (h *httpServerAdapter) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/sync/push")
	if err != nil {
		return models.PushResponse{}, classifyTransportError("push request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PushResponse{}, err
	}

	var push models.PushResponse
	if err = json.Unmarshal(resp.Body(), &push); err != nil {
		return models.PushResponse{}, fmt.Errorf("decode push response: %w", err)
	}

	return push, nil
}

// Bootstrap implements [ServerAdapter]. It POSTs the pre-sync local
// collection to POST /api/sync/bootstrap. Requires a valid bearer token.
func (h *httpServerAdapter) Bootstrap(ctx context.Context, req models.BootstrapRequest) (models.BootstrapResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/sync/bootstrap")
	if err != nil {
		return models.BootstrapResponse{}, classifyTransportError("bootstrap request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.BootstrapResponse{}, err
	}

	var boot models.BootstrapResponse
	if err = json.Unmarshal(resp.Body(), &boot); err != nil {
		return models.BootstrapResponse{}, fmt.Errorf("decode bootstrap response: %w", err)
	}

	return boot, nil
}

// Devices implements [ServerAdapter]. It GETs the account's device
// sessions from GET /api/devices. Requires a valid bearer token.
func (h *httpServerAdapter) Devices(ctx context.Context) (models.DevicesResponse, error) {
	resp, err := h.authedRequest(ctx).Get("/api/devices")
	if err != nil {
		return models.DevicesResponse{}, classifyTransportError("devices request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.DevicesResponse{}, err
	}

	var devices models.DevicesResponse
	if err = json.Unmarshal(resp.Body(), &devices); err != nil {
		return models.DevicesResponse{}, fmt.Errorf("decode devices response: %w", err)
	}

	return devices, nil
}

// RevokeDevice implements [ServerAdapter]. It DELETEs the device session
// at DELETE /api/devices/{id}. Requires a valid bearer token.
func (h *httpServerAdapter) RevokeDevice(ctx context.Context, deviceID string) (models.RevokeDeviceResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetPathParam("deviceID", deviceID).
		Delete("/api/devices/{deviceID}")
	if err != nil {
		return models.RevokeDeviceResponse{}, classifyTransportError("revoke device request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RevokeDeviceResponse{}, err
	}

	var revoked models.RevokeDeviceResponse
	if err = json.Unmarshal(resp.Body(), &revoked); err != nil {
		return models.RevokeDeviceResponse{}, fmt.Errorf("decode revoke device response: %w", err)
	}

	return revoked, nil
}

// EventsTicket implements [ServerAdapter]. It POSTs to
// POST /api/events/ticket and returns the single-use stream ticket.
// Requires a valid bearer token.
func (h *httpServerAdapter) EventsTicket(ctx context.Context) (models.TicketResponse, error) {
	resp, err := h.authedRequest(ctx).Post("/api/events/ticket")
	if err != nil {
		return models.TicketResponse{}, classifyTransportError("events ticket request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TicketResponse{}, err
	}

	var ticket models.TicketResponse
	if err = json.Unmarshal(resp.Body(), &ticket); err != nil {
		return models.TicketResponse{}, fmt.Errorf("decode events ticket response: %w", err)
	}

	return ticket, nil
}

func (h *httpServerAdapter) deviceRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.device.ID != "" {
		req.SetHeader("X-Device-ID", h.device.ID)
		req.SetHeader("X-Device-Label", h.device.Label)
		req.SetHeader("X-Device-Platform", h.device.Platform)
	}
	return req
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.deviceRequest(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// classifyTransportError folds request-layer failures into the engine's
// taxonomy. Caller-initiated cancellation passes through untouched;
// everything else (DNS, connect, timeout) means the server is
// unreachable.
func classifyTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrOffline, err)
}
