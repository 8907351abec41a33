package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/service"
	"github.com/bananahana720/pocket-brain-sub000/internal/utils"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// authedUserID extracts the user ID the auth middleware stored in the
// request context. A miss means the route is wired without auth; the
// request is rejected and ok is false.
func authedUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, ErrEmptyAuthorizationHeader)
		return 0, false
	}
	return userID, true
}

// snapshot handles GET /api/notes: the full authoritative note collection
// together with the change-log cursor it is consistent with.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("include_deleted"))

	resp, err := h.services.SyncService.Snapshot(ctx, userID, includeDeleted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

// pull handles GET /api/sync/pull: the incremental change feed after the
// requested cursor. A stale cursor yields a reset-required body with HTTP
// 200, never an error status.
func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	var cursor models.Cursor
	if raw := query.Get("cursor"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			log.Warn().Str("cursor", raw).Msg("unparsable cursor")
			writeError(w, r, service.ErrInvalidDataProvided)
			return
		}
		cursor = models.Cursor(parsed)
	}

	var limit int
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, r, service.ErrInvalidDataProvided)
			return
		}
		limit = parsed
	}

	resp, err := h.services.SyncService.Pull(ctx, userID, cursor, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

// push handles POST /api/sync/push: a batch of client operations applied
// under optimistic version checks. Version conflicts are reported inside
// the response body per operation, never as an HTTP error.
func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	resp, err := h.services.SyncService.Push(ctx, userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug().
		Int("operations", len(req.Operations)).
		Int("applied", len(resp.Applied)).
		Int("conflicts", len(resp.Conflicts)).
		Msg("push processed")

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

// bootstrap handles POST /api/sync/bootstrap: the one-time import of a
// pre-sync local collection. A retry with the same source fingerprint is
// acknowledged instead of duplicated; a different fingerprint on an
// already-bootstrapped account is a conflict.
func (h *Handler) bootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	var req models.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	resp, err := h.services.SyncService.Bootstrap(ctx, userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}
