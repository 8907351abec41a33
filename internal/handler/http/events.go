package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/utils"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// eventsHeartbeatInterval is how often the SSE stream emits a comment line
// so intermediaries do not reap an otherwise idle connection.
const eventsHeartbeatInterval = 25 * time.Second

// eventsTicket handles POST /api/events/ticket: a single-use, short-lived
// credential for opening the live event stream without a bearer token.
func (h *Handler) eventsTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	deviceID, _ := utils.GetDeviceIDFromContext(ctx)

	resp, err := h.services.EventsService.IssueTicket(ctx, userID, deviceID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

// eventsStream handles GET /api/events: the server-sent-events channel that
// notifies a device whenever the account's change log advances. The stream
// is authenticated by redeeming a ticket from the query string; the ticket
// is consumed whether or not the stream survives.
//
// The wire format is text/event-stream. Change notifications are sent as
// "data:" lines carrying a JSON [models.EventMessage]; comment lines are
// heartbeats. The handler returns when the client disconnects.
func (h *Handler) eventsStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		writeError(w, r, ErrMissingTicket)
		return
	}

	userID, deviceID, err := h.services.EventsService.RedeemTicket(ctx, ticket)
	if err != nil {
		writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error().Msg("response writer does not support flushing; event stream unavailable")
		utils.WriteAPIError(w, http.StatusInternalServerError, "internal_error",
			http.StatusText(http.StatusInternalServerError), true)
		return
	}

	events, cancel := h.services.EventsService.Subscribe(userID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// an immediate comment confirms the stream to the client before the
	// first real event arrives
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	log.Info().Int64("user_id", userID).Str("device_id", deviceID).Msg("event stream opened")

	heartbeat := time.NewTicker(eventsHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Int64("user_id", userID).Msg("event stream closed by client")
			return

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case cursor, open := <-events:
			if !open {
				return
			}

			payload, err := json.Marshal(models.EventMessage{Cursor: cursor})
			if err != nil {
				log.Err(err).Msg("marshal event message")
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
