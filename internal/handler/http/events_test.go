package http

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bananahana720/pocket-brain-sub000/internal/service"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

func TestEventsTicket(t *testing.T) {
	h, mocks := newTestHandler(t)
	expectBearer(mocks, 1)

	mocks.devices.EXPECT().Touch(gomock.Any(), gomock.Any()).Return(nil)
	mocks.events.EXPECT().
		IssueTicket(gomock.Any(), int64(1), "device-a").
		Return(models.TicketResponse{Ticket: "one-shot", ExpiresIn: 30}, nil)

	req := withBearer(httptest.NewRequest(http.MethodPost, "/api/events/ticket", nil))
	req.Header.Set("X-Device-ID", "device-a")
	rr := serve(h, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var ticket models.TicketResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ticket))
	assert.Equal(t, "one-shot", ticket.Ticket)
	assert.Equal(t, int64(30), ticket.ExpiresIn)
}

func TestEventsStream_RequiresTicket(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestEventsStream_InvalidTicket(t *testing.T) {
	h, mocks := newTestHandler(t)

	mocks.events.EXPECT().
		RedeemTicket(gomock.Any(), "stale").
		Return(int64(0), "", service.ErrTicketInvalid)

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/api/events?ticket=stale", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "ticket_invalid", decodeAPIError(t, rr).Code)
}

func TestEventsStream_DeliversCursorEvents(t *testing.T) {
	h, mocks := newTestHandler(t)

	events := make(chan models.Cursor, 1)
	cancelled := make(chan struct{})

	mocks.events.EXPECT().
		RedeemTicket(gomock.Any(), "good-ticket").
		Return(int64(1), "device-a", nil)
	mocks.events.EXPECT().
		Subscribe(int64(1)).
		Return((<-chan models.Cursor)(events), func() { close(cancelled) })

	srv := httptest.NewServer(h.Init())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events?ticket=good-ticket")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events <- 42

	reader := bufio.NewReader(resp.Body)
	var data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)

		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			break
		}
	}

	var event models.EventMessage
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, models.Cursor(42), event.Cursor)

	// closing the hub side ends the stream and releases the subscription
	close(events)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not cancelled after the stream ended")
	}
}
