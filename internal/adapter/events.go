package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

// OpenEvents implements [ServerAdapter]. It opens the server-sent-events
// stream at GET /api/events authenticated by a single-use ticket. The
// per-request timeout is disabled for the stream request; lifetime is
// governed by ctx and by Close.
func (h *httpServerAdapter) OpenEvents(ctx context.Context, ticket string) (EventStream, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetQueryParam("ticket", ticket).
		SetHeader("Accept", "text/event-stream").
		Get("/api/events")
	if err != nil {
		return nil, classifyTransportError("open events request", err)
	}

	if resp.StatusCode() != http.StatusOK {
		defer resp.RawBody().Close()
		body, _ := io.ReadAll(io.LimitReader(resp.RawBody(), 4096))
		return nil, mapStreamError(resp.StatusCode(), body, resp.Header().Get("Retry-After"))
	}

	return &sseStream{
		body:   resp.RawBody(),
		reader: bufio.NewReader(resp.RawBody()),
	}, nil
}

func mapStreamError(status int, body []byte, retryAfter string) error {
	message := strings.TrimSpace(string(body))
	var apiErr models.APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return &ServerBusyError{Status: status, RetryAfter: parseRetryAfter(retryAfter), Message: message}
	default:
		return fmt.Errorf("%w: http %d: %s", ErrBadRequest, status, message)
	}
}

// sseStream reads the text/event-stream wire format. Only the data field
// is meaningful for sync notifications; comment lines carry server
// heartbeats and are skipped.
type sseStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
}

// Recv blocks until the next change notification and returns the change
// cursor it advertises. Heartbeat comments are consumed silently. When
// the server closes the connection, Recv returns [ErrStreamClosed].
func (s *sseStream) Recv() (models.Cursor, error) {
	var data strings.Builder

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return 0, ErrStreamClosed
			}
			return 0, fmt.Errorf("read event stream: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, ":"):
			// heartbeat comment
			continue
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case line == "":
			if data.Len() == 0 {
				continue
			}

			var event models.EventMessage
			if err := json.Unmarshal([]byte(data.String()), &event); err != nil {
				return 0, fmt.Errorf("decode event message: %w", err)
			}
			return event.Cursor, nil
		}
	}
}

// Close tears down the underlying connection. Any blocked Recv returns
// shortly after.
func (s *sseStream) Close() error {
	return s.body.Close()
}
