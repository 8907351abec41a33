package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

func newTestEventsService(ttl time.Duration) *eventsService {
	return NewEventsService(config.Auth{TicketDuration: ttl}, logger.Nop()).(*eventsService)
}

func TestEventsService_TicketRedeemsOnce(t *testing.T) {
	svc := newTestEventsService(time.Minute)
	ctx := context.Background()

	issued, err := svc.IssueTicket(ctx, 1, "device-a")
	require.NoError(t, err)
	require.NotEmpty(t, issued.Ticket)
	assert.Equal(t, int64(60), issued.ExpiresIn)

	userID, deviceID, err := svc.RedeemTicket(ctx, issued.Ticket)
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
	assert.Equal(t, "device-a", deviceID)

	_, _, err = svc.RedeemTicket(ctx, issued.Ticket)
	require.ErrorIs(t, err, ErrTicketInvalid, "a ticket redeems exactly once")
}

func TestEventsService_TicketExpires(t *testing.T) {
	svc := newTestEventsService(30 * time.Second)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	issued, err := svc.IssueTicket(ctx, 1, "device-a")
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(31 * time.Second) }

	_, _, err = svc.RedeemTicket(ctx, issued.Ticket)
	require.ErrorIs(t, err, ErrTicketInvalid)
}

func TestEventsService_UnknownTicket(t *testing.T) {
	svc := newTestEventsService(time.Minute)

	_, _, err := svc.RedeemTicket(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrTicketInvalid)
}

func TestEventsService_BroadcastReachesSubscribers(t *testing.T) {
	svc := newTestEventsService(time.Minute)

	first, cancelFirst := svc.Subscribe(1)
	defer cancelFirst()
	second, cancelSecond := svc.Subscribe(1)
	defer cancelSecond()
	other, cancelOther := svc.Subscribe(2)
	defer cancelOther()

	svc.Broadcast(1, 42)

	assert.Equal(t, models.Cursor(42), <-first)
	assert.Equal(t, models.Cursor(42), <-second)

	select {
	case cursor := <-other:
		t.Fatalf("user 2 received user 1's broadcast: %d", cursor)
	default:
	}
}

func TestEventsService_BroadcastNeverBlocks(t *testing.T) {
	svc := newTestEventsService(time.Minute)

	ch, cancel := svc.Subscribe(1)
	defer cancel()

	// overflow the subscriber buffer without anyone draining it
	for i := 0; i < subscriberBuffer*2; i++ {
		svc.Broadcast(1, models.Cursor(i+1))
	}

	// the channel holds the first buffered notifications; the rest were
	// dropped rather than blocking the committing request
	assert.Len(t, ch, subscriberBuffer)
}

func TestEventsService_CancelClosesChannel(t *testing.T) {
	svc := newTestEventsService(time.Minute)

	ch, cancel := svc.Subscribe(1)
	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// broadcasting after cancel must not panic on the closed channel
	svc.Broadcast(1, 7)
}
