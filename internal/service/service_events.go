package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// subscriberBuffer is the per-subscriber notification backlog. Cursor
// notifications are coalescible (only the newest matters), so a full
// buffer simply drops the send; the subscriber catches up on its next
// pull anyway.
const subscriberBuffer = 8

type ticketEntry struct {
	userID    int64
	deviceID  string
	expiresAt time.Time
}

// eventsService is the concrete implementation of EventsService: an
// in-process hub of per-user subscriber channels plus a single-use
// ticket vault for authenticating stream connections.
//
// Tickets exist because EventSource cannot set an Authorization header:
// the client trades its bearer token for a short-lived ticket over a
// normal authenticated request, then opens the stream with the ticket
// in the query string.
type eventsService struct {
	ticketTTL time.Duration
	logger    *logger.Logger

	mu      sync.Mutex
	tickets map[string]ticketEntry
	subs    map[int64]map[chan models.Cursor]struct{}

	now func() time.Time
}

// NewEventsService constructs the event hub. Ticket lifetime comes from
// cfg; expired tickets are swept lazily on every issue.
func NewEventsService(cfg config.Auth, logger *logger.Logger) EventsService {
	return &eventsService{
		ticketTTL: cfg.TicketDuration,
		logger:    logger,
		tickets:   make(map[string]ticketEntry),
		subs:      make(map[int64]map[chan models.Cursor]struct{}),
		now:       time.Now,
	}
}

// IssueTicket mints a single-use stream credential for the caller.
func (e *eventsService) IssueTicket(ctx context.Context, userID int64, deviceID string) (models.TicketResponse, error) {
	if userID == 0 {
		return models.TicketResponse{}, ErrInvalidDataProvided
	}

	ticket := uuid.NewString()
	now := e.now()

	e.mu.Lock()
	e.sweepExpiredLocked(now)
	e.tickets[ticket] = ticketEntry{
		userID:    userID,
		deviceID:  deviceID,
		expiresAt: now.Add(e.ticketTTL),
	}
	e.mu.Unlock()

	logger.FromContext(ctx).Debug().
		Int64("user_id", userID).
		Str("device_id", deviceID).
		Msg("event ticket issued")

	return models.TicketResponse{
		Ticket:    ticket,
		ExpiresIn: int64(e.ticketTTL.Seconds()),
	}, nil
}

// RedeemTicket consumes a ticket. Unknown, expired, and already-redeemed
// tickets are indistinguishable to the caller.
func (e *eventsService) RedeemTicket(ctx context.Context, ticket string) (int64, string, error) {
	e.mu.Lock()
	entry, ok := e.tickets[ticket]
	if ok {
		delete(e.tickets, ticket)
	}
	e.mu.Unlock()

	if !ok || e.now().After(entry.expiresAt) {
		logger.FromContext(ctx).Warn().Msg("event ticket rejected")
		return 0, "", ErrTicketInvalid
	}

	return entry.userID, entry.deviceID, nil
}

// Subscribe registers a cursor listener for userID. The cancel function
// removes the subscription and closes the channel.
func (e *eventsService) Subscribe(userID int64) (<-chan models.Cursor, func()) {
	ch := make(chan models.Cursor, subscriberBuffer)

	e.mu.Lock()
	if e.subs[userID] == nil {
		e.subs[userID] = make(map[chan models.Cursor]struct{})
	}
	e.subs[userID][ch] = struct{}{}
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if set, ok := e.subs[userID]; ok {
			if _, subscribed := set[ch]; subscribed {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(e.subs, userID)
			}
		}
		e.mu.Unlock()
	}

	return ch, cancel
}

// Broadcast fans a cursor notification out to every subscriber of
// userID without ever blocking the committing request.
func (e *eventsService) Broadcast(userID int64, cursor models.Cursor) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for ch := range e.subs[userID] {
		select {
		case ch <- cursor:
		default:
		}
	}
}

func (e *eventsService) sweepExpiredLocked(now time.Time) {
	for ticket, entry := range e.tickets {
		if now.After(entry.expiresAt) {
			delete(e.tickets, ticket)
		}
	}
}
