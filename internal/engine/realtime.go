package engine

import (
	"context"
	"errors"
	"time"

	"github.com/bananahana720/pocket-brain-sub000/internal/adapter"
)

// runRealtime maintains the live notification channel: a fresh
// single-use ticket per connection attempt, then a blocking receive
// loop on the event stream. Too many failures inside the configured
// window, or a channel that has been failing continuously for the whole
// window, demote the engine to interval polling for a cooldown before
// the next attempt, so a flapping stream never turns into a reconnect
// storm.
func (e *SyncEngine) runRealtime(ctx context.Context) {
	defer func() { e.done <- struct{}{} }()

	var (
		failures     []time.Time
		firstFailure time.Time
	)

	for {
		if ctx.Err() != nil {
			return
		}

		if !e.Enabled() {
			if !sleepCtx(ctx, e.cfg.HeartbeatFallback) {
				return
			}
			continue
		}

		err := e.streamOnce(ctx)
		e.setChannelLive(false)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			now := e.now()
			if firstFailure.IsZero() {
				firstFailure = now
			}
			failures = appendFailure(failures, now, e.cfg.RealtimeFailureWindow)

			if fallbackDue(failures, firstFailure, now, e.cfg.RealtimeFailureLimit, e.cfg.RealtimeFailureWindow) {
				e.logger.Warn().
					Int("failures", len(failures)).
					Dur("failing_for", now.Sub(firstFailure)).
					Dur("cooldown", e.cfg.HeartbeatFallback).
					Msg("live channel keeps failing, falling back to polling")
				failures = failures[:0]
				firstFailure = time.Time{}
				if !sleepCtx(ctx, e.cfg.HeartbeatFallback) {
					return
				}
				continue
			}

			e.logger.Debug().Err(err).Msg("live channel attempt failed")
		} else {
			failures = failures[:0]
			firstFailure = time.Time{}
		}

		// brief pause between attempts, also after a clean server close
		if !sleepCtx(ctx, time.Second) {
			return
		}
	}
}

// fallbackDue decides the demotion to polling: either enough failures
// landed inside the pruning window, or the channel has been failing
// without a single healthy session for the window's full duration (a
// handful of slow, hanging attempts can outlast the window and prune
// their own history, so the count alone is not sufficient).
func fallbackDue(failures []time.Time, firstFailure, now time.Time, limit int, window time.Duration) bool {
	if len(failures) >= limit {
		return true
	}
	return !firstFailure.IsZero() && now.Sub(firstFailure) >= window
}

// streamOnce runs one ticket+connect+receive session. It returns nil
// only when the server closed the stream cleanly.
func (e *SyncEngine) streamOnce(ctx context.Context) error {
	ticket, err := e.server.EventsTicket(ctx)
	if err != nil {
		e.classifySyncError(err)
		return err
	}

	stream, err := e.server.OpenEvents(ctx, ticket.Ticket)
	if err != nil {
		e.classifySyncError(err)
		return err
	}
	defer stream.Close()

	// close the stream when the engine shuts down so Recv unblocks
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			stream.Close()
		case <-watchDone:
		}
	}()

	e.setChannelLive(true)
	e.markSyncHealthy()
	e.logger.Info().Msg("live channel established")

	for {
		cursor, err := stream.Recv()
		if err != nil {
			if errors.Is(err, adapter.ErrStreamClosed) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
				// routine rotation or shutdown, not a channel failure
				return nil
			}
			return err
		}

		e.mu.Lock()
		behind := cursor > e.cursor
		e.mu.Unlock()

		if behind {
			e.kick()
		}
	}
}

func (e *SyncEngine) setChannelLive(live bool) {
	e.mu.Lock()
	e.channelLive = live
	e.mu.Unlock()
}

// appendFailure records a failure at now and drops entries older than
// window.
func appendFailure(failures []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	kept := failures[:0]
	for _, at := range failures {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	return append(kept, now)
}

// sleepCtx sleeps for d, returning false when ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
