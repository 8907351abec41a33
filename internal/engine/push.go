package engine

import (
	"context"
	"fmt"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

// pushPending drains the queue in batches. Only one push runs at a time
// across all triggers (control loop, realtime wake, manual SyncNow);
// concurrent callers return immediately and the in-flight push picks up
// whatever they enqueued.
func (e *SyncEngine) pushPending(ctx context.Context) error {
	if !e.pushInFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer e.pushInFlight.Store(false)

	e.setActiveSync(true)
	defer e.setActiveSync(false)

	for {
		e.mu.Lock()
		batch := e.queue.Batch(e.cfg.PushBatchSize)
		e.mu.Unlock()

		if len(batch) == 0 {
			return nil
		}

		resp, err := e.server.Push(ctx, models.PushRequest{Operations: batch})
		if err != nil {
			e.classifySyncError(err)
			return fmt.Errorf("push batch: %w", err)
		}
		e.markSyncHealthy()

		progressed := false

		for _, applied := range resp.Applied {
			if err = e.acceptApplied(ctx, applied); err != nil {
				return err
			}
			progressed = true
		}

		for _, conflict := range resp.Conflicts {
			retried, err := e.handleConflict(ctx, conflict)
			if err != nil {
				return err
			}
			// a merge retry stays queued; only a manual conflict
			// removes work from the queue
			if !retried {
				progressed = true
			}
		}

		// the push response carries the feed position after this batch;
		// fold it in so the next pull does not re-read our own writes
		// (commitCursor clamps, a stale position is a no-op)
		if err = e.commitCursor(ctx, resp.NextCursor); err != nil {
			return err
		}

		// when the whole batch became merge retries, yield and let the
		// next cycle push them, instead of spinning on the server
		if !progressed {
			return nil
		}
	}
}

// acceptApplied commits a server-acknowledged operation: the op leaves
// the queue and the committed note (with its server version) replaces
// the local copy, unless the user queued another edit meanwhile.
func (e *SyncEngine) acceptApplied(ctx context.Context, applied models.AppliedOp) error {
	e.mu.Lock()
	op, removed := e.queue.RemoveByRequestID(applied.RequestID)
	_, stillQueued := e.queue.Get(applied.Note.ID)
	e.mu.Unlock()

	if removed {
		if err := e.state.DeleteOp(ctx, op.NoteID); err != nil {
			return fmt.Errorf("push: drop acked op: %w", err)
		}
	}

	// an edit made while the push was in flight replaced the queue entry
	// (new request id); keep the local intended state and let the next
	// push reconcile it
	if !removed && stillQueued {
		return nil
	}

	if err := e.notes.SaveNotes(ctx, applied.Note); err != nil {
		return fmt.Errorf("push: save committed note: %w", err)
	}

	e.logger.Debug().
		Str("note_id", applied.Note.ID).
		Int64("version", applied.Note.Version).
		Msg("op acknowledged by server")

	return nil
}

// handleConflict routes a rejected op to either an automatic merge retry
// or the manual conflicts list. It reports whether a retry was queued.
func (e *SyncEngine) handleConflict(ctx context.Context, conflict models.SyncConflict) (bool, error) {
	e.mu.Lock()
	op, queued := e.queue.Get(conflict.NoteID)
	if !queued || op.RequestID != conflict.RequestID {
		// the conflicting op was already superseded by a newer edit;
		// that edit will push (and possibly conflict) on its own
		e.mu.Unlock()
		return true, nil
	}

	looping := e.tracker.Record(conflict.NoteID, e.now())
	retry, ok := planMerge(op, conflict, looping)
	if ok {
		e.queue.Replace(retry)
		e.mu.Unlock()

		if err := e.state.SaveOp(ctx, retry); err != nil {
			return false, fmt.Errorf("push: persist merge retry: %w", err)
		}

		e.logger.Info().
			Str("note_id", conflict.NoteID).
			Int64("base_version", retry.BaseVersion).
			Msg("conflict auto-merged, retry queued")
		return true, nil
	}

	e.queue.Remove(conflict.NoteID)
	e.conflicts[conflict.RequestID] = conflict
	e.mu.Unlock()

	if err := e.state.DeleteOp(ctx, conflict.NoteID); err != nil {
		return false, fmt.Errorf("push: drop conflicted op: %w", err)
	}
	if err := e.state.SaveConflict(ctx, conflict); err != nil {
		return false, fmt.Errorf("push: persist conflict: %w", err)
	}

	e.logger.Warn().
		Str("note_id", conflict.NoteID).
		Int64("base_version", conflict.BaseVersion).
		Int64("current_version", conflict.CurrentVersion).
		Bool("loop_detected", looping).
		Msg("conflict requires manual resolution")

	return false, nil
}
