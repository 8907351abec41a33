package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// pullChanges advances the local replica along the server's change feed
// from the stored cursor. Changes for notes with a queued local edit are
// shadowed: the local intended state stays visible and the divergence is
// settled by the push pipeline's conflict handling, never by the pull
// side silently overwriting an unsynced edit. Only one pull runs at a
// time across all triggers (control loop, realtime wake, manual
// SyncNow); concurrent callers return immediately.
func (e *SyncEngine) pullChanges(ctx context.Context) error {
	if !e.pullInFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer e.pullInFlight.Store(false)

	e.setActiveSync(true)
	defer e.setActiveSync(false)

	for {
		e.mu.Lock()
		cursor := e.cursor
		e.mu.Unlock()

		resp, err := e.server.Pull(ctx, cursor)
		if err != nil {
			e.classifySyncError(err)
			return fmt.Errorf("pull changes: %w", err)
		}
		e.markSyncHealthy()

		if resp.ResetRequired {
			e.logger.Warn().
				Int64("cursor", int64(cursor)).
				Int64("oldest_available", int64(resp.OldestAvailableCursor)).
				Str("reason", resp.ResetReason).
				Msg("cursor beyond retained history, resnapshotting")
			return e.resetFromSnapshot(ctx)
		}

		if len(resp.Changes) == 0 {
			return nil
		}

		for _, change := range resp.Changes {
			if err = e.applyChange(ctx, change); err != nil {
				return err
			}
		}

		if err = e.commitCursor(ctx, resp.NextCursor); err != nil {
			return err
		}
	}
}

// applyChange folds one replicated change into the local store.
func (e *SyncEngine) applyChange(ctx context.Context, change models.Change) error {
	e.mu.Lock()
	_, shadowed := e.queue.Get(change.Note.ID)
	e.mu.Unlock()

	if shadowed {
		e.logger.Debug().
			Str("note_id", change.Note.ID).
			Msg("pull change shadowed by pending local edit")
		return nil
	}

	local, err := e.notes.GetNote(ctx, change.Note.ID)
	if err == nil && local.Version >= change.Note.Version {
		// already at or past this state (e.g. our own push echoed back)
		return nil
	}

	if err = e.notes.SaveNotes(ctx, change.Note); err != nil {
		return fmt.Errorf("pull: apply change (note_id=%s): %w", change.Note.ID, err)
	}

	return nil
}

// resetFromSnapshot rebuilds the local replica from a full server
// snapshot after the cursor fell out of retained history. Queued local
// edits survive the reset: their intended states are replayed on top of
// the snapshot and the operations stay queued, so the next push settles
// them through the normal conflict path.
func (e *SyncEngine) resetFromSnapshot(ctx context.Context) error {
	snapshot, err := e.server.Snapshot(ctx, true)
	if err != nil {
		e.classifySyncError(err)
		return fmt.Errorf("reset: fetch snapshot: %w", err)
	}
	e.markSyncHealthy()

	if err = e.notes.ReplaceAll(ctx, snapshot.Notes); err != nil {
		return fmt.Errorf("reset: replace local notes: %w", err)
	}

	e.mu.Lock()
	pending := e.queue.All()
	e.mu.Unlock()

	for _, op := range pending {
		if op.Op != models.OpUpsert || op.Note == nil {
			continue
		}
		if err = e.notes.SaveNotes(ctx, *op.Note); err != nil {
			return fmt.Errorf("reset: replay pending edit (note_id=%s): %w", op.NoteID, err)
		}
	}

	if err = e.commitCursor(ctx, snapshot.Cursor); err != nil {
		return err
	}

	e.logger.Info().
		Int("notes", len(snapshot.Notes)).
		Int("replayed_ops", len(pending)).
		Int64("cursor", int64(snapshot.Cursor)).
		Msg("local replica reset from snapshot")

	return nil
}

// commitCursor advances the cursor to max(current, cursor) and persists
// it. The clamp makes out-of-order completions harmless: a response that
// raced in late can never rewind the feed position, in memory or in the
// store. The store write happens under the engine mutex so a newer
// cursor is never overwritten by a stale one.
func (e *SyncEngine) commitCursor(ctx context.Context, cursor models.Cursor) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cursor <= e.cursor {
		return nil
	}
	e.cursor = cursor

	if err := e.state.SetMeta(ctx, store.MetaCursor, strconv.FormatInt(int64(cursor), 10)); err != nil {
		return fmt.Errorf("persist cursor: %w", err)
	}
	return nil
}
