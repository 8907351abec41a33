package engine

import (
	"context"
	"fmt"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

// Resolution is a user's decision on a manual conflict.
type Resolution string

const (
	// ResolutionKeepServer accepts the server's version of the note and
	// discards the local edit.
	ResolutionKeepServer Resolution = "keep_server"
	// ResolutionKeepLocal re-queues the local state of the note rebased
	// onto the server's current version, overwriting the remote edit.
	ResolutionKeepLocal Resolution = "keep_local"
	// ResolutionDismiss drops the conflict entry without touching either
	// side. The local copy stays as it is, unsynced.
	ResolutionDismiss Resolution = "dismiss"
)

// ResolveConflict applies the user's decision to a pending conflict and
// removes it from the list. Resolving also resets the note's conflict
// loop history, giving the next automatic merge a clean slate.
func (e *SyncEngine) ResolveConflict(ctx context.Context, requestID string, resolution Resolution) error {
	e.mu.Lock()
	conflict, ok := e.conflicts[requestID]
	if !ok {
		e.mu.Unlock()
		return ErrConflictNotFound
	}
	delete(e.conflicts, requestID)
	e.tracker.Reset(conflict.NoteID)
	e.mu.Unlock()

	if err := e.state.DeleteConflict(ctx, requestID); err != nil {
		return fmt.Errorf("resolve: drop conflict: %w", err)
	}

	switch resolution {
	case ResolutionKeepServer:
		if err := e.notes.SaveNotes(ctx, conflict.ServerNote); err != nil {
			return fmt.Errorf("resolve: apply server note: %w", err)
		}

	case ResolutionKeepLocal:
		local, err := e.notes.GetNote(ctx, conflict.NoteID)
		if err != nil {
			return fmt.Errorf("resolve: load local note: %w", err)
		}

		base := conflict.ServerNote.Clone()
		intended := local.Clone()
		op := models.SyncOp{
			RequestID:           newRequestID(),
			Op:                  models.OpUpsert,
			NoteID:              conflict.NoteID,
			BaseVersion:         conflict.CurrentVersion,
			Note:                &intended,
			ClientChangedFields: models.ChangedFields(conflict.ServerNote, local),
			BaseNote:            &base,
		}
		if local.IsTombstone() {
			op = models.SyncOp{
				RequestID:   newRequestID(),
				Op:          models.OpDelete,
				NoteID:      conflict.NoteID,
				BaseVersion: conflict.CurrentVersion,
				BaseNote:    &base,
			}
		}

		e.enqueue(ctx, op)
		e.kick()

	case ResolutionDismiss:
		// nothing else to do

	default:
		return fmt.Errorf("resolve: unknown resolution %q", resolution)
	}

	e.logger.Info().
		Str("note_id", conflict.NoteID).
		Str("resolution", string(resolution)).
		Msg("conflict resolved")

	return nil
}
