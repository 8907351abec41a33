package engine

import (
	"time"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

// The conflict resolver decides, per rejected push operation, between an
// automatic field-level merge retry and surfacing a manual conflict.
//
// An automatic merge is only safe when the two sides touched disjoint
// tracked fields: the server's note is taken as the base and the
// client's changed fields are layered on top, so neither side's edits
// are lost. Everything else goes to the user.

// planMerge returns the rebased retry operation when the conflict
// qualifies for an automatic merge. ok is false when the conflict must
// be surfaced for manual resolution instead.
func planMerge(op models.SyncOp, conflict models.SyncConflict, loopDetected bool) (models.SyncOp, bool) {
	if loopDetected || op.AutoMergeAttempted {
		return models.SyncOp{}, false
	}
	if op.Op != models.OpUpsert || op.Note == nil {
		return models.SyncOp{}, false
	}
	if conflict.ServerNote.IsTombstone() {
		// the other side deleted the note; resurrecting it silently is
		// never the right call
		return models.SyncOp{}, false
	}
	if len(op.ClientChangedFields) == 0 || len(conflict.ChangedFields) == 0 {
		return models.SyncOp{}, false
	}
	if models.FieldsOverlap(op.ClientChangedFields, conflict.ChangedFields) {
		return models.SyncOp{}, false
	}

	merged := models.ApplyFields(conflict.ServerNote, *op.Note, op.ClientChangedFields)
	base := conflict.ServerNote.Clone()

	return models.SyncOp{
		RequestID:           newRequestID(),
		Op:                  models.OpUpsert,
		NoteID:              op.NoteID,
		BaseVersion:         conflict.CurrentVersion,
		Note:                &merged,
		ClientChangedFields: op.ClientChangedFields,
		BaseNote:            &base,
		AutoMergeAttempted:  true,
	}, true
}

// conflictTracker notices notes that keep conflicting. Once a note
// conflicts limit times inside window, further conflicts on it are
// forced manual so an auto-merge ping-pong between devices cannot spin
// forever.
type conflictTracker struct {
	window  time.Duration
	limit   int
	history map[string][]time.Time
}

func newConflictTracker(window time.Duration, limit int) *conflictTracker {
	return &conflictTracker{
		window:  window,
		limit:   limit,
		history: make(map[string][]time.Time),
	}
}

// Record registers a conflict on noteID at now and reports whether the
// note has entered a conflict loop.
func (t *conflictTracker) Record(noteID string, now time.Time) bool {
	if t.limit <= 0 {
		return false
	}

	cutoff := now.Add(-t.window)
	kept := t.history[noteID][:0]
	for _, at := range t.history[noteID] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	kept = append(kept, now)
	t.history[noteID] = kept

	return len(kept) >= t.limit
}

// Reset clears the history for noteID, used once a conflict is resolved
// manually.
func (t *conflictTracker) Reset(noteID string) {
	delete(t.history, noteID)
}
