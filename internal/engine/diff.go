package engine

import (
	"github.com/bananahana720/pocket-brain-sub000/models"
	"github.com/google/uuid"
)

// The mutation diff engine turns local edits into queued sync operations.
// Every op records the note state the edit was based on (BaseNote,
// BaseVersion) and exactly which tracked fields the edit touched, which
// is what makes the no-overlap auto-merge possible later.

func newRequestID() string {
	return uuid.NewString()
}

// buildUpsertOp constructs the queue entry for a local create or edit.
// prev is the note as it was before the edit (nil for a brand-new note);
// its version becomes the op's optimistic base.
func buildUpsertOp(prev *models.Note, next models.Note) models.SyncOp {
	intended := next.Clone()

	op := models.SyncOp{
		RequestID: newRequestID(),
		Op:        models.OpUpsert,
		NoteID:    next.ID,
		Note:      &intended,
	}

	if prev != nil {
		op.BaseVersion = prev.Version
		base := prev.Clone()
		op.BaseNote = &base
		op.ClientChangedFields = models.ChangedFields(*prev, next)
	} else {
		op.ClientChangedFields = models.ChangedFields(models.Note{}, next)
	}

	return op
}

// buildDeleteOp constructs the queue entry for a local deletion.
func buildDeleteOp(prev models.Note) models.SyncOp {
	base := prev.Clone()

	return models.SyncOp{
		RequestID:   newRequestID(),
		Op:          models.OpDelete,
		NoteID:      prev.ID,
		BaseVersion: prev.Version,
		BaseNote:    &base,
	}
}
