package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

func mergeFixture() (models.SyncOp, models.SyncConflict) {
	intended := models.Note{
		ID:      "n1",
		Title:   "client title",
		Content: "shared content",
		Kind:    models.NoteKindCapture,
		Version: 3,
	}
	server := models.Note{
		ID:       "n1",
		Title:    "old title",
		Content:  "shared content",
		Kind:     models.NoteKindCapture,
		IsPinned: true,
		Version:  5,
	}

	op := models.SyncOp{
		RequestID:           "req-1",
		Op:                  models.OpUpsert,
		NoteID:              "n1",
		BaseVersion:         3,
		Note:                &intended,
		ClientChangedFields: []string{models.FieldTitle},
	}
	conflict := models.SyncConflict{
		RequestID:      "req-1",
		NoteID:         "n1",
		BaseVersion:    3,
		CurrentVersion: 5,
		ServerNote:     server,
		ChangedFields:  []string{models.FieldIsPinned},
	}
	return op, conflict
}

func TestPlanMerge_DisjointFields(t *testing.T) {
	op, conflict := mergeFixture()

	retry, ok := planMerge(op, conflict, false)
	require.True(t, ok)

	assert.NotEqual(t, op.RequestID, retry.RequestID, "retry needs a fresh idempotency key")
	assert.Equal(t, int64(5), retry.BaseVersion, "retry rebases onto the server's version")
	assert.True(t, retry.AutoMergeAttempted)

	require.NotNil(t, retry.Note)
	assert.Equal(t, "client title", retry.Note.Title, "client's field wins")
	assert.True(t, retry.Note.IsPinned, "server's field survives")
	require.NotNil(t, retry.BaseNote)
	assert.Equal(t, "old title", retry.BaseNote.Title)
}

func TestPlanMerge_RefusalReasons(t *testing.T) {
	deletedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(op *models.SyncOp, conflict *models.SyncConflict)
		loop   bool
	}{
		{
			name: "overlapping fields",
			mutate: func(op *models.SyncOp, conflict *models.SyncConflict) {
				conflict.ChangedFields = []string{models.FieldTitle}
			},
		},
		{
			name: "server tombstone",
			mutate: func(op *models.SyncOp, conflict *models.SyncConflict) {
				conflict.ServerNote.DeletedAt = &deletedAt
			},
		},
		{
			name: "delete op",
			mutate: func(op *models.SyncOp, conflict *models.SyncConflict) {
				op.Op = models.OpDelete
				op.Note = nil
			},
		},
		{
			name: "second merge on the same op",
			mutate: func(op *models.SyncOp, conflict *models.SyncConflict) {
				op.AutoMergeAttempted = true
			},
		},
		{
			name: "unknown client fields",
			mutate: func(op *models.SyncOp, conflict *models.SyncConflict) {
				op.ClientChangedFields = nil
			},
		},
		{
			name: "unknown server fields",
			mutate: func(op *models.SyncOp, conflict *models.SyncConflict) {
				conflict.ChangedFields = nil
			},
		},
		{
			name:   "conflict loop detected",
			mutate: func(op *models.SyncOp, conflict *models.SyncConflict) {},
			loop:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, conflict := mergeFixture()
			tt.mutate(&op, &conflict)

			_, ok := planMerge(op, conflict, tt.loop)
			assert.False(t, ok)
		})
	}
}

func TestConflictTracker_LoopDetection(t *testing.T) {
	tracker := newConflictTracker(5*time.Minute, 3)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	assert.False(t, tracker.Record("n1", now))
	assert.False(t, tracker.Record("n1", now.Add(time.Minute)))
	assert.True(t, tracker.Record("n1", now.Add(2*time.Minute)), "third conflict in window is a loop")

	// a different note has its own history
	assert.False(t, tracker.Record("n2", now.Add(2*time.Minute)))
}

func TestConflictTracker_WindowExpiry(t *testing.T) {
	tracker := newConflictTracker(5*time.Minute, 3)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tracker.Record("n1", now)
	tracker.Record("n1", now.Add(time.Minute))

	// the first two fall out of the trailing window
	assert.False(t, tracker.Record("n1", now.Add(10*time.Minute)))
}

func TestConflictTracker_Reset(t *testing.T) {
	tracker := newConflictTracker(5*time.Minute, 2)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tracker.Record("n1", now)
	tracker.Reset("n1")

	assert.False(t, tracker.Record("n1", now.Add(time.Second)), "reset clears the loop history")
}
