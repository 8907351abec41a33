package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

func TestPushPending_AutoMergeRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	server := &fakeServer{}
	server.pushFn = func(req models.PushRequest) (models.PushResponse, error) {
		calls++
		require.Len(t, req.Operations, 1)
		op := req.Operations[0]

		if calls == 1 {
			// someone else pinned the note meanwhile
			serverNote := op.BaseNote.Clone()
			serverNote.IsPinned = true
			serverNote.Version = 3
			return models.PushResponse{Conflicts: []models.SyncConflict{{
				RequestID:      op.RequestID,
				NoteID:         op.NoteID,
				BaseVersion:    op.BaseVersion,
				CurrentVersion: 3,
				ServerNote:     serverNote,
				ChangedFields:  []string{models.FieldIsPinned},
				DetectedAt:     time.Now().UTC(),
			}}}, nil
		}

		committed := op.Note.Clone()
		committed.Version = op.BaseVersion + 1
		return models.PushResponse{Applied: []models.AppliedOp{{
			RequestID: op.RequestID,
			Note:      committed,
		}}}, nil
	}

	e, notes, state := newTestEngine(config.Engine{}, server)

	seed := models.Note{ID: "n1", Title: "old", Kind: models.NoteKindCapture, Version: 1}
	require.NoError(t, notes.SaveNotes(ctx, seed))

	edited := seed.Clone()
	edited.Title = "new title"
	_, err := e.Update(ctx, edited)
	require.NoError(t, err)

	// first cycle: conflict comes back, the merge retry stays queued
	require.NoError(t, e.SyncNow(ctx))
	assert.Empty(t, e.Conflicts())
	assert.Equal(t, 1, e.Backpressure().PendingOps)

	ops, err := state.GetAllOps(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.True(t, ops[0].AutoMergeAttempted)
	assert.Equal(t, int64(3), ops[0].BaseVersion)

	// second cycle: the rebased retry applies
	require.NoError(t, e.SyncNow(ctx))
	assert.Zero(t, e.Backpressure().PendingOps)

	merged, err := notes.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "new title", merged.Title)
	assert.True(t, merged.IsPinned, "server's pin survives the merge")
	assert.Equal(t, int64(4), merged.Version)
}

func TestPushPending_ManualConflict(t *testing.T) {
	ctx := context.Background()

	server := &fakeServer{}
	server.pushFn = func(req models.PushRequest) (models.PushResponse, error) {
		op := req.Operations[0]
		serverNote := op.BaseNote.Clone()
		serverNote.Title = "their title"
		serverNote.Version = 7
		return models.PushResponse{Conflicts: []models.SyncConflict{{
			RequestID:      op.RequestID,
			NoteID:         op.NoteID,
			BaseVersion:    op.BaseVersion,
			CurrentVersion: 7,
			ServerNote:     serverNote,
			ChangedFields:  []string{models.FieldTitle},
			DetectedAt:     time.Now().UTC(),
		}}}, nil
	}

	e, notes, state := newTestEngine(config.Engine{}, server)

	seed := models.Note{ID: "n1", Title: "old", Kind: models.NoteKindCapture, Version: 1}
	require.NoError(t, notes.SaveNotes(ctx, seed))

	edited := seed.Clone()
	edited.Title = "my title"
	_, err := e.Update(ctx, edited)
	require.NoError(t, err)

	require.NoError(t, e.SyncNow(ctx))

	// both sides edited the title: no silent winner
	conflicts := e.Conflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, "n1", conflicts[0].NoteID)
	assert.Equal(t, int64(7), conflicts[0].CurrentVersion)
	assert.Equal(t, models.StatusConflict, e.Status())

	assert.Zero(t, e.Backpressure().PendingOps, "conflicted op leaves the queue")

	stored, err := state.GetAllConflicts(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	local, err := notes.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "my title", local.Title, "local intended state stays until resolution")
}

func TestPushPending_AdvancesCursor(t *testing.T) {
	ctx := context.Background()

	server := &fakeServer{}
	server.pushFn = func(req models.PushRequest) (models.PushResponse, error) {
		op := req.Operations[0]
		committed := op.Note.Clone()
		committed.Version = op.BaseVersion + 1
		return models.PushResponse{
			Applied: []models.AppliedOp{{
				RequestID: op.RequestID,
				Note:      committed,
				Cursor:    10,
			}},
			NextCursor: 10,
		}, nil
	}

	e, _, state := newTestEngine(config.Engine{}, server)

	_, err := e.Capture(ctx, models.Note{Title: "advances the feed"})
	require.NoError(t, err)
	require.NoError(t, e.pushPending(ctx))

	assert.Equal(t, models.Cursor(10), e.Cursor(),
		"our own push moves the feed position forward")
	persisted, ok := state.metaValue(store.MetaCursor)
	require.True(t, ok)
	assert.Equal(t, "10", persisted)
}

func TestAcceptApplied_ReplayedAckIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e, notes, state := newTestEngine(config.Engine{}, &fakeServer{})

	note, err := e.Capture(ctx, models.Note{Title: "applied once"})
	require.NoError(t, err)
	require.NoError(t, e.SyncNow(ctx))

	committed, err := notes.GetNote(ctx, note.ID)
	require.NoError(t, err)

	// the same ack delivered twice (retried response replay)
	replay := models.AppliedOp{RequestID: "req-replayed", Note: committed}
	require.NoError(t, e.acceptApplied(ctx, replay))
	require.NoError(t, e.acceptApplied(ctx, replay))

	local, err := notes.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, committed.Version, local.Version, "replay never bumps the version")
	assert.Equal(t, committed.Title, local.Title)

	assert.Zero(t, e.Backpressure().PendingOps)
	ops, err := state.GetAllOps(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestAcceptApplied_SupersededAck(t *testing.T) {
	ctx := context.Background()
	e, notes, _ := newTestEngine(config.Engine{}, &fakeServer{})

	intended := models.Note{ID: "n1", Title: "second edit", Version: 1}
	require.NoError(t, notes.SaveNotes(ctx, intended))
	e.enqueue(ctx, models.SyncOp{
		RequestID:   "req-2",
		Op:          models.OpUpsert,
		NoteID:      "n1",
		BaseVersion: 1,
		Note:        &intended,
	})

	// ack for the first attempt arrives after the entry was compacted
	stale := models.Note{ID: "n1", Title: "first edit", Version: 2}
	require.NoError(t, e.acceptApplied(ctx, models.AppliedOp{RequestID: "req-1", Note: stale}))

	local, err := notes.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "second edit", local.Title, "stale ack must not clobber a newer queued edit")
	assert.Equal(t, 1, e.Backpressure().PendingOps)
}

func TestHandleConflict_LoopForcedManual(t *testing.T) {
	ctx := context.Background()
	e, notes, _ := newTestEngine(config.Engine{ConflictLoopCount: 2, ConflictLoopWindow: time.Hour}, &fakeServer{})

	seed := models.Note{ID: "n1", Title: "old", Version: 1}
	require.NoError(t, notes.SaveNotes(ctx, seed))

	makeConflict := func(requestID string, version int64) models.SyncConflict {
		serverNote := seed.Clone()
		serverNote.IsPinned = true
		serverNote.Version = version
		return models.SyncConflict{
			RequestID:      requestID,
			NoteID:         "n1",
			CurrentVersion: version,
			ServerNote:     serverNote,
			ChangedFields:  []string{models.FieldIsPinned},
			DetectedAt:     time.Now().UTC(),
		}
	}

	intended := seed.Clone()
	intended.Title = "mine"
	e.enqueue(ctx, models.SyncOp{
		RequestID:           "req-1",
		Op:                  models.OpUpsert,
		NoteID:              "n1",
		BaseVersion:         1,
		Note:                &intended,
		ClientChangedFields: []string{models.FieldTitle},
		BaseNote:            &seed,
	})

	// first conflict: mergeable, retry replaces the queue entry
	retried, err := e.handleConflict(ctx, makeConflict("req-1", 2))
	require.NoError(t, err)
	assert.True(t, retried)
	assert.Empty(t, e.Conflicts())

	e.mu.Lock()
	retry, ok := e.queue.Get("n1")
	e.mu.Unlock()
	require.True(t, ok)

	// second conflict inside the window trips the loop detector even
	// though the fields are still disjoint
	retried, err = e.handleConflict(ctx, makeConflict(retry.RequestID, 3))
	require.NoError(t, err)
	assert.False(t, retried)
	assert.Len(t, e.Conflicts(), 1)
	assert.Zero(t, e.Backpressure().PendingOps)
}
