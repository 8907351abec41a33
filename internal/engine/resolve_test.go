package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

func seedConflict(t *testing.T, e *SyncEngine, state *memState) models.SyncConflict {
	t.Helper()

	conflict := models.SyncConflict{
		RequestID:      "req-c1",
		NoteID:         "n1",
		BaseVersion:    2,
		CurrentVersion: 6,
		ServerNote: models.Note{
			ID:      "n1",
			Title:   "their title",
			Kind:    models.NoteKindCapture,
			Version: 6,
		},
		ChangedFields: []string{models.FieldTitle},
		DetectedAt:    time.Now().UTC(),
	}

	e.mu.Lock()
	e.conflicts[conflict.RequestID] = conflict
	e.tracker.Record(conflict.NoteID, time.Now())
	e.mu.Unlock()
	require.NoError(t, state.SaveConflict(context.Background(), conflict))

	return conflict
}

func TestResolveConflict_KeepServer(t *testing.T) {
	ctx := context.Background()
	e, notes, state := newTestEngine(config.Engine{}, &fakeServer{})

	require.NoError(t, notes.SaveNotes(ctx, models.Note{ID: "n1", Title: "my title", Version: 2}))
	conflict := seedConflict(t, e, state)

	require.NoError(t, e.ResolveConflict(ctx, conflict.RequestID, ResolutionKeepServer))

	local, err := notes.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "their title", local.Title)
	assert.Equal(t, int64(6), local.Version)

	assert.Empty(t, e.Conflicts())
	stored, err := state.GetAllConflicts(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestResolveConflict_KeepLocal(t *testing.T) {
	ctx := context.Background()
	e, notes, state := newTestEngine(config.Engine{}, &fakeServer{})

	require.NoError(t, notes.SaveNotes(ctx, models.Note{ID: "n1", Title: "my title", Version: 2}))
	conflict := seedConflict(t, e, state)

	require.NoError(t, e.ResolveConflict(ctx, conflict.RequestID, ResolutionKeepLocal))

	// the local state is re-queued, rebased onto the server's version
	e.mu.Lock()
	op, ok := e.queue.Get("n1")
	e.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, models.OpUpsert, op.Op)
	assert.Equal(t, int64(6), op.BaseVersion)
	require.NotNil(t, op.Note)
	assert.Equal(t, "my title", op.Note.Title)
	assert.Contains(t, op.ClientChangedFields, models.FieldTitle)

	local, err := notes.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "my title", local.Title, "keep-local leaves the local copy alone")
	assert.Empty(t, e.Conflicts())
}

func TestResolveConflict_KeepLocalTombstone(t *testing.T) {
	ctx := context.Background()
	e, notes, state := newTestEngine(config.Engine{}, &fakeServer{})

	deletedAt := time.Now().UTC()
	require.NoError(t, notes.SaveNotes(ctx, models.Note{ID: "n1", Version: 2, DeletedAt: &deletedAt}))
	conflict := seedConflict(t, e, state)

	require.NoError(t, e.ResolveConflict(ctx, conflict.RequestID, ResolutionKeepLocal))

	e.mu.Lock()
	op, ok := e.queue.Get("n1")
	e.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, models.OpDelete, op.Op)
	assert.Equal(t, int64(6), op.BaseVersion)
	assert.Nil(t, op.Note)
}

func TestResolveConflict_Dismiss(t *testing.T) {
	ctx := context.Background()
	e, notes, state := newTestEngine(config.Engine{}, &fakeServer{})

	require.NoError(t, notes.SaveNotes(ctx, models.Note{ID: "n1", Title: "my title", Version: 2}))
	conflict := seedConflict(t, e, state)

	require.NoError(t, e.ResolveConflict(ctx, conflict.RequestID, ResolutionDismiss))

	local, err := notes.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "my title", local.Title)
	assert.Zero(t, e.Backpressure().PendingOps, "dismiss queues nothing")
	assert.Empty(t, e.Conflicts())
}

func TestResolveConflict_NotFound(t *testing.T) {
	e, _, _ := newTestEngine(config.Engine{}, &fakeServer{})

	err := e.ResolveConflict(context.Background(), "missing", ResolutionKeepServer)
	require.ErrorIs(t, err, ErrConflictNotFound)
}

func TestResolveConflict_UnknownResolution(t *testing.T) {
	ctx := context.Background()
	e, notes, state := newTestEngine(config.Engine{}, &fakeServer{})

	require.NoError(t, notes.SaveNotes(ctx, models.Note{ID: "n1", Version: 2}))
	conflict := seedConflict(t, e, state)

	err := e.ResolveConflict(ctx, conflict.RequestID, Resolution("coin-flip"))
	require.Error(t, err)
}
