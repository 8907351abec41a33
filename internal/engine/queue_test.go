package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

func upsertOp(requestID, noteID string, baseVersion int64, fields ...string) models.SyncOp {
	note := models.Note{ID: noteID, Title: "t", Kind: models.NoteKindCapture, Version: baseVersion}
	return models.SyncOp{
		RequestID:           requestID,
		Op:                  models.OpUpsert,
		NoteID:              noteID,
		BaseVersion:         baseVersion,
		Note:                &note,
		ClientChangedFields: fields,
	}
}

func TestOpQueue_CompactsRepeatedEdits(t *testing.T) {
	q := newOpQueue(10)

	q.Enqueue(upsertOp("req-1", "n1", 4, models.FieldTitle))
	policy, evicted := q.Enqueue(upsertOp("req-2", "n1", 5, models.FieldContent))

	assert.Empty(t, evicted)
	assert.Equal(t, 1, policy.CompactionDrops)
	assert.Equal(t, 1, q.Len())

	op, ok := q.Get("n1")
	require.True(t, ok)
	assert.Equal(t, "req-2", op.RequestID, "compacted entry carries the newest request id")
	assert.Equal(t, int64(4), op.BaseVersion, "compacted entry keeps the oldest base")
	assert.Equal(t, []string{models.FieldTitle, models.FieldContent}, op.ClientChangedFields)
}

func TestOpQueue_DeleteSupersedesBufferedEdit(t *testing.T) {
	q := newOpQueue(10)

	q.Enqueue(upsertOp("req-1", "n1", 2, models.FieldTitle))
	q.Enqueue(models.SyncOp{
		RequestID:   "req-2",
		Op:          models.OpDelete,
		NoteID:      "n1",
		BaseVersion: 2,
	})

	op, ok := q.Get("n1")
	require.True(t, ok)
	assert.Equal(t, models.OpDelete, op.Op)
	assert.Nil(t, op.Note)
	assert.Nil(t, op.ClientChangedFields)
}

func TestOpQueue_BackpressureAtCap(t *testing.T) {
	q := newOpQueue(3)

	q.Enqueue(upsertOp("req-1", "n1", 0))
	q.Enqueue(upsertOp("req-2", "n2", 0))
	assert.False(t, q.Backpressure().Blocked, "below cap must not block")

	q.Enqueue(upsertOp("req-3", "n3", 0))
	bp := q.Backpressure()
	assert.True(t, bp.Blocked, "reaching the cap blocks new captures")
	assert.Equal(t, 3, bp.PendingOps)
	assert.Equal(t, 3, bp.Cap)

	// further edits of already-queued notes compact and never grow the queue
	q.Enqueue(upsertOp("req-4", "n2", 1, models.FieldContent))
	assert.Equal(t, 3, q.Len())
}

func TestOpQueue_OverflowEvictsOldest(t *testing.T) {
	q := newOpQueue(2)

	q.Enqueue(upsertOp("req-1", "n1", 0))
	q.Enqueue(upsertOp("req-2", "n2", 0))
	policy, evicted := q.Enqueue(upsertOp("req-3", "n3", 0))

	require.Len(t, evicted, 1)
	assert.Equal(t, "n1", evicted[0].NoteID)
	assert.Equal(t, 1, policy.OverflowDrops)
	assert.Equal(t, 2, q.Len())

	_, ok := q.Get("n1")
	assert.False(t, ok)
}

func TestOpQueue_BatchKeepsEnqueueOrder(t *testing.T) {
	q := newOpQueue(10)

	q.Enqueue(upsertOp("req-1", "n1", 0))
	q.Enqueue(upsertOp("req-2", "n2", 0))
	q.Enqueue(upsertOp("req-3", "n3", 0))
	// compacting n1 must not move it to the back
	q.Enqueue(upsertOp("req-4", "n1", 1, models.FieldTitle))

	batch := q.Batch(2)
	require.Len(t, batch, 2)
	assert.Equal(t, "n1", batch[0].NoteID)
	assert.Equal(t, "n2", batch[1].NoteID)

	all := q.All()
	require.Len(t, all, 3)
	assert.Equal(t, "n3", all[2].NoteID)
}

func TestOpQueue_RemoveByRequestID(t *testing.T) {
	q := newOpQueue(10)

	q.Enqueue(upsertOp("req-1", "n1", 0))
	q.Enqueue(upsertOp("req-2", "n1", 1, models.FieldTitle))

	// the first attempt's id was superseded by compaction
	_, removed := q.RemoveByRequestID("req-1")
	assert.False(t, removed)
	assert.Equal(t, 1, q.Len())

	op, removed := q.RemoveByRequestID("req-2")
	require.True(t, removed)
	assert.Equal(t, "n1", op.NoteID)
	assert.Equal(t, 0, q.Len())
}

func TestOpQueue_ReplaceKeepsPosition(t *testing.T) {
	q := newOpQueue(10)

	q.Enqueue(upsertOp("req-1", "n1", 0))
	q.Enqueue(upsertOp("req-2", "n2", 0))

	retry := upsertOp("req-3", "n1", 7, models.FieldTitle)
	require.True(t, q.Replace(retry))

	batch := q.Batch(0)
	require.Len(t, batch, 2)
	assert.Equal(t, "req-3", batch[0].RequestID)

	assert.False(t, q.Replace(upsertOp("req-4", "missing", 0)))
}
