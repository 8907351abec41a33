package engine

import (
	"slices"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

// opQueue is the in-memory view of the durable pending-operation queue.
// It holds at most one operation per note: repeated edits of the same
// note compact into the existing entry instead of growing the queue.
// Order is enqueue order of the first operation per note.
//
// The queue itself is not goroutine safe; the engine serialises access
// under its own mutex and mirrors every change to the local store.
type opQueue struct {
	cap   int
	order []string
	ops   map[string]models.SyncOp
}

func newOpQueue(capacity int) *opQueue {
	return &opQueue{
		cap: capacity,
		ops: make(map[string]models.SyncOp),
	}
}

// Enqueue adds or compacts op and reports what happened to the queue,
// including any eviction needed to hold the hard cap.
func (q *opQueue) Enqueue(op models.SyncOp) (models.QueuePolicy, []models.SyncOp) {
	policy := models.QueuePolicy{Before: len(q.order), Cap: q.cap}
	var evicted []models.SyncOp

	if existing, ok := q.ops[op.NoteID]; ok {
		q.ops[op.NoteID] = compactOps(existing, op)
		policy.CompactionDrops = 1
	} else {
		q.order = append(q.order, op.NoteID)
		q.ops[op.NoteID] = op

		for q.cap > 0 && len(q.order) > q.cap {
			oldest := q.order[0]
			evicted = append(evicted, q.ops[oldest])
			q.order = q.order[1:]
			delete(q.ops, oldest)
			policy.OverflowDrops++
		}
	}

	policy.After = len(q.order)
	return policy, evicted
}

// Replace swaps the queued operation for op.NoteID in place, keeping its
// queue position. Used by the auto-merge retry path.
func (q *opQueue) Replace(op models.SyncOp) bool {
	if _, ok := q.ops[op.NoteID]; !ok {
		return false
	}
	q.ops[op.NoteID] = op
	return true
}

// Remove drops the queued operation for noteID, if any.
func (q *opQueue) Remove(noteID string) (models.SyncOp, bool) {
	op, ok := q.ops[noteID]
	if !ok {
		return models.SyncOp{}, false
	}

	delete(q.ops, noteID)
	if i := slices.Index(q.order, noteID); i >= 0 {
		q.order = slices.Delete(q.order, i, i+1)
	}
	return op, true
}

// RemoveByRequestID drops the queued operation whose current request id
// matches. A compacted entry carries only its newest request id, so a
// stale id from an earlier attempt does not match.
func (q *opQueue) RemoveByRequestID(requestID string) (models.SyncOp, bool) {
	for noteID, op := range q.ops {
		if op.RequestID == requestID {
			return q.Remove(noteID)
		}
	}
	return models.SyncOp{}, false
}

// Get returns the queued operation for noteID.
func (q *opQueue) Get(noteID string) (models.SyncOp, bool) {
	op, ok := q.ops[noteID]
	return op, ok
}

// Batch returns up to n operations in queue order.
func (q *opQueue) Batch(n int) []models.SyncOp {
	if n <= 0 || n > len(q.order) {
		n = len(q.order)
	}

	batch := make([]models.SyncOp, 0, n)
	for _, noteID := range q.order[:n] {
		batch = append(batch, q.ops[noteID])
	}
	return batch
}

// All returns every queued operation in queue order.
func (q *opQueue) All() []models.SyncOp {
	return q.Batch(0)
}

func (q *opQueue) Len() int {
	return len(q.order)
}

// Backpressure derives the admission-control view: the queue blocks new
// captures once the pending count reaches the cap.
func (q *opQueue) Backpressure() models.SyncBackpressure {
	bp := models.SyncBackpressure{
		PendingOps: len(q.order),
		Cap:        q.cap,
	}
	if q.cap > 0 && bp.PendingOps >= q.cap {
		bp.Blocked = true
		bp.OverflowBy = bp.PendingOps - q.cap
	}
	return bp
}

// compactOps folds a newer operation for the same note into the queued
// one. The result carries the newest intended state and request id, the
// oldest base (so the server reports divergence against what this device
// actually saw), and the union of changed fields.
func compactOps(existing, incoming models.SyncOp) models.SyncOp {
	merged := incoming
	merged.BaseVersion = existing.BaseVersion
	merged.BaseNote = existing.BaseNote
	merged.ClientChangedFields = unionFields(existing.ClientChangedFields, incoming.ClientChangedFields)

	// a delete supersedes any buffered edit; field bookkeeping is moot
	if incoming.Op == models.OpDelete {
		merged.Note = nil
		merged.ClientChangedFields = nil
	}

	return merged
}

func unionFields(a, b []string) []string {
	var out []string
	for _, f := range models.TrackedFields() {
		if slices.Contains(a, f) || slices.Contains(b, f) {
			out = append(out, f)
		}
	}
	return out
}
