// Package engine implements the client-side sync engine: the mutation
// diff layer, the durable coalescing operation queue with hard-cap
// backpressure, the push and pull pipelines, the field-level conflict
// resolver, the realtime channel manager with polling fallback, and the
// single derived status the UI renders.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bananahana720/pocket-brain-sub000/internal/adapter"
	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
	"github.com/google/uuid"
)

// Fallback values for unset engine tunables.
const (
	defaultQueueCap            = 200
	defaultCompactionThreshold = 20
	defaultPushBatchSize       = 50
	defaultBackoffBase         = time.Second
	defaultBackoffMax          = 2 * time.Minute
	defaultConflictLoopWindow  = 5 * time.Minute
	defaultConflictLoopCount   = 3
	defaultRealtimeFailLimit   = 3
	defaultRealtimeFailWindow  = time.Minute
	defaultHeartbeatHealthy    = 5 * time.Minute
	defaultHeartbeatFallback   = 30 * time.Second
	defaultFlushInterval       = 500 * time.Millisecond
)

// SyncEngine coordinates offline-first note sync for one device. All
// exported methods are safe for concurrent use; internal state is
// guarded by one mutex and every durable change is mirrored to the
// local store before it is considered committed.
type SyncEngine struct {
	cfg    config.Engine
	server adapter.ServerAdapter
	notes  store.LocalNoteRepository
	state  store.LocalSyncRepository
	logger *logger.Logger

	mu          sync.Mutex
	queue       *opQueue
	conflicts   map[string]models.SyncConflict
	cursor      models.Cursor
	enabled     bool
	authFailed  bool
	online      bool
	syncFailed  bool
	channelLive bool
	activeSync  bool
	tracker     *conflictTracker

	// dirtyOps holds note IDs whose queue entry could not be written to
	// the local store; flushDirtyOps retries them until the write lands.
	dirtyOps map[string]struct{}

	backoffUntil   time.Time
	backoffAttempt int

	pushInFlight atomic.Bool
	pullInFlight atomic.Bool

	running  bool
	wake     chan struct{}
	stopLoop context.CancelFunc
	done     chan struct{}

	now func() time.Time
}

// New constructs a SyncEngine. Zero config values fall back to the
// built-in defaults; Start must be called before the engine syncs
// anything.
func New(cfg config.Engine, server adapter.ServerAdapter, notes store.LocalNoteRepository, state store.LocalSyncRepository, log *logger.Logger) *SyncEngine {
	applyEngineDefaults(&cfg)

	return &SyncEngine{
		cfg:       cfg,
		server:    server,
		notes:     notes,
		state:     state,
		logger:    log,
		queue:     newOpQueue(cfg.QueueCap),
		conflicts: make(map[string]models.SyncConflict),
		dirtyOps:  make(map[string]struct{}),
		tracker:   newConflictTracker(cfg.ConflictLoopWindow, cfg.ConflictLoopCount),
		online:    true,
		wake:      make(chan struct{}, 1),
		now:       time.Now,
	}
}

func applyEngineDefaults(cfg *config.Engine) {
	if cfg.QueueCap <= 0 {
		cfg.QueueCap = defaultQueueCap
	}
	if cfg.CompactionThreshold <= 0 {
		cfg.CompactionThreshold = defaultCompactionThreshold
	}
	if cfg.PushBatchSize <= 0 {
		cfg.PushBatchSize = defaultPushBatchSize
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = defaultBackoffMax
	}
	if cfg.ConflictLoopWindow <= 0 {
		cfg.ConflictLoopWindow = defaultConflictLoopWindow
	}
	if cfg.ConflictLoopCount <= 0 {
		cfg.ConflictLoopCount = defaultConflictLoopCount
	}
	if cfg.RealtimeFailureLimit <= 0 {
		cfg.RealtimeFailureLimit = defaultRealtimeFailLimit
	}
	if cfg.RealtimeFailureWindow <= 0 {
		cfg.RealtimeFailureWindow = defaultRealtimeFailWindow
	}
	if cfg.HeartbeatHealthy <= 0 {
		cfg.HeartbeatHealthy = defaultHeartbeatHealthy
	}
	if cfg.HeartbeatFallback <= 0 {
		cfg.HeartbeatFallback = defaultHeartbeatFallback
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
}

// Hydrate loads the durable engine state (cursor, pending queue,
// unresolved conflicts) from the local store. Call once before Start.
func (e *SyncEngine) Hydrate(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cursorRaw, err := e.state.GetMeta(ctx, store.MetaCursor)
	switch {
	case err == nil:
		parsed, parseErr := strconv.ParseInt(cursorRaw, 10, 64)
		if parseErr != nil {
			return fmt.Errorf("hydrate: parse stored cursor: %w", parseErr)
		}
		e.cursor = models.Cursor(parsed)
	case errors.Is(err, store.ErrMetaNotFound):
		e.cursor = 0
	default:
		return fmt.Errorf("hydrate: load cursor: %w", err)
	}

	ops, err := e.state.GetAllOps(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: load pending ops: %w", err)
	}
	for _, op := range ops {
		e.queue.Enqueue(op)
	}

	conflicts, err := e.state.GetAllConflicts(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: load conflicts: %w", err)
	}
	for _, c := range conflicts {
		e.conflicts[c.RequestID] = c
	}

	e.logger.Info().
		Int("pending_ops", e.queue.Len()).
		Int("conflicts", len(e.conflicts)).
		Int64("cursor", int64(e.cursor)).
		Msg("sync engine hydrated")

	return nil
}

// Start launches the control loop and the realtime channel manager.
func (e *SyncEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	e.running = true
	e.stopLoop = cancel
	e.done = make(chan struct{}, 2)
	e.mu.Unlock()

	go e.run(loopCtx)
	go e.runRealtime(loopCtx)

	return nil
}

// Close stops the control loop and waits for it to drain.
func (e *SyncEngine) Close() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel := e.stopLoop
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done
	<-done
}

// Enable turns sync on once a bearer token is present and kicks off an
// immediate cycle. A fresh sign-in also lifts the retry suppression a
// rejected token put in place.
func (e *SyncEngine) Enable() {
	e.mu.Lock()
	e.enabled = true
	e.authFailed = false
	e.mu.Unlock()
	e.kick()
}

// Disable turns sync off (sign-out, revoked token). Queued operations
// stay durable and resume on the next Enable.
func (e *SyncEngine) Disable() {
	e.mu.Lock()
	e.enabled = false
	e.channelLive = false
	e.mu.Unlock()
}

// Enabled reports whether sync is currently on.
func (e *SyncEngine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Capture creates a new note locally and queues it for sync. It refuses
// with [ErrSyncBlocked] while the queue is at its hard cap: a capture
// that cannot be queued would silently diverge from the server forever.
func (e *SyncEngine) Capture(ctx context.Context, note models.Note) (models.Note, error) {
	e.mu.Lock()
	if bp := e.queue.Backpressure(); bp.Blocked {
		e.mu.Unlock()
		return models.Note{}, fmt.Errorf("%w (pending=%d cap=%d)", ErrSyncBlocked, bp.PendingOps, bp.Cap)
	}
	e.mu.Unlock()

	now := e.now().UTC()
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.Kind == "" {
		note.Kind = models.NoteKindCapture
	}
	note.CreatedAt = now
	note.UpdatedAt = now
	note.Version = 0
	note.DeletedAt = nil

	if err := e.notes.SaveNotes(ctx, note); err != nil {
		return models.Note{}, fmt.Errorf("capture: save note locally: %w", err)
	}

	e.enqueue(ctx, buildUpsertOp(nil, note))

	e.kick()
	return note, nil
}

// Update edits an existing note locally and queues the change. Edits
// touching no tracked field return [ErrNothingChanged] and queue
// nothing.
func (e *SyncEngine) Update(ctx context.Context, note models.Note) (models.Note, error) {
	prev, err := e.notes.GetNote(ctx, note.ID)
	if err != nil {
		return models.Note{}, fmt.Errorf("update: load note: %w", err)
	}
	if prev.IsTombstone() {
		return models.Note{}, fmt.Errorf("update: %w", store.ErrNoteNotFound)
	}

	if len(models.ChangedFields(prev, note)) == 0 {
		return prev, ErrNothingChanged
	}

	note.CreatedAt = prev.CreatedAt
	note.UpdatedAt = e.now().UTC()
	note.Version = prev.Version
	note.DeletedAt = nil

	if err = e.notes.SaveNotes(ctx, note); err != nil {
		return models.Note{}, fmt.Errorf("update: save note locally: %w", err)
	}

	e.enqueue(ctx, buildUpsertOp(&prev, note))

	e.kick()
	return note, nil
}

// Delete tombstones a note locally and queues the deletion.
func (e *SyncEngine) Delete(ctx context.Context, noteID string) error {
	prev, err := e.notes.GetNote(ctx, noteID)
	if err != nil {
		return fmt.Errorf("delete: load note: %w", err)
	}
	if prev.IsTombstone() {
		return nil
	}

	now := e.now().UTC()
	tombstone := prev.Clone()
	tombstone.DeletedAt = &now
	tombstone.UpdatedAt = now

	if err = e.notes.SaveNotes(ctx, tombstone); err != nil {
		return fmt.Errorf("delete: save tombstone locally: %w", err)
	}

	e.enqueue(ctx, buildDeleteOp(prev))

	e.kick()
	return nil
}

// Notes returns the local collection without tombstones.
func (e *SyncEngine) Notes(ctx context.Context) ([]models.Note, error) {
	return e.notes.GetAllNotes(ctx, false)
}

// Note returns one local note.
func (e *SyncEngine) Note(ctx context.Context, noteID string) (models.Note, error) {
	return e.notes.GetNote(ctx, noteID)
}

// Conflicts returns the unresolved conflicts, oldest first.
func (e *SyncEngine) Conflicts() []models.SyncConflict {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.SyncConflict, 0, len(e.conflicts))
	for _, c := range e.conflicts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt.Before(out[j].DetectedAt)
	})
	return out
}

// Status derives the single externally visible engine state.
func (e *SyncEngine) Status() models.SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	return deriveStatus(statusInputs{
		enabled:        e.enabled,
		conflicts:      len(e.conflicts),
		blocked:        e.queue.Backpressure().Blocked,
		online:         e.online,
		authFailed:     e.authFailed,
		lastSyncFailed: e.syncFailed,
		activeSync:     e.activeSync,
		channelLive:    e.channelLive,
		pendingOps:     e.queue.Len(),
	})
}

// Backpressure returns the queue's admission-control view.
func (e *SyncEngine) Backpressure() models.SyncBackpressure {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Backpressure()
}

// Cursor returns the change-log position this device has pulled to.
func (e *SyncEngine) Cursor() models.Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// SyncNow runs one full push+pull cycle synchronously, ignoring any
// active backoff. Used by the UI's manual refresh.
func (e *SyncEngine) SyncNow(ctx context.Context) error {
	e.mu.Lock()
	e.backoffUntil = time.Time{}
	e.backoffAttempt = 0
	enabled := e.enabled
	e.mu.Unlock()

	if !enabled {
		return ErrSyncDisabled
	}

	e.flushDirtyOps(ctx)

	if err := e.pushPending(ctx); err != nil {
		return err
	}
	return e.pullChanges(ctx)
}

// enqueue adds op to the queue and mirrors the result to the store so a
// restart reconstructs the exact same queue. A store write that fails
// never surfaces to the edit that caused it: the in-memory queue stays
// authoritative, the entry is marked dirty, and flushDirtyOps retries
// the write on the next cycle.
func (e *SyncEngine) enqueue(ctx context.Context, op models.SyncOp) {
	e.mu.Lock()
	policy, evicted := e.queue.Enqueue(op)
	stored, _ := e.queue.Get(op.NoteID)
	e.mu.Unlock()

	for _, ev := range evicted {
		e.logger.Warn().
			Str("note_id", ev.NoteID).
			Str("request_id", ev.RequestID).
			Msg("pending op evicted by queue overflow")
		if err := e.state.DeleteOp(ctx, ev.NoteID); err != nil {
			e.markOpDirty(ev.NoteID)
			e.logger.Warn().Err(err).
				Str("note_id", ev.NoteID).
				Msg("dropping evicted op from store failed, will retry on flush")
		}
	}

	if err := e.state.SaveOp(ctx, stored); err != nil {
		e.markOpDirty(op.NoteID)
		e.logger.Warn().Err(err).
			Str("note_id", op.NoteID).
			Msg("persisting op failed, will retry on flush")
	}

	e.logger.Debug().
		Str("note_id", op.NoteID).
		Str("op", op.Op).
		Int("queue_before", policy.Before).
		Int("queue_after", policy.After).
		Int("compaction_drops", policy.CompactionDrops).
		Int("overflow_drops", policy.OverflowDrops).
		Msg("op enqueued")
}

func (e *SyncEngine) markOpDirty(noteID string) {
	e.mu.Lock()
	e.dirtyOps[noteID] = struct{}{}
	e.mu.Unlock()
}

// flushDirtyOps retries the store writes that failed at edit time. An
// entry still in the queue is re-saved with its current (possibly
// compacted) shape; an entry no longer queued is removed from the store.
func (e *SyncEngine) flushDirtyOps(ctx context.Context) {
	e.mu.Lock()
	if len(e.dirtyOps) == 0 {
		e.mu.Unlock()
		return
	}
	pending := make(map[string]*models.SyncOp, len(e.dirtyOps))
	for noteID := range e.dirtyOps {
		if op, ok := e.queue.Get(noteID); ok {
			pending[noteID] = &op
		} else {
			pending[noteID] = nil
		}
	}
	e.mu.Unlock()

	for noteID, op := range pending {
		var err error
		if op != nil {
			err = e.state.SaveOp(ctx, *op)
		} else {
			err = e.state.DeleteOp(ctx, noteID)
		}
		if err != nil {
			e.logger.Warn().Err(err).Str("note_id", noteID).Msg("flushing dirty op failed, keeping it marked")
			continue
		}
		e.mu.Lock()
		delete(e.dirtyOps, noteID)
		e.mu.Unlock()
	}
}

// kick wakes the control loop without blocking.
func (e *SyncEngine) kick() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// run is the control loop: it reacts to wakes (local edits, realtime
// events) after a short debounce and falls back to interval polling
// whose period tracks the channel state.
func (e *SyncEngine) run(ctx context.Context) {
	defer func() { e.done <- struct{}{} }()

	timer := time.NewTimer(e.pollInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-e.wake:
			// debounce rapid bursts of edits into one cycle, unless the
			// queue has grown past the flush threshold
			if e.pendingCount() < e.cfg.CompactionThreshold {
				select {
				case <-time.After(e.cfg.FlushInterval):
				case <-ctx.Done():
					return
				}
			}
			e.syncCycle(ctx)

		case <-timer.C:
			e.syncCycle(ctx)
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(e.pollInterval())
	}
}

func (e *SyncEngine) pendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

func (e *SyncEngine) pollInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.channelLive {
		return e.cfg.HeartbeatHealthy
	}
	return e.cfg.HeartbeatFallback
}

// syncCycle runs one push+pull round, respecting backoff. A rejected
// token suppresses automatic retries until the next sign-in; hammering
// the server with a dead credential helps nobody.
func (e *SyncEngine) syncCycle(ctx context.Context) {
	e.flushDirtyOps(ctx)

	e.mu.Lock()
	enabled := e.enabled
	authFailed := e.authFailed
	waiting := e.now().Before(e.backoffUntil)
	e.mu.Unlock()

	if !enabled || authFailed || waiting {
		return
	}

	if err := e.pushPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Warn().Err(err).Msg("push cycle failed")
	}
	if err := e.pullChanges(ctx); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Warn().Err(err).Msg("pull cycle failed")
	}
}

// classifySyncError updates connectivity/backoff state after a failed
// server call and returns whether the caller should give up the cycle.
func (e *SyncEngine) classifySyncError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case errors.Is(err, adapter.ErrUnauthorized):
		// sync stays enabled: the account is still signed in, the token
		// is just dead. Automatic retries pause until re-authentication.
		e.authFailed = true
		e.logger.Warn().Msg("token rejected, pausing sync until next sign-in")

	case errors.Is(err, adapter.ErrOffline):
		e.online = false

	case adapter.IsRetryable(err):
		e.syncFailed = true
		e.backoffAttempt++
		delay := e.cfg.BackoffBase << (e.backoffAttempt - 1)
		if delay > e.cfg.BackoffMax || delay <= 0 {
			delay = e.cfg.BackoffMax
		}
		// +-20% jitter keeps devices that failed together from retrying
		// in lockstep; an explicit Retry-After overrides it
		delay = time.Duration(float64(delay) * (0.8 + rand.Float64()*0.4))
		if hint, ok := adapter.RetryAfterHint(err); ok {
			delay = hint
		}
		e.backoffUntil = e.now().Add(delay)
		e.logger.Warn().
			Dur("backoff", delay).
			Int("attempt", e.backoffAttempt).
			Msg("server busy, backing off")

	default:
		e.syncFailed = true
	}
}

// markSyncHealthy resets failure bookkeeping after a successful call.
func (e *SyncEngine) markSyncHealthy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.online = true
	e.syncFailed = false
	e.backoffAttempt = 0
	e.backoffUntil = time.Time{}
}

func (e *SyncEngine) setActiveSync(active bool) {
	e.mu.Lock()
	e.activeSync = active
	e.mu.Unlock()
}
