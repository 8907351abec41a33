package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// pullPageLimit bounds one pull response regardless of what the client
// asked for.
const pullPageLimit = 100

// syncService is the concrete implementation of SyncService. Every
// mutation goes through the note repository's optimistic version check;
// this layer turns check failures into wire-level conflicts, enforces
// push idempotency, maintains change-log retention, and notifies the
// live event channel.
type syncService struct {
	notes        store.NoteRepository
	changeLog    store.ChangeLogRepository
	pushRequests store.PushRequestRepository
	users        store.UserRepository

	// retention is how many change-log entries are kept per user; zero
	// disables pruning.
	retention int

	events EventsService
	logger *logger.Logger

	now func() time.Time
}

// NewSyncService wires the sync protocol onto the server repositories.
// events receives a broadcast whenever a push or bootstrap advances a
// user's change log.
func NewSyncService(repos *store.Repositories, cfg config.DB, events EventsService, logger *logger.Logger) SyncService {
	return &syncService{
		notes:        repos.NoteRepository,
		changeLog:    repos.ChangeLogRepository,
		pushRequests: repos.PushRequestRepository,
		users:        repos.UserRepository,
		retention:    cfg.ChangeLogRetention,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// Snapshot returns the full authoritative collection together with the
// change-log cursor it is consistent with. The cursor is read before the
// notes, so a concurrent commit can only make the snapshot newer than
// the cursor claims, never older.
func (s *syncService) Snapshot(ctx context.Context, userID int64, includeDeleted bool) (models.SnapshotResponse, error) {
	log := logger.FromContext(ctx)

	_, latest, err := s.changeLog.Bounds(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("change log bounds lookup failed")
		return models.SnapshotResponse{}, fmt.Errorf("change log bounds lookup failed: %w", err)
	}

	notes, err := s.notes.ListNotes(ctx, userID, includeDeleted)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("notes listing failed")
		return models.SnapshotResponse{}, fmt.Errorf("notes listing failed: %w", err)
	}

	return models.SnapshotResponse{Notes: notes, Cursor: latest}, nil
}

// Pull returns up to limit changes after cursor. When the cursor points
// before the oldest retained entry (or into an unknown future) the
// response instructs the client to resnapshot instead.
func (s *syncService) Pull(ctx context.Context, userID int64, cursor models.Cursor, limit int) (models.PullResponse, error) {
	log := logger.FromContext(ctx)

	if limit <= 0 || limit > pullPageLimit {
		limit = pullPageLimit
	}

	oldest, latest, err := s.changeLog.Bounds(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("change log bounds lookup failed")
		return models.PullResponse{}, fmt.Errorf("change log bounds lookup failed: %w", err)
	}

	if staleCursor(cursor, oldest, latest) {
		log.Warn().
			Int64("user_id", userID).
			Int64("cursor", int64(cursor)).
			Int64("oldest", int64(oldest)).
			Int64("latest", int64(latest)).
			Msg("pull cursor beyond retained history")
		return models.PullResponse{
			ResetRequired:         true,
			ResetReason:           "cursor beyond retained history",
			OldestAvailableCursor: oldest,
			LatestCursor:          latest,
		}, nil
	}

	changes, next, err := s.changeLog.ChangesSince(ctx, userID, cursor, limit)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("change feed read failed")
		return models.PullResponse{}, fmt.Errorf("change feed read failed: %w", err)
	}

	if len(changes) == 0 {
		next = cursor
	}

	return models.PullResponse{
		Changes:      changes,
		NextCursor:   next,
		LatestCursor: latest,
	}, nil
}

// staleCursor reports whether cursor can no longer be served from the
// retained change log. Entries [oldest..latest] are present; a cursor
// needs every entry after it, so anything before oldest-1 lost history.
// A cursor past latest belongs to a different history altogether.
func staleCursor(cursor, oldest, latest models.Cursor) bool {
	if cursor == 0 {
		return oldest > 1
	}
	return cursor < oldest-1 || cursor > latest
}

// Push applies a batch of client operations under the optimistic version
// check. Per operation the outcome is either applied or a conflict; a
// request id seen before returns its recorded result instead of
// re-running, so client retries are safe.
func (s *syncService) Push(ctx context.Context, userID int64, req models.PushRequest) (models.PushResponse, error) {
	log := logger.FromContext(ctx)

	var resp models.PushResponse

	for _, op := range req.Operations {
		if op.RequestID == "" || op.NoteID == "" {
			log.Error().Int64("user_id", userID).Msg("push operation missing identifiers")
			return models.PushResponse{}, ErrInvalidDataProvided
		}

		recorded, found, err := s.pushRequests.GetApplied(ctx, userID, op.RequestID)
		if err != nil {
			return models.PushResponse{}, fmt.Errorf("push idempotency lookup failed: %w", err)
		}
		if found {
			resp.Applied = append(resp.Applied, recorded)
			if recorded.Cursor > resp.NextCursor {
				resp.NextCursor = recorded.Cursor
			}
			continue
		}

		applied, conflict, err := s.applyOp(ctx, userID, op)
		if err != nil {
			return models.PushResponse{}, err
		}
		if conflict != nil {
			resp.Conflicts = append(resp.Conflicts, *conflict)
			continue
		}

		if err = s.pushRequests.RecordApplied(ctx, userID, *applied); err != nil {
			return models.PushResponse{}, fmt.Errorf("push idempotency record failed: %w", err)
		}

		resp.Applied = append(resp.Applied, *applied)
		if applied.Cursor > resp.NextCursor {
			resp.NextCursor = applied.Cursor
		}
	}

	if len(resp.Applied) > 0 {
		s.pruneChangeLog(ctx, userID)
		s.events.Broadcast(userID, resp.NextCursor)
	}

	return resp, nil
}

// applyOp runs one operation through the versioned repository calls and
// translates a failed version check into a wire conflict.
func (s *syncService) applyOp(ctx context.Context, userID int64, op models.SyncOp) (*models.AppliedOp, *models.SyncConflict, error) {
	var (
		committed models.Note
		cursor    models.Cursor
		err       error
	)

	switch op.Op {
	case models.OpUpsert:
		if op.Note == nil {
			return nil, nil, ErrInvalidDataProvided
		}
		note := op.Note.Clone()
		note.ID = op.NoteID
		committed, cursor, err = s.notes.UpsertNoteVersioned(ctx, userID, note, op.BaseVersion)

	case models.OpDelete:
		committed, cursor, err = s.notes.DeleteNoteVersioned(ctx, userID, op.NoteID, op.BaseVersion)
		if errors.Is(err, store.ErrNoteNotFound) {
			// deleting a note that never reached the server: nothing to
			// do, acknowledge so the client retires the op
			now := s.now().UTC()
			committed = models.Note{ID: op.NoteID, Version: op.BaseVersion, DeletedAt: &now}
			cursor, err = 0, nil
		}

	default:
		return nil, nil, ErrInvalidDataProvided
	}

	if errors.Is(err, store.ErrVersionConflict) {
		conflict, cErr := s.buildConflict(ctx, userID, op)
		if cErr != nil {
			return nil, nil, cErr
		}
		return nil, conflict, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("push operation failed (note_id=%s): %w", op.NoteID, err)
	}

	return &models.AppliedOp{RequestID: op.RequestID, Note: committed, Cursor: cursor}, nil, nil
}

// buildConflict captures the server's current state of the disputed note
// and, when the client supplied its base snapshot, the exact fields the
// server side changed since that base.
func (s *syncService) buildConflict(ctx context.Context, userID int64, op models.SyncOp) (*models.SyncConflict, error) {
	current, err := s.notes.GetNote(ctx, userID, op.NoteID)
	switch {
	case errors.Is(err, store.ErrNoteNotFound):
		// base claims the note exists, the server disagrees: present it
		// as deleted so the client treats it as a manual conflict
		now := s.now().UTC()
		current = models.Note{ID: op.NoteID, DeletedAt: &now}
	case err != nil:
		return nil, fmt.Errorf("conflict state lookup failed (note_id=%s): %w", op.NoteID, err)
	}

	var serverChanged []string
	if op.BaseNote != nil && !current.IsTombstone() {
		serverChanged = models.ChangedFields(*op.BaseNote, current)
	}

	return &models.SyncConflict{
		RequestID:      op.RequestID,
		NoteID:         op.NoteID,
		BaseVersion:    op.BaseVersion,
		CurrentVersion: current.Version,
		ServerNote:     current,
		ChangedFields:  serverChanged,
		DetectedAt:     s.now().UTC(),
	}, nil
}

func (s *syncService) pruneChangeLog(ctx context.Context, userID int64) {
	if s.retention <= 0 {
		return
	}
	if err := s.changeLog.Prune(ctx, userID, s.retention); err != nil {
		// pruning is housekeeping; a failed prune never fails the push
		logger.FromContext(ctx).Err(err).Int64("user_id", userID).Msg("change log prune failed")
	}
}

// Bootstrap imports a pre-sync local collection exactly once per
// account. A repeated call with the same source fingerprint is
// acknowledged idempotently; a different fingerprint is rejected, since
// two different local collections cannot both seed the same account.
func (s *syncService) Bootstrap(ctx context.Context, userID int64, req models.BootstrapRequest) (models.BootstrapResponse, error) {
	log := logger.FromContext(ctx)

	if req.SourceFingerprint == "" {
		return models.BootstrapResponse{}, ErrInvalidDataProvided
	}

	existing, err := s.users.GetBootstrapFingerprint(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("bootstrap fingerprint lookup failed")
		return models.BootstrapResponse{}, fmt.Errorf("bootstrap fingerprint lookup failed: %w", err)
	}

	if existing == req.SourceFingerprint {
		_, latest, err := s.changeLog.Bounds(ctx, userID)
		if err != nil {
			return models.BootstrapResponse{}, fmt.Errorf("change log bounds lookup failed: %w", err)
		}
		return models.BootstrapResponse{AlreadyBootstrapped: true, Cursor: latest}, nil
	}
	if existing != "" {
		log.Warn().Int64("user_id", userID).Msg("bootstrap rejected, account already seeded")
		return models.BootstrapResponse{}, store.ErrAlreadyBootstrapped
	}

	cursor, err := s.notes.ImportNotes(ctx, userID, req.Notes)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("bootstrap import failed")
		return models.BootstrapResponse{}, fmt.Errorf("bootstrap import failed: %w", err)
	}

	if err = s.users.SetBootstrapFingerprint(ctx, userID, req.SourceFingerprint); err != nil {
		return models.BootstrapResponse{}, fmt.Errorf("bootstrap fingerprint save failed: %w", err)
	}

	log.Info().
		Int64("user_id", userID).
		Int("imported", len(req.Notes)).
		Int64("cursor", int64(cursor)).
		Msg("account bootstrapped")

	s.events.Broadcast(userID, cursor)

	return models.BootstrapResponse{Imported: len(req.Notes), Cursor: cursor}, nil
}
