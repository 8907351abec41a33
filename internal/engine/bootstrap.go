package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// Bootstrap migrates a pre-sync local-only collection to the server.
// It runs at most once per account: the collection fingerprint makes a
// retried call (crashed mid-bootstrap, flaky network) idempotent on the
// server side. Notes that were already synced keep their versions; only
// never-synced notes are imported.
func (e *SyncEngine) Bootstrap(ctx context.Context) error {
	if _, err := e.state.GetMeta(ctx, store.MetaBootstrapDone); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrMetaNotFound) {
		return fmt.Errorf("bootstrap: read marker: %w", err)
	}

	all, err := e.notes.GetAllNotes(ctx, false)
	if err != nil {
		return fmt.Errorf("bootstrap: load local notes: %w", err)
	}

	var fresh []models.Note
	for _, note := range all {
		if note.Version == 0 {
			fresh = append(fresh, note)
		}
	}

	if len(fresh) == 0 {
		if err = e.state.SetMeta(ctx, store.MetaBootstrapDone, "1"); err != nil {
			return fmt.Errorf("bootstrap: set marker: %w", err)
		}
		return nil
	}

	fingerprint := collectionFingerprint(fresh)
	if err = e.state.SetMeta(ctx, store.MetaBootstrapFingerprint, fingerprint); err != nil {
		return fmt.Errorf("bootstrap: persist fingerprint: %w", err)
	}

	resp, err := e.server.Bootstrap(ctx, models.BootstrapRequest{
		Notes:             fresh,
		SourceFingerprint: fingerprint,
	})
	if err != nil {
		e.classifySyncError(err)
		return fmt.Errorf("bootstrap: import: %w", err)
	}
	e.markSyncHealthy()

	// the import committed every note at version 1; reflect that locally
	// and retire the queued creates, which would otherwise conflict with
	// the rows the import just wrote
	for _, note := range fresh {
		committed := note.Clone()
		committed.Version = 1
		if err = e.notes.SaveNotes(ctx, committed); err != nil {
			return fmt.Errorf("bootstrap: commit note (note_id=%s): %w", note.ID, err)
		}

		e.mu.Lock()
		_, removed := e.queue.Remove(note.ID)
		e.mu.Unlock()
		if removed {
			if err = e.state.DeleteOp(ctx, note.ID); err != nil {
				return fmt.Errorf("bootstrap: drop queued create: %w", err)
			}
		}
	}

	if err = e.commitCursor(ctx, resp.Cursor); err != nil {
		return err
	}
	if err = e.state.SetMeta(ctx, store.MetaBootstrapDone, "1"); err != nil {
		return fmt.Errorf("bootstrap: set marker: %w", err)
	}

	e.logger.Info().
		Int("imported", resp.Imported).
		Bool("already_bootstrapped", resp.AlreadyBootstrapped).
		Int64("cursor", int64(resp.Cursor)).
		Msg("local collection bootstrapped")

	e.kick()
	return nil
}

// collectionFingerprint hashes the sorted note IDs, so the same local
// collection always produces the same fingerprint regardless of order.
func collectionFingerprint(notes []models.Note) string {
	ids := make([]string, 0, len(notes))
	for _, note := range notes {
		ids = append(ids, note.ID)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
