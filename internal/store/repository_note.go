package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// noteRepository is the PostgreSQL-backed implementation of
// [NoteRepository]. Every mutation locks the target row, runs the
// optimistic version check, and appends to the change log in the same
// transaction.
type noteRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewNoteRepository constructs a [NoteRepository] backed by the provided
// database connection and logger.
func NewNoteRepository(db *DB, logger *logger.Logger) NoteRepository {
	logger.Debug().Msg("creating note repository")
	return &noteRepository{
		db:     db,
		logger: logger,
	}
}

func (r *noteRepository) GetNote(ctx context.Context, userID int64, noteID string) (models.Note, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, getServerNote, userID, noteID)

	note, err := scanServerNote(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, ErrNoteNotFound
		}
		log.Err(err).
			Str("func", "noteRepository.GetNote").
			Int64("user_id", userID).
			Str("note_id", noteID).
			Msg("failed to scan note row")
		return models.Note{}, fmt.Errorf("failed to scan note row: %w", err)
	}

	return note, nil
}

func (r *noteRepository) ListNotes(ctx context.Context, userID int64, includeDeleted bool) ([]models.Note, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListNotesQuery(userID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to build list notes query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.ListNotes").
			Int64("user_id", userID).
			Msg("failed to execute query for listing notes")
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		note, scanErr := scanServerNote(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "noteRepository.ListNotes").
				Int64("user_id", userID).
				Msg("failed to scan note row")
			return nil, fmt.Errorf("failed to scan note row: %w", scanErr)
		}
		notes = append(notes, note)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", rowsErr)
	}

	return notes, nil
}

// UpsertNoteVersioned implements [NoteRepository]. The row is locked for
// the duration of the check so two concurrent pushes against the same
// note serialise instead of both passing the version check.
func (r *noteRepository) UpsertNoteVersioned(ctx context.Context, userID int64, note models.Note, baseVersion int64) (models.Note, models.Cursor, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Note{}, 0, fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	current, exists, err := lockNoteVersion(ctx, tx, userID, note.ID)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.UpsertNoteVersioned").
			Int64("user_id", userID).
			Str("note_id", note.ID).
			Msg("failed to lock note row")
		return models.Note{}, 0, fmt.Errorf("failed to lock note row: %w", err)
	}

	if exists && current != baseVersion {
		return models.Note{}, 0, ErrVersionConflict
	}
	if !exists && baseVersion != 0 {
		return models.Note{}, 0, ErrVersionConflict
	}

	now := time.Now().UTC()
	committed := note.Clone()
	committed.Version = baseVersion + 1
	committed.UpdatedAt = now
	committed.DeletedAt = nil
	if !exists && committed.CreatedAt.IsZero() {
		committed.CreatedAt = now
	}

	tags, err := json.Marshal(committed.Tags)
	if err != nil {
		return models.Note{}, 0, fmt.Errorf("encode note tags (id=%s): %w", committed.ID, err)
	}

	if exists {
		_, err = tx.ExecContext(ctx, updateServerNote,
			userID, committed.ID,
			committed.Title, committed.Content, string(tags), committed.Kind,
			committed.IsProcessed, committed.IsCompleted, committed.IsArchived, committed.IsPinned,
			committed.DueDate, committed.Priority, committed.AnalysisState,
			committed.UpdatedAt, committed.Version, committed.DeletedAt,
		)
	} else {
		_, err = tx.ExecContext(ctx, insertServerNote,
			userID, committed.ID,
			committed.Title, committed.Content, string(tags), committed.Kind,
			committed.IsProcessed, committed.IsCompleted, committed.IsArchived, committed.IsPinned,
			committed.DueDate, committed.Priority, committed.AnalysisState,
			committed.CreatedAt, committed.UpdatedAt, committed.Version, committed.DeletedAt,
		)
	}
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.UpsertNoteVersioned").
			Int64("user_id", userID).
			Str("note_id", note.ID).
			Msg("failed to write note row")
		return models.Note{}, 0, fmt.Errorf("failed to write note (id=%s): %w", note.ID, err)
	}

	var seq int64
	if err = tx.QueryRowContext(ctx, appendChangeLog, userID, committed.ID, models.OpUpsert).Scan(&seq); err != nil {
		return models.Note{}, 0, fmt.Errorf("failed to append change log: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return models.Note{}, 0, fmt.Errorf("failed to commit upsert transaction: %w", err)
	}

	return committed, models.Cursor(seq), nil
}

// DeleteNoteVersioned implements [NoteRepository]. Deleting an unknown
// note returns [ErrNoteNotFound]; a stale base version returns
// [ErrVersionConflict].
func (r *noteRepository) DeleteNoteVersioned(ctx context.Context, userID int64, noteID string, baseVersion int64) (models.Note, models.Cursor, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Note{}, 0, fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	current, exists, err := lockNoteVersion(ctx, tx, userID, noteID)
	if err != nil {
		return models.Note{}, 0, fmt.Errorf("failed to lock note row: %w", err)
	}
	if !exists {
		return models.Note{}, 0, ErrNoteNotFound
	}
	if current != baseVersion {
		return models.Note{}, 0, ErrVersionConflict
	}

	now := time.Now().UTC()
	row := tx.QueryRowContext(ctx, tombstoneServerNote, userID, noteID, now, baseVersion+1)

	tombstone, err := scanServerNote(row.Scan)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.DeleteNoteVersioned").
			Int64("user_id", userID).
			Str("note_id", noteID).
			Msg("failed to tombstone note row")
		return models.Note{}, 0, fmt.Errorf("failed to tombstone note (id=%s): %w", noteID, err)
	}

	var seq int64
	if err = tx.QueryRowContext(ctx, appendChangeLog, userID, noteID, models.OpDelete).Scan(&seq); err != nil {
		return models.Note{}, 0, fmt.Errorf("failed to append change log: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return models.Note{}, 0, fmt.Errorf("failed to commit delete transaction: %w", err)
	}

	return tombstone, models.Cursor(seq), nil
}

// ImportNotes implements [NoteRepository]. Imported notes are committed
// at version 1 with their original timestamps preserved.
func (r *noteRepository) ImportNotes(ctx context.Context, userID int64, notes []models.Note) (models.Cursor, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var lastSeq int64

	for _, note := range notes {
		imported := note.Clone()
		imported.Version = 1
		if imported.CreatedAt.IsZero() {
			imported.CreatedAt = now
		}
		if imported.UpdatedAt.IsZero() {
			imported.UpdatedAt = now
		}

		tags, tagErr := json.Marshal(imported.Tags)
		if tagErr != nil {
			return 0, fmt.Errorf("encode note tags (id=%s): %w", imported.ID, tagErr)
		}

		_, err = tx.ExecContext(ctx, insertServerNote,
			userID, imported.ID,
			imported.Title, imported.Content, string(tags), imported.Kind,
			imported.IsProcessed, imported.IsCompleted, imported.IsArchived, imported.IsPinned,
			imported.DueDate, imported.Priority, imported.AnalysisState,
			imported.CreatedAt, imported.UpdatedAt, imported.Version, imported.DeletedAt,
		)
		if err != nil {
			log.Err(err).
				Str("func", "noteRepository.ImportNotes").
				Int64("user_id", userID).
				Str("note_id", imported.ID).
				Msg("failed to insert imported note")
			return 0, fmt.Errorf("failed to import note (id=%s): %w", imported.ID, err)
		}

		if err = tx.QueryRowContext(ctx, appendChangeLog, userID, imported.ID, models.OpUpsert).Scan(&lastSeq); err != nil {
			return 0, fmt.Errorf("failed to append change log: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import transaction: %w", err)
	}

	return models.Cursor(lastSeq), nil
}

func lockNoteVersion(ctx context.Context, tx *sql.Tx, userID int64, noteID string) (version int64, exists bool, err error) {
	err = tx.QueryRowContext(ctx, lockServerNote, userID, noteID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, true, nil
}

func scanServerNote(scan func(dest ...any) error) (models.Note, error) {
	return scanServerNoteWithPrefix(scan)
}

// scanServerNoteWithPrefix scans optional leading columns (e.g. the
// change-log seq and op) followed by the full note column set.
func scanServerNoteWithPrefix(scan func(dest ...any) error, prefix ...any) (models.Note, error) {
	var note models.Note
	var tags []byte
	var dueDate, deletedAt sql.NullTime

	dest := append(prefix,
		&note.ID,
		&note.Title,
		&note.Content,
		&tags,
		&note.Kind,
		&note.IsProcessed,
		&note.IsCompleted,
		&note.IsArchived,
		&note.IsPinned,
		&dueDate,
		&note.Priority,
		&note.AnalysisState,
		&note.CreatedAt,
		&note.UpdatedAt,
		&note.Version,
		&deletedAt,
	)
	if err := scan(dest...); err != nil {
		return models.Note{}, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &note.Tags); err != nil {
			return models.Note{}, fmt.Errorf("decode note tags (id=%s): %w", note.ID, err)
		}
	}
	if dueDate.Valid {
		d := dueDate.Time
		note.DueDate = &d
	}
	if deletedAt.Valid {
		d := deletedAt.Time
		note.DeletedAt = &d
	}

	return note, nil
}
