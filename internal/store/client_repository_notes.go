package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

type localNoteRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewLocalNoteRepository constructs a [LocalNoteRepository] backed by the
// client's SQLite database.
func NewLocalNoteRepository(db *DB, logger *logger.Logger) LocalNoteRepository {
	return &localNoteRepository{
		db:     db,
		logger: logger,
	}
}

func (l *localNoteRepository) SaveNotes(ctx context.Context, notes ...models.Note) error {
	log := logger.FromContext(ctx)

	for _, note := range notes {
		tags, err := json.Marshal(note.Tags)
		if err != nil {
			return fmt.Errorf("encode note tags (id=%s): %w", note.ID, err)
		}

		_, err = l.db.ExecContext(ctx, saveLocalNote,
			note.ID,
			note.Title,
			note.Content,
			string(tags),
			note.Kind,
			note.IsProcessed,
			note.IsCompleted,
			note.IsArchived,
			note.IsPinned,
			note.DueDate,
			note.Priority,
			note.AnalysisState,
			note.CreatedAt,
			note.UpdatedAt,
			note.Version,
			note.DeletedAt,
		)
		if err != nil {
			log.Err(err).
				Str("func", "localNoteRepository.SaveNotes").
				Str("note_id", note.ID).
				Msg("failed to execute upsert for note")
			return fmt.Errorf("failed to save note (id=%s): %w", note.ID, err)
		}
	}

	return nil
}

func (l *localNoteRepository) GetNote(ctx context.Context, noteID string) (models.Note, error) {
	log := logger.FromContext(ctx)

	row := l.db.QueryRowContext(ctx, getLocalNote, noteID)

	note, err := scanLocalNote(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, ErrNoteNotFound
		}
		log.Err(err).
			Str("func", "localNoteRepository.GetNote").
			Str("note_id", noteID).
			Msg("failed to scan note row")
		return models.Note{}, fmt.Errorf("failed to scan note row: %w", err)
	}

	return note, nil
}

func (l *localNoteRepository) GetAllNotes(ctx context.Context, includeTombstones bool) ([]models.Note, error) {
	log := logger.FromContext(ctx)

	query := getAllLocalNotes
	if includeTombstones {
		query = getAllLocalNotesWithTombstones
	}

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		log.Err(err).
			Str("func", "localNoteRepository.GetAllNotes").
			Msg("failed to execute query for getting all notes")
		return nil, fmt.Errorf("failed to query all notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		note, scanErr := scanLocalNote(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "localNoteRepository.GetAllNotes").
				Msg("failed to scan note row")
			return nil, fmt.Errorf("failed to scan note row: %w", scanErr)
		}
		notes = append(notes, note)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localNoteRepository.GetAllNotes").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating note rows: %w", rowsErr)
	}

	return notes, nil
}

func (l *localNoteRepository) PurgeNote(ctx context.Context, noteID string) error {
	log := logger.FromContext(ctx)

	if _, err := l.db.ExecContext(ctx, purgeLocalNote, noteID); err != nil {
		log.Err(err).
			Str("func", "localNoteRepository.PurgeNote").
			Str("note_id", noteID).
			Msg("failed to execute purge for note")
		return fmt.Errorf("failed to purge note (id=%s): %w", noteID, err)
	}

	return nil
}

// ReplaceAll swaps the entire local collection for notes inside one
// transaction. It backs the stale-cursor reset, where the server snapshot
// becomes the new truth.
func (l *localNoteRepository) ReplaceAll(ctx context.Context, notes []models.Note) error {
	log := logger.FromContext(ctx)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin replace-all transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteAllLocalNotes); err != nil {
		log.Err(err).
			Str("func", "localNoteRepository.ReplaceAll").
			Msg("failed to clear notes table")
		return fmt.Errorf("failed to clear notes: %w", err)
	}

	for _, note := range notes {
		tags, tagErr := json.Marshal(note.Tags)
		if tagErr != nil {
			return fmt.Errorf("encode note tags (id=%s): %w", note.ID, tagErr)
		}

		_, err = tx.ExecContext(ctx, saveLocalNote,
			note.ID,
			note.Title,
			note.Content,
			string(tags),
			note.Kind,
			note.IsProcessed,
			note.IsCompleted,
			note.IsArchived,
			note.IsPinned,
			note.DueDate,
			note.Priority,
			note.AnalysisState,
			note.CreatedAt,
			note.UpdatedAt,
			note.Version,
			note.DeletedAt,
		)
		if err != nil {
			log.Err(err).
				Str("func", "localNoteRepository.ReplaceAll").
				Str("note_id", note.ID).
				Msg("failed to insert snapshot note")
			return fmt.Errorf("failed to insert snapshot note (id=%s): %w", note.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace-all transaction: %w", err)
	}

	return nil
}

func scanLocalNote(scan func(dest ...any) error) (models.Note, error) {
	var note models.Note
	var tags string
	var dueDate, deletedAt sql.NullTime

	err := scan(
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
	if err != nil {
		return models.Note{}, err
	}

	if tags != "" {
		if err = json.Unmarshal([]byte(tags), &note.Tags); err != nil {
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
