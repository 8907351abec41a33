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

// ErrMetaNotFound is returned by GetMeta for keys never written.
var ErrMetaNotFound = errors.New("sync meta key not found")

type localSyncRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewLocalSyncRepository constructs a [LocalSyncRepository] backed by the
// client's SQLite database.
func NewLocalSyncRepository(db *DB, logger *logger.Logger) LocalSyncRepository {
	return &localSyncRepository{
		db:     db,
		logger: logger,
	}
}

func (l *localSyncRepository) SaveOp(ctx context.Context, op models.SyncOp) error {
	log := logger.FromContext(ctx)

	note, err := marshalNullable(op.Note)
	if err != nil {
		return fmt.Errorf("encode pending op note (note_id=%s): %w", op.NoteID, err)
	}
	baseNote, err := marshalNullable(op.BaseNote)
	if err != nil {
		return fmt.Errorf("encode pending op base note (note_id=%s): %w", op.NoteID, err)
	}
	changedFields, err := json.Marshal(op.ClientChangedFields)
	if err != nil {
		return fmt.Errorf("encode pending op changed fields (note_id=%s): %w", op.NoteID, err)
	}

	_, err = l.db.ExecContext(ctx, savePendingOp,
		op.NoteID,
		op.RequestID,
		op.Op,
		op.BaseVersion,
		note,
		string(changedFields),
		baseNote,
		op.AutoMergeAttempted,
	)
	if err != nil {
		log.Err(err).
			Str("func", "localSyncRepository.SaveOp").
			Str("note_id", op.NoteID).
			Str("request_id", op.RequestID).
			Msg("failed to execute upsert for pending op")
		return fmt.Errorf("failed to save pending op (note_id=%s): %w", op.NoteID, err)
	}

	return nil
}

func (l *localSyncRepository) DeleteOp(ctx context.Context, noteID string) error {
	log := logger.FromContext(ctx)

	if _, err := l.db.ExecContext(ctx, deletePendingOp, noteID); err != nil {
		log.Err(err).
			Str("func", "localSyncRepository.DeleteOp").
			Str("note_id", noteID).
			Msg("failed to delete pending op")
		return fmt.Errorf("failed to delete pending op (note_id=%s): %w", noteID, err)
	}

	return nil
}

func (l *localSyncRepository) GetAllOps(ctx context.Context) ([]models.SyncOp, error) {
	log := logger.FromContext(ctx)

	rows, err := l.db.QueryContext(ctx, getAllPendingOps)
	if err != nil {
		log.Err(err).
			Str("func", "localSyncRepository.GetAllOps").
			Msg("failed to execute query for getting all pending ops")
		return nil, fmt.Errorf("failed to query pending ops: %w", err)
	}
	defer rows.Close()

	var ops []models.SyncOp
	for rows.Next() {
		var op models.SyncOp
		var note, baseNote sql.NullString
		var changedFields string

		scanErr := rows.Scan(
			&op.NoteID,
			&op.RequestID,
			&op.Op,
			&op.BaseVersion,
			&note,
			&changedFields,
			&baseNote,
			&op.AutoMergeAttempted,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "localSyncRepository.GetAllOps").
				Msg("failed to scan pending op row")
			return nil, fmt.Errorf("failed to scan pending op row: %w", scanErr)
		}

		if op.Note, err = unmarshalNullable(note); err != nil {
			return nil, fmt.Errorf("decode pending op note (note_id=%s): %w", op.NoteID, err)
		}
		if op.BaseNote, err = unmarshalNullable(baseNote); err != nil {
			return nil, fmt.Errorf("decode pending op base note (note_id=%s): %w", op.NoteID, err)
		}
		if changedFields != "" {
			if err = json.Unmarshal([]byte(changedFields), &op.ClientChangedFields); err != nil {
				return nil, fmt.Errorf("decode pending op changed fields (note_id=%s): %w", op.NoteID, err)
			}
		}

		ops = append(ops, op)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localSyncRepository.GetAllOps").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating pending op rows: %w", rowsErr)
	}

	return ops, nil
}

func (l *localSyncRepository) SaveConflict(ctx context.Context, conflict models.SyncConflict) error {
	log := logger.FromContext(ctx)

	serverNote, err := json.Marshal(conflict.ServerNote)
	if err != nil {
		return fmt.Errorf("encode conflict server note (note_id=%s): %w", conflict.NoteID, err)
	}
	changedFields, err := json.Marshal(conflict.ChangedFields)
	if err != nil {
		return fmt.Errorf("encode conflict changed fields (note_id=%s): %w", conflict.NoteID, err)
	}

	_, err = l.db.ExecContext(ctx, saveSyncConflict,
		conflict.RequestID,
		conflict.NoteID,
		conflict.BaseVersion,
		conflict.CurrentVersion,
		string(serverNote),
		string(changedFields),
		conflict.DetectedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "localSyncRepository.SaveConflict").
			Str("note_id", conflict.NoteID).
			Str("request_id", conflict.RequestID).
			Msg("failed to execute upsert for conflict")
		return fmt.Errorf("failed to save conflict (request_id=%s): %w", conflict.RequestID, err)
	}

	return nil
}

func (l *localSyncRepository) DeleteConflict(ctx context.Context, requestID string) error {
	log := logger.FromContext(ctx)

	if _, err := l.db.ExecContext(ctx, deleteSyncConflict, requestID); err != nil {
		log.Err(err).
			Str("func", "localSyncRepository.DeleteConflict").
			Str("request_id", requestID).
			Msg("failed to delete conflict")
		return fmt.Errorf("failed to delete conflict (request_id=%s): %w", requestID, err)
	}

	return nil
}

func (l *localSyncRepository) GetAllConflicts(ctx context.Context) ([]models.SyncConflict, error) {
	log := logger.FromContext(ctx)

	rows, err := l.db.QueryContext(ctx, getAllSyncConflicts)
	if err != nil {
		log.Err(err).
			Str("func", "localSyncRepository.GetAllConflicts").
			Msg("failed to execute query for getting all conflicts")
		return nil, fmt.Errorf("failed to query conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []models.SyncConflict
	for rows.Next() {
		var conflict models.SyncConflict
		var serverNote, changedFields string

		scanErr := rows.Scan(
			&conflict.RequestID,
			&conflict.NoteID,
			&conflict.BaseVersion,
			&conflict.CurrentVersion,
			&serverNote,
			&changedFields,
			&conflict.DetectedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "localSyncRepository.GetAllConflicts").
				Msg("failed to scan conflict row")
			return nil, fmt.Errorf("failed to scan conflict row: %w", scanErr)
		}

		if err = json.Unmarshal([]byte(serverNote), &conflict.ServerNote); err != nil {
			return nil, fmt.Errorf("decode conflict server note (request_id=%s): %w", conflict.RequestID, err)
		}
		if changedFields != "" {
			if err = json.Unmarshal([]byte(changedFields), &conflict.ChangedFields); err != nil {
				return nil, fmt.Errorf("decode conflict changed fields (request_id=%s): %w", conflict.RequestID, err)
			}
		}

		conflicts = append(conflicts, conflict)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "localSyncRepository.GetAllConflicts").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating conflict rows: %w", rowsErr)
	}

	return conflicts, nil
}

func (l *localSyncRepository) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := l.db.QueryRowContext(ctx, getSyncMeta, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMetaNotFound
		}
		return "", fmt.Errorf("failed to get sync meta (key=%s): %w", key, err)
	}

	return value, nil
}

func (l *localSyncRepository) SetMeta(ctx context.Context, key, value string) error {
	if _, err := l.db.ExecContext(ctx, setSyncMeta, key, value); err != nil {
		return fmt.Errorf("failed to set sync meta (key=%s): %w", key, err)
	}

	return nil
}

func (l *localSyncRepository) DeleteMeta(ctx context.Context, key string) error {
	if _, err := l.db.ExecContext(ctx, deleteSyncMeta, key); err != nil {
		return fmt.Errorf("failed to delete sync meta (key=%s): %w", key, err)
	}

	return nil
}

func marshalNullable(note *models.Note) (sql.NullString, error) {
	if note == nil {
		return sql.NullString{}, nil
	}

	payload, err := json.Marshal(note)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(payload), Valid: true}, nil
}

func unmarshalNullable(payload sql.NullString) (*models.Note, error) {
	if !payload.Valid || payload.String == "" {
		return nil, nil
	}

	var note models.Note
	if err := json.Unmarshal([]byte(payload.String), &note); err != nil {
		return nil, err
	}
	return &note, nil
}
