package store

import (
	"context"
	"fmt"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// changeLogRepository is the PostgreSQL-backed implementation of
// [ChangeLogRepository].
type changeLogRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewChangeLogRepository constructs a [ChangeLogRepository] backed by the
// provided database connection and logger.
func NewChangeLogRepository(db *DB, logger *logger.Logger) ChangeLogRepository {
	logger.Debug().Msg("creating change log repository")
	return &changeLogRepository{
		db:     db,
		logger: logger,
	}
}

// ChangesSince implements [ChangeLogRepository]. Each returned change
// carries the note's current state; a note touched several times since
// cursor therefore appears several times with identical payloads, which
// the client applies idempotently by version.
func (r *changeLogRepository) ChangesSince(ctx context.Context, userID int64, cursor models.Cursor, limit int) ([]models.Change, models.Cursor, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildChangesSinceQuery(userID, cursor, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build changes query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "changeLogRepository.ChangesSince").
			Int64("user_id", userID).
			Int64("cursor", int64(cursor)).
			Msg("failed to execute changes query")
		return nil, 0, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()

	var changes []models.Change
	last := cursor

	for rows.Next() {
		var seq int64
		var op string

		change := models.Change{}
		scanErr := scanChangeRow(rows.Scan, &seq, &op, &change.Note)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "changeLogRepository.ChangesSince").
				Int64("user_id", userID).
				Msg("failed to scan change row")
			return nil, 0, fmt.Errorf("failed to scan change row: %w", scanErr)
		}

		change.Op = op
		changes = append(changes, change)
		last = models.Cursor(seq)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, fmt.Errorf("error iterating change rows: %w", rowsErr)
	}

	return changes, last, nil
}

// Bounds implements [ChangeLogRepository].
func (r *changeLogRepository) Bounds(ctx context.Context, userID int64) (models.Cursor, models.Cursor, error) {
	var oldest, latest int64
	row := r.db.QueryRowContext(ctx, changeLogBounds, userID)

	if err := row.Scan(&oldest, &latest); err != nil {
		return 0, 0, fmt.Errorf("failed to query change log bounds: %w", err)
	}

	return models.Cursor(oldest), models.Cursor(latest), nil
}

// Prune implements [ChangeLogRepository].
func (r *changeLogRepository) Prune(ctx context.Context, userID int64, retain int) error {
	log := logger.FromContext(ctx)

	if retain <= 0 {
		return nil
	}

	result, err := r.db.ExecContext(ctx, pruneChangeLog, userID, retain)
	if err != nil {
		log.Err(err).
			Str("func", "changeLogRepository.Prune").
			Int64("user_id", userID).
			Msg("failed to prune change log")
		return fmt.Errorf("failed to prune change log: %w", err)
	}

	if dropped, _ := result.RowsAffected(); dropped > 0 {
		log.Debug().
			Int64("user_id", userID).
			Int64("dropped", dropped).
			Msg("pruned change log entries")
	}

	return nil
}

func scanChangeRow(scan func(dest ...any) error, seq *int64, op *string, note *models.Note) error {
	scanned, err := scanServerNoteWithPrefix(scan, seq, op)
	if err != nil {
		return err
	}
	*note = scanned
	return nil
}
