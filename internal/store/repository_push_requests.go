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

// pushRequestRepository is the PostgreSQL-backed implementation of
// [PushRequestRepository]. It gives push its at-most-once semantics: a
// request id seen before short-circuits to the recorded result.
type pushRequestRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewPushRequestRepository constructs a [PushRequestRepository] backed by
// the provided database connection and logger.
func NewPushRequestRepository(db *DB, logger *logger.Logger) PushRequestRepository {
	logger.Debug().Msg("creating push request repository")
	return &pushRequestRepository{
		db:     db,
		logger: logger,
	}
}

func (r *pushRequestRepository) GetApplied(ctx context.Context, userID int64, requestID string) (models.AppliedOp, bool, error) {
	log := logger.FromContext(ctx)

	var applied models.AppliedOp
	var note []byte
	var cursor int64

	row := r.db.QueryRowContext(ctx, getAppliedPushRequest, userID, requestID)
	if err := row.Scan(&applied.RequestID, &note, &cursor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AppliedOp{}, false, nil
		}
		log.Err(err).
			Str("func", "pushRequestRepository.GetApplied").
			Int64("user_id", userID).
			Str("request_id", requestID).
			Msg("failed to query applied push request")
		return models.AppliedOp{}, false, fmt.Errorf("failed to query applied push request: %w", err)
	}

	if err := json.Unmarshal(note, &applied.Note); err != nil {
		return models.AppliedOp{}, false, fmt.Errorf("decode applied note (request_id=%s): %w", requestID, err)
	}
	applied.Cursor = models.Cursor(cursor)

	return applied, true, nil
}

func (r *pushRequestRepository) RecordApplied(ctx context.Context, userID int64, applied models.AppliedOp) error {
	log := logger.FromContext(ctx)

	note, err := json.Marshal(applied.Note)
	if err != nil {
		return fmt.Errorf("encode applied note (request_id=%s): %w", applied.RequestID, err)
	}

	_, err = r.db.ExecContext(ctx, recordAppliedPushRequest,
		userID, applied.RequestID, note, int64(applied.Cursor),
	)
	if err != nil {
		log.Err(err).
			Str("func", "pushRequestRepository.RecordApplied").
			Int64("user_id", userID).
			Str("request_id", applied.RequestID).
			Msg("failed to record applied push request")
		return fmt.Errorf("failed to record applied push request: %w", err)
	}

	return nil
}
