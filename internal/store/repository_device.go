package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// deviceRepository is the PostgreSQL-backed implementation of
// [DeviceRepository].
type deviceRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewDeviceRepository constructs a [DeviceRepository] backed by the
// provided database connection and logger.
func NewDeviceRepository(db *DB, logger *logger.Logger) DeviceRepository {
	logger.Debug().Msg("creating device repository")
	return &deviceRepository{
		db:     db,
		logger: logger,
	}
}

// Touch implements [DeviceRepository]. The upsert refreshes the session's
// label, platform, and last-seen timestamp; a revoked session is left
// untouched and reported as [ErrDeviceNotFound].
func (r *deviceRepository) Touch(ctx context.Context, session models.DeviceSession) error {
	log := logger.FromContext(ctx)

	var lastSeen sql.NullTime
	err := r.db.QueryRowContext(ctx, touchDevice,
		session.ID, session.UserID, session.Label, session.Platform,
	).Scan(&lastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDeviceNotFound
		}
		log.Err(err).
			Str("func", "deviceRepository.Touch").
			Int64("user_id", session.UserID).
			Str("device_id", session.ID).
			Msg("failed to touch device session")
		return fmt.Errorf("failed to touch device session: %w", err)
	}

	return nil
}

func (r *deviceRepository) List(ctx context.Context, userID int64) ([]models.DeviceSession, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListDevicesQuery(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build list devices query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "deviceRepository.List").
			Int64("user_id", userID).
			Msg("failed to execute query for listing devices")
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var sessions []models.DeviceSession
	for rows.Next() {
		session, scanErr := scanDeviceSession(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "deviceRepository.List").
				Int64("user_id", userID).
				Msg("failed to scan device session row")
			return nil, fmt.Errorf("failed to scan device session row: %w", scanErr)
		}
		sessions = append(sessions, session)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating device session rows: %w", rowsErr)
	}

	return sessions, nil
}

func (r *deviceRepository) Get(ctx context.Context, userID int64, deviceID string) (models.DeviceSession, error) {
	row := r.db.QueryRowContext(ctx, getDevice, userID, deviceID)

	session, err := scanDeviceSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceSession{}, ErrDeviceNotFound
		}
		return models.DeviceSession{}, fmt.Errorf("failed to scan device session row: %w", err)
	}

	return session, nil
}

func (r *deviceRepository) Revoke(ctx context.Context, userID int64, deviceID string) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, revokeDevice, userID, deviceID)
	if err != nil {
		log.Err(err).
			Str("func", "deviceRepository.Revoke").
			Int64("user_id", userID).
			Str("device_id", deviceID).
			Msg("failed to revoke device session")
		return fmt.Errorf("failed to revoke device session: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

func scanDeviceSession(scan func(dest ...any) error) (models.DeviceSession, error) {
	var session models.DeviceSession
	var revokedAt sql.NullTime

	err := scan(
		&session.ID,
		&session.UserID,
		&session.Label,
		&session.Platform,
		&session.LastSeenAt,
		&session.CreatedAt,
		&revokedAt,
	)
	if err != nil {
		return models.DeviceSession{}, err
	}

	if revokedAt.Valid {
		t := revokedAt.Time
		session.RevokedAt = &t
	}

	return session, nil
}
