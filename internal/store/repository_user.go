package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/models"
	"github.com/jackc/pgerrcode"
)

// userRepository is the PostgreSQL-backed implementation of
// [UserRepository]. It handles account creation, lookup, and the
// one-shot bootstrap fingerprint against the "users" table.
type userRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns it with the
// server-assigned fields (UserID, CreatedAt) populated.
//
// A PostgreSQL unique_violation maps to [ErrLoginAlreadyExists].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Login, user.PasswordHash)

	var created models.User
	if err := row.Scan(&created.UserID, &created.Login, &created.PasswordHash, &created.CreatedAt); err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrLoginAlreadyExists
		}
		log.Err(err).Str("func", "userRepository.CreateUser").Msg("failed to insert user")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return created, nil
}

// FindUserByLogin retrieves the user record for login, or
// [ErrNoUserWasFound] when no such account exists.
func (r *userRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	log := logger.FromContext(ctx)

	var found models.User
	row := r.db.QueryRowContext(ctx, findUserByLogin, login)

	if err := row.Scan(&found.UserID, &found.Login, &found.PasswordHash, &found.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "userRepository.FindUserByLogin").Msg("failed to query user")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

func (r *userRepository) GetBootstrapFingerprint(ctx context.Context, userID int64) (string, error) {
	var fingerprint string
	row := r.db.QueryRowContext(ctx, getBootstrapFingerprint, userID)

	if err := row.Scan(&fingerprint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoUserWasFound
		}
		return "", fmt.Errorf("unexpected DB error: %w", err)
	}

	return fingerprint, nil
}

func (r *userRepository) SetBootstrapFingerprint(ctx context.Context, userID int64, fingerprint string) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, setBootstrapFingerprint, userID, fingerprint)
	if err != nil {
		log.Err(err).
			Str("func", "userRepository.SetBootstrapFingerprint").
			Int64("user_id", userID).
			Msg("failed to set bootstrap fingerprint")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}
